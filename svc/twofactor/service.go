package twofactor

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"time"

	"github.com/swiftshare/securecore/pkg/envelope"
	"github.com/swiftshare/securecore/pkg/logger"
	"github.com/swiftshare/securecore/pkg/ratelimit"
	"github.com/swiftshare/securecore/pkg/totp"
)

// DefaultIssuer is the issuer shown in authenticator apps.
const DefaultIssuer = "SwiftShare"

// Service implements the per-user two-factor workflow: enrollment,
// enable/disable, and verification with one-time backup codes.
type Service struct {
	storage Storage
	secrets *envelope.Service
	limiter ratelimit.Limiter
	log     *slog.Logger
	issuer  string
}

// Option configures the service.
type Option func(*Service)

// WithLogger sets the structured logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// WithIssuer overrides the issuer in provisioning URIs.
func WithIssuer(issuer string) Option {
	return func(s *Service) {
		if issuer != "" {
			s.issuer = issuer
		}
	}
}

// WithVerifyLimiter throttles verification attempts per user. Without a
// limiter all attempts are allowed.
func WithVerifyLimiter(l ratelimit.Limiter) Option {
	return func(s *Service) {
		s.limiter = l
	}
}

// New creates a two-factor service.
func New(storage Storage, secrets *envelope.Service, opts ...Option) (*Service, error) {
	if storage == nil {
		return nil, ErrStorageRequired
	}
	if secrets == nil {
		return nil, ErrSecretsRequired
	}

	s := &Service{
		storage: storage,
		secrets: secrets,
		log:     slog.Default(),
		issuer:  DefaultIssuer,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Setup generates a fresh secret, its provisioning URI, and a set of backup
// codes. Nothing is persisted until Enable; plaintexts are returned to the
// user exactly once.
func (s *Service) Setup(ctx context.Context, userID, accountName string) (*Enrollment, error) {
	if userID == "" {
		return nil, ErrUserIDRequired
	}

	secret, err := totp.GenerateSecretKey()
	if err != nil {
		return nil, err
	}

	uri, err := totp.ProvisioningURI(totp.URIParams{
		Secret:      secret,
		AccountName: accountName,
		Issuer:      s.issuer,
	})
	if err != nil {
		return nil, err
	}

	codes, err := totp.GenerateBackupCodes()
	if err != nil {
		return nil, err
	}

	return &Enrollment{Secret: secret, URI: uri, BackupCodes: codes}, nil
}

// Enable atomically persists the enabled state: the envelope-wrapped
// secret, hashed backup codes, and the enablement timestamp.
func (s *Service) Enable(ctx context.Context, userID, secret string, backupCodes []string) error {
	if userID == "" {
		return ErrUserIDRequired
	}
	if !totp.ValidateSecretKeyRegex.MatchString(secret) {
		return totp.ErrInvalidSecret
	}
	if len(backupCodes) == 0 {
		return ErrBackupCodesRequired
	}

	wrapped, err := s.secrets.Wrap(secret)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	cfg := &Config{
		Enabled:          true,
		Secret:           wrapped,
		BackupCodeHashes: totp.HashBackupCodes(backupCodes),
		EnabledAt:        &now,
	}

	if err := s.storage.Save(ctx, userID, cfg); err != nil {
		return err
	}

	s.log.Info("two-factor enabled", logger.UserID(userID))
	return nil
}

// Disable removes the user's two-factor record entirely. Idempotent.
func (s *Service) Disable(ctx context.Context, userID string) error {
	if userID == "" {
		return ErrUserIDRequired
	}

	if err := s.storage.Delete(ctx, userID); err != nil {
		return err
	}

	s.log.Info("two-factor disabled", logger.UserID(userID))
	return nil
}

// Enabled reports whether the user currently has two-factor enabled.
func (s *Service) Enabled(ctx context.Context, userID string) (bool, error) {
	cfg, err := s.storage.Get(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return cfg.Enabled, nil
}

// Verify checks a TOTP code or backup code for a user. It runs on the
// authentication path, so it never surfaces internal errors as anything
// other than an invalid result: a thrown error here could be mistaken for
// success by a careless caller. A matched backup code is consumed before
// the result is returned.
func (s *Service) Verify(ctx context.Context, userID, token string) VerifyResult {
	invalid := VerifyResult{}

	if userID == "" || token == "" {
		return invalid
	}

	if s.limiter != nil {
		allowed, err := s.limiter.Allow(ctx, "twofactor:verify:"+userID)
		if err != nil {
			// Limiter outages must not lock users out of their accounts
			s.log.Warn("verify limiter unavailable", logger.UserID(userID), logger.Error(err))
		} else if !allowed {
			s.log.Warn("verify attempts throttled", logger.UserID(userID))
			return invalid
		}
	}

	cfg, err := s.storage.Get(ctx, userID)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.log.Error("failed to load two-factor config", logger.UserID(userID), logger.Error(err))
		}
		return invalid
	}
	if !cfg.Enabled {
		return invalid
	}

	secret, err := s.secrets.Open(cfg.Secret)
	if err != nil {
		s.log.Error("failed to open two-factor secret", logger.UserID(userID), logger.Error(err))
		return invalid
	}

	// Backup codes fail the TOTP format check, so a format error here just
	// means the token is not a 6-digit code
	if ok, err := totp.Validate(secret, token); err == nil && ok {
		return VerifyResult{Valid: true, RemainingBackupCodes: len(cfg.BackupCodeHashes)}
	}

	idx := totp.MatchBackupCode(token, cfg.BackupCodeHashes)
	if idx < 0 {
		return invalid
	}

	// One-time use: the matched code must be gone before we report success
	cfg.BackupCodeHashes = slices.Delete(slices.Clone(cfg.BackupCodeHashes), idx, idx+1)
	if err := s.storage.Save(ctx, userID, cfg); err != nil {
		s.log.Error("failed to consume backup code", logger.UserID(userID), logger.Error(err))
		return invalid
	}

	s.log.Info("backup code consumed",
		logger.UserID(userID),
		slog.Int("remaining", len(cfg.BackupCodeHashes)))

	return VerifyResult{
		Valid:                true,
		UsedBackupCode:       true,
		RemainingBackupCodes: len(cfg.BackupCodeHashes),
	}
}
