package twofactor_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swiftshare/securecore/pkg/cipher"
	"github.com/swiftshare/securecore/pkg/envelope"
	"github.com/swiftshare/securecore/pkg/ratelimit"
	"github.com/swiftshare/securecore/pkg/totp"
	"github.com/swiftshare/securecore/svc/twofactor"
)

func newTestEnvelope(t *testing.T) *envelope.Service {
	t.Helper()

	key, err := cipher.GenerateKey()
	require.NoError(t, err)
	keyring, err := envelope.NewStaticKeyring(key)
	require.NoError(t, err)
	svc, err := envelope.New(keyring, slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	return svc
}

func newTestService(t *testing.T, opts ...twofactor.Option) (*twofactor.Service, *twofactor.MemoryStorage) {
	t.Helper()

	storage := twofactor.NewMemoryStorage()
	opts = append([]twofactor.Option{twofactor.WithLogger(slog.New(slog.DiscardHandler))}, opts...)
	svc, err := twofactor.New(storage, newTestEnvelope(t), opts...)
	require.NoError(t, err)
	return svc, storage
}

func TestService_Setup(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)

	enrollment, err := svc.Setup(context.Background(), "user-1", "user@example.com")
	require.NoError(t, err)
	assert.Regexp(t, totp.ValidateSecretKeyRegex, enrollment.Secret)
	assert.Contains(t, enrollment.URI, "otpauth://totp/")
	assert.Contains(t, enrollment.URI, "secret="+enrollment.Secret)
	assert.Len(t, enrollment.BackupCodes, 10)

	// Setup must not persist anything
	enabled, err := svc.Enabled(context.Background(), "user-1")
	require.NoError(t, err)
	assert.False(t, enabled)
}

func TestService_EnableDisable(t *testing.T) {
	t.Parallel()

	svc, storage := newTestService(t)
	ctx := context.Background()

	enrollment, err := svc.Setup(ctx, "user-1", "user@example.com")
	require.NoError(t, err)

	require.NoError(t, svc.Enable(ctx, "user-1", enrollment.Secret, enrollment.BackupCodes))

	cfg, err := storage.Get(ctx, "user-1")
	require.NoError(t, err)
	assert.True(t, cfg.Enabled)
	assert.Len(t, cfg.BackupCodeHashes, 10)
	require.NotNil(t, cfg.EnabledAt)

	// Secret must be stored in envelope format, never as plaintext
	assert.True(t, envelope.IsWrapped(cfg.Secret))
	assert.NotContains(t, cfg.Secret, enrollment.Secret)

	require.NoError(t, svc.Disable(ctx, "user-1"))
	_, err = storage.Get(ctx, "user-1")
	assert.ErrorIs(t, err, twofactor.ErrNotFound)

	// Disable is idempotent
	assert.NoError(t, svc.Disable(ctx, "user-1"))
}

func TestService_Enable_Validation(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	err := svc.Enable(ctx, "", "ABCDEFGHIJKLMNOP", []string{"A1B2-C3D4"})
	assert.ErrorIs(t, err, twofactor.ErrUserIDRequired)

	err = svc.Enable(ctx, "user-1", "not base32!", []string{"A1B2-C3D4"})
	assert.ErrorIs(t, err, totp.ErrInvalidSecret)

	err = svc.Enable(ctx, "user-1", "ABCDEFGHIJKLMNOP", nil)
	assert.ErrorIs(t, err, twofactor.ErrBackupCodesRequired)
}

func TestService_Verify_TOTP(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	enrollment, err := svc.Setup(ctx, "user-1", "user@example.com")
	require.NoError(t, err)
	require.NoError(t, svc.Enable(ctx, "user-1", enrollment.Secret, enrollment.BackupCodes))

	code, err := totp.Generate(enrollment.Secret)
	require.NoError(t, err)

	result := svc.Verify(ctx, "user-1", code)
	assert.True(t, result.Valid)
	assert.False(t, result.UsedBackupCode)
	assert.Equal(t, 10, result.RemainingBackupCodes)

	assert.False(t, svc.Verify(ctx, "user-1", "000000").Valid)
}

func TestService_Verify_BackupCodeConsumedOnce(t *testing.T) {
	t.Parallel()

	svc, storage := newTestService(t)
	ctx := context.Background()

	enrollment, err := svc.Setup(ctx, "user-1", "user@example.com")
	require.NoError(t, err)
	require.NoError(t, svc.Enable(ctx, "user-1", enrollment.Secret, enrollment.BackupCodes))

	code := enrollment.BackupCodes[3]

	result := svc.Verify(ctx, "user-1", code)
	assert.True(t, result.Valid)
	assert.True(t, result.UsedBackupCode)
	assert.Equal(t, 9, result.RemainingBackupCodes)

	cfg, err := storage.Get(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, cfg.BackupCodeHashes, 9)

	// Reusing the same code must fail
	assert.False(t, svc.Verify(ctx, "user-1", code).Valid)

	// Remaining codes still work
	assert.True(t, svc.Verify(ctx, "user-1", enrollment.BackupCodes[0]).Valid)
}

func TestService_Verify_DisabledOrAbsent(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	// No record at all: invalid, never an error
	assert.False(t, svc.Verify(ctx, "ghost", "123456").Valid)
	assert.False(t, svc.Verify(ctx, "", "123456").Valid)
	assert.False(t, svc.Verify(ctx, "ghost", "").Valid)
}

func TestService_Verify_LegacyPlaintextSecret(t *testing.T) {
	t.Parallel()

	svc, storage := newTestService(t)
	ctx := context.Background()

	secret, err := totp.GenerateSecretKey()
	require.NoError(t, err)

	// Simulate a row written before envelope encryption existed
	now := time.Now().UTC()
	require.NoError(t, storage.Save(ctx, "legacy-user", &twofactor.Config{
		Enabled:          true,
		Secret:           secret,
		BackupCodeHashes: totp.HashBackupCodes([]string{"A1B2-C3D4"}),
		EnabledAt:        &now,
	}))

	code, err := totp.Generate(secret)
	require.NoError(t, err)

	assert.True(t, svc.Verify(ctx, "legacy-user", code).Valid)
}

func TestService_Verify_Throttled(t *testing.T) {
	t.Parallel()

	limiter, err := ratelimit.NewFixedWindow(ratelimit.NewMemoryStore(), 3, time.Minute)
	require.NoError(t, err)

	svc, _ := newTestService(t, twofactor.WithVerifyLimiter(limiter))
	ctx := context.Background()

	enrollment, err := svc.Setup(ctx, "user-1", "user@example.com")
	require.NoError(t, err)
	require.NoError(t, svc.Enable(ctx, "user-1", enrollment.Secret, enrollment.BackupCodes))

	for range 3 {
		svc.Verify(ctx, "user-1", "000000")
	}

	// Even a correct code is rejected once throttled
	code, err := totp.Generate(enrollment.Secret)
	require.NoError(t, err)
	assert.False(t, svc.Verify(ctx, "user-1", code).Valid)

	// Other users are unaffected
	assert.False(t, svc.Verify(ctx, "user-2", "000000").UsedBackupCode)
}
