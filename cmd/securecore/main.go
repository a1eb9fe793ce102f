package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/swiftshare/securecore/modules/security"
	"github.com/swiftshare/securecore/pkg/config"
	"github.com/swiftshare/securecore/pkg/envelope"
	"github.com/swiftshare/securecore/pkg/httpserver"
	"github.com/swiftshare/securecore/pkg/logger"
	"github.com/swiftshare/securecore/pkg/mongo"
	"github.com/swiftshare/securecore/pkg/ratelimit"
	"github.com/swiftshare/securecore/pkg/redis"
	"github.com/swiftshare/securecore/svc/twofactor"
	"github.com/swiftshare/securecore/svc/webhooks"
)

type appConfig struct {
	Environment string `env:"ENVIRONMENT" envDefault:"production"`
	ServiceName string `env:"SERVICE_NAME" envDefault:"securecore"`

	// Verification attempts allowed per user within the window.
	TwoFactorRateLimit  int           `env:"TWOFA_RATE_LIMIT" envDefault:"5"`
	TwoFactorRateWindow time.Duration `env:"TWOFA_RATE_WINDOW" envDefault:"1m"`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var appCfg appConfig
	config.MustLoad(&appCfg)

	log := logger.New(logger.WithEnvironment(appCfg.Environment, appCfg.ServiceName))
	logger.SetAsDefault(log)

	if err := run(ctx, appCfg, log); err != nil {
		log.Error("service stopped", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, appCfg appConfig, log *slog.Logger) error {
	var mongoCfg mongo.Config
	config.MustLoad(&mongoCfg)
	db, err := mongo.NewWithDatabase(ctx, mongoCfg, mongoCfg.Database)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Client().Disconnect(context.Background()); err != nil {
			log.Error("failed to disconnect mongo", logger.Error(err))
		}
	}()

	var redisCfg redis.Config
	config.MustLoad(&redisCfg)
	redisClient, err := redis.Connect(ctx, redisCfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Error("failed to close redis", logger.Error(err))
		}
	}()

	var envCfg envelope.Config
	config.MustLoad(&envCfg)
	keyring, err := envelope.KeyringFromConfig(envCfg)
	if err != nil {
		return err
	}
	secrets, err := envelope.New(keyring, log)
	if err != nil {
		return err
	}

	verifyStore, err := ratelimit.NewRedisStore(redisClient, "2fa_verify")
	if err != nil {
		return err
	}
	verifyLimiter, err := ratelimit.NewFixedWindow(verifyStore, appCfg.TwoFactorRateLimit, appCfg.TwoFactorRateWindow)
	if err != nil {
		return err
	}

	twoFactorSvc, err := twofactor.New(
		twofactor.NewMongoStorage(db),
		secrets,
		twofactor.WithLogger(log),
		twofactor.WithVerifyLimiter(verifyLimiter),
	)
	if err != nil {
		return err
	}

	webhookSvc, err := webhooks.New(
		webhooks.NewMongoStorage(db),
		secrets,
		webhooks.WithLogger(log),
	)
	if err != nil {
		return err
	}

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	// The platform gateway authenticates requests and forwards the user id.
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if id := req.Header.Get("X-User-ID"); id != "" {
				req = req.WithContext(security.WithUserID(req.Context(), id))
			}
			next.ServeHTTP(w, req)
		})
	})

	r.Get("/healthz", httpserver.Probe(log))
	r.Get("/readyz", httpserver.Probe(log,
		mongo.Healthcheck(db.Client()),
		redis.Healthcheck(redisClient),
	))

	r.Mount("/security", security.Router(security.RouterOptions{
		TwoFactor: security.NewTwoFactorHandler(twoFactorSvc),
		Webhooks:  security.NewWebhooksHandler(webhookSvc),
	}))

	var httpCfg httpserver.Config
	config.MustLoad(&httpCfg)
	srv := httpserver.New(httpCfg,
		httpserver.WithLogger(log),
		httpserver.WithStartHook(func(l *slog.Logger) {
			l.Info("http server listening", slog.String("addr", httpCfg.Addr))
		}),
	)

	return srv.Run(ctx, r)
}
