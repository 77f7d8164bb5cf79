package routes

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/qistline/qistline/internal/commission"
	"github.com/qistline/qistline/internal/config"
	"github.com/qistline/qistline/internal/kyc"
	"github.com/qistline/qistline/internal/ledger"
	"github.com/qistline/qistline/internal/middleware"
	"github.com/qistline/qistline/internal/notification"
	"github.com/qistline/qistline/internal/orders"
	"github.com/qistline/qistline/internal/payments"
	"github.com/qistline/qistline/internal/profile"
	"github.com/qistline/qistline/internal/wallet"
	"github.com/qistline/qistline/internal/withdrawal"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	// Enforce DB/Redis presence outside of dev, even though main also checks.
	if !d.Cfg.Dev() {
		if d.DB == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
	}

	// Middlewares
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} -  ${latency} ${method} ${path}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	}))
	app.Use(middleware.Audit(d.Logger))
	if d.Cache != nil {
		app.Use(middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger))
	}

	// Health
	RegisterHealthRoutes(app, d)

	// Stores
	var store ledger.Store
	var orderRepo orders.Repository
	var profileRepo profile.Repository
	var checker kyc.Checker
	if d.DB != nil {
		store = ledger.NewPostgresStore(d.DB)
		orderRepo = orders.NewPostgresRepository(d.DB)
		profileRepo = profile.NewPostgresRepository(d.DB)
		checker = kyc.AnyOf(
			kyc.NewPostgresStore(d.DB, "kyc_records"),
			kyc.NewPostgresStore(d.DB, "partner_kyc_records"),
		)
	} else {
		store = ledger.NewMemoryStore()
		orderRepo = orders.NewMemoryRepository()
		profileRepo = profile.NewMemoryRepository()
		checker = kyc.AnyOf(kyc.NewMemoryStore(), kyc.NewMemoryStore())
	}

	var cache wallet.SnapshotCache
	if d.Cache != nil {
		cache = wallet.NewRedisCache(d.Cache, d.Cfg.SnapshotTTL)
	} else {
		cache = wallet.NewMemoryCache()
	}

	// Services
	notifier := notification.NewLoggerNotifier(d.Logger)
	walletSvc := wallet.NewService(store, cache, d.Cfg.Rates, d.Logger)
	orderSvc := orders.NewService(orderRepo)
	profileSvc := profile.NewService(profileRepo)
	commissionSvc := commission.NewService(store, walletSvc, orderSvc, profileSvc, notifier, d.Cfg.PlatformAccount, d.Logger)
	paymentSvc := payments.NewService(store, walletSvc, commissionSvc, d.Logger)
	withdrawalSvc := withdrawal.NewService(store, walletSvc, checker, profileSvc, notifier, d.Logger)

	// Handlers
	ledgerHandler := ledger.NewHandler(store, func(ctx context.Context, userID string) error {
		_, err := walletSvc.Project(ctx, userID)
		return err
	})
	walletHandler := wallet.NewHandler(walletSvc)
	commissionHandler := commission.NewHandler(commissionSvc)
	paymentHandler := payments.NewHandler(paymentSvc)
	withdrawalHandler := withdrawal.NewHandler(withdrawalSvc)

	// API routes
	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		reqID, _ := c.Locals("X-Request-ID").(string)
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": reqID,
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	RegisterLedgerRoutes(api, ledgerHandler)
	RegisterWalletRoutes(api, walletHandler)
	RegisterPaymentRoutes(api, paymentHandler)
	RegisterCommissionRoutes(api, commissionHandler)
	withdrawLimiter := middleware.WithdrawRateLimit(d.Cache, d.Cfg.WithdrawPerMin)
	RegisterWithdrawalRoutes(api, withdrawalHandler, withdrawLimiter)
	RegisterProfileRoutes(api, profileSvc)
	RegisterOrderRoutes(api, orderSvc)

	return nil
}
