package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/grocerease/grocerease-backend/api"
	"github.com/grocerease/grocerease-backend/api/responses"
	"github.com/grocerease/grocerease-backend/api/routes"
	"github.com/grocerease/grocerease-backend/internal/admin"
	"github.com/grocerease/grocerease-backend/internal/auth"
	"github.com/grocerease/grocerease-backend/internal/employee"
	"github.com/grocerease/grocerease-backend/internal/items"
	"github.com/grocerease/grocerease-backend/internal/lists"
	"github.com/grocerease/grocerease-backend/internal/reports"
	"github.com/grocerease/grocerease-backend/internal/search"
	"github.com/grocerease/grocerease-backend/internal/stores"
	"github.com/grocerease/grocerease-backend/internal/users"
	pkgAuth "github.com/grocerease/grocerease-backend/pkg/auth"
	"github.com/grocerease/grocerease-backend/pkg/cache"
	"github.com/grocerease/grocerease-backend/pkg/config"
	"github.com/grocerease/grocerease-backend/pkg/db"
	"github.com/grocerease/grocerease-backend/pkg/instance"
	"github.com/grocerease/grocerease-backend/pkg/logger"
	"github.com/grocerease/grocerease-backend/pkg/metrics"
	"github.com/grocerease/grocerease-backend/pkg/migrate"
	"github.com/grocerease/grocerease-backend/pkg/ratelimit"
	"github.com/grocerease/grocerease-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})
	responses.ExposeInternalErrors(cfg.App.IsDev())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run dev migrations", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	httpMetrics := metrics.NewHTTPMetrics(registry)
	cacheMetrics := metrics.NewCacheMetrics(registry)
	limiterMetrics := metrics.NewLimiterMetrics(registry)

	deps := routes.Dependencies{
		DB:             dbClient,
		HTTPMetrics:    httpMetrics,
		MetricsHandler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}),
	}

	var (
		redisClient   *redis.Client
		filterCache   cache.Cache
		revocations   pkgAuth.RevocationStore
		memoryWindows []*ratelimit.SlidingWindow
	)
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			logg.Error(ctx, "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
		filterCache = cache.NewRedis(redisClient, cacheMetrics)
		revocations = pkgAuth.NewRedisRevocations(redisClient)
		deps.Redis = redisClient
		deps.Idempotency = redisClient
	} else {
		logg.Warn(ctx, "redis not configured, using in-process cache and limiters")
		filterCache = cache.NewMemory(cache.WithMemoryRecorder(cacheMetrics))
		revocations = pkgAuth.NewMemoryRevocations()
	}

	newLimiter := func(scope string, limit int, window time.Duration) ratelimit.Limiter {
		if redisClient != nil {
			return ratelimit.NewRedis(redisClient, scope, limit, window, limiterMetrics)
		}
		sw := ratelimit.NewSlidingWindow(scope, limit, window, ratelimit.WithRecorder(limiterMetrics))
		memoryWindows = append(memoryWindows, sw)
		return sw
	}
	rl := cfg.AuthRateLimit
	deps.Limiters = routes.Limiters{
		Search:        newLimiter("search", cfg.Search.RateLimit, cfg.Search.RateWindow),
		LoginIP:       newLimiter("login_ip", rl.LoginIPLimit, rl.LoginWindow),
		LoginEmail:    newLimiter("login_email", rl.LoginEmailLimit, rl.LoginWindow),
		RegisterIP:    newLimiter("register_ip", rl.RegisterIPLimit, rl.RegisterWindow),
		RegisterEmail: newLimiter("register_email", rl.RegisterEmailLimit, rl.RegisterWindow),
	}
	if len(memoryWindows) > 0 {
		go pruneWindows(ctx, memoryWindows)
	}

	conn := dbClient.DB()
	userRepo := users.NewRepository(conn)
	storeRepo := stores.NewRepository(conn)
	itemRepo := items.NewRepository(conn)
	reportRepo := reports.NewRepository(conn)
	deps.Users = userRepo
	deps.Revocations = revocations

	fail := func(name string, err error) {
		logg.Error(ctx, "failed to create "+name+" service", err)
		os.Exit(1)
	}

	if deps.AuthService, err = auth.NewService(auth.ServiceParams{
		Users:          userRepo,
		Tx:             dbClient,
		Revocations:    revocations,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
		Logger:         logg,
	}); err != nil {
		fail("auth", err)
	}
	if deps.UserService, err = users.NewService(users.ServiceParams{
		Repo:           userRepo,
		Tx:             dbClient,
		PasswordConfig: cfg.Password,
	}); err != nil {
		fail("user", err)
	}
	if deps.StoreService, err = stores.NewService(stores.ServiceParams{
		Repo:   storeRepo,
		Users:  userRepo,
		Tx:     dbClient,
		Logger: logg,
	}); err != nil {
		fail("store", err)
	}
	if deps.ItemService, err = items.NewService(items.ServiceParams{
		Repo:   itemRepo,
		Stores: storeRepo,
		Tx:     dbClient,
		Logger: logg,
	}); err != nil {
		fail("item", err)
	}
	if deps.SearchService, err = search.NewService(search.ServiceParams{
		Repo:     search.NewRepository(conn),
		Cache:    filterCache,
		CacheTTL: cfg.Search.FilterCacheTTL,
		Logger:   logg,
	}); err != nil {
		fail("search", err)
	}
	if deps.EmployeeService, err = employee.NewService(employee.ServiceParams{
		Items:   itemRepo,
		Catalog: deps.ItemService,
		Search:  deps.SearchService,
		Stores:  storeRepo,
		Tx:      dbClient,
		Logger:  logg,
	}); err != nil {
		fail("employee", err)
	}
	if deps.ReportService, err = reports.NewService(reports.ServiceParams{
		Repo:   reportRepo,
		Items:  itemRepo,
		Tx:     dbClient,
		Logger: logg,
	}); err != nil {
		fail("report", err)
	}
	if deps.ListService, err = lists.NewService(lists.ServiceParams{
		Repo:   lists.NewRepository(conn),
		Items:  itemRepo,
		Tx:     dbClient,
		Logger: logg,
	}); err != nil {
		fail("list", err)
	}
	if deps.AdminService, err = admin.NewService(admin.ServiceParams{
		Users:   userRepo,
		Items:   itemRepo,
		Reports: reportRepo,
		Stores:  storeRepo,
	}); err != nil {
		fail("admin", err)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	runCtx := logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": instance.ID(),
		"redis":    redisClient != nil,
	})
	logg.Info(runCtx, "starting api server")

	server := api.NewServer(addr, routes.NewRouter(cfg, logg, deps))
	if err := api.Run(runCtx, server, logg); err != nil {
		logg.Error(runCtx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

// pruneWindows drops idle keys from the in-process limiters.
func pruneWindows(ctx context.Context, windows []*ratelimit.SlidingWindow) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, w := range windows {
				w.Prune()
			}
		}
	}
}
