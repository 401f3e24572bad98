package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"foodtruck-order-service/internal/auth"
	"foodtruck-order-service/internal/cache"
	"foodtruck-order-service/internal/changes"
	"foodtruck-order-service/internal/config"
	"foodtruck-order-service/internal/db"
	httpapi "foodtruck-order-service/internal/http"
	"foodtruck-order-service/internal/http/handlers"
	"foodtruck-order-service/internal/logger"
	"foodtruck-order-service/internal/migrate"
	"foodtruck-order-service/internal/notify"
	"foodtruck-order-service/internal/ordering"
	"foodtruck-order-service/internal/queue"
	"foodtruck-order-service/internal/receipt"
	"foodtruck-order-service/internal/slots"
	"foodtruck-order-service/internal/storage"
	"foodtruck-order-service/internal/store"
	"foodtruck-order-service/internal/ws"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log, err := logger.New(cfg.Env, cfg.LogFile)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx, cancelBackground := context.WithCancel(context.Background())
	defer cancelBackground()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal("database connection failed", zap.Error(err))
	}
	defer pool.Close()

	if cfg.RunMigrations {
		if err := migrate.Apply(ctx, pool); err != nil {
			log.Fatal("database migration failed", zap.Error(err))
		}
		log.Info("database schema up to date")
	}

	st := store.New(pool)

	var guard ordering.Guard = ordering.NewLocalGuard()
	if cfg.RedisURL != "" {
		redisClient, err := cache.Initialize(ctx, cfg.RedisURL)
		if err != nil {
			if cfg.IsProduction() {
				log.Fatal("redis connection failed", zap.Error(err))
			}
			log.Warn("redis connection failed; submission guard is per instance", zap.Error(err))
		} else {
			defer redisClient.Close()
			guard = ordering.NewRedisGuard(redisClient, cfg.SubmitLockTTL, log)
			log.Info("redis submission guard enabled")
		}
	}

	queueClient := connectQueue(ctx, cfg, log)
	if queueClient != nil {
		defer queueClient.Close()
		if cfg.RabbitMQWorkerMode == "daemon" {
			translator := &queue.Translator{Orders: st.Orders, Queue: queueClient, Currency: cfg.Currency}
			log.Info("event translator enabled", zap.String("mode", "daemon"))
			go func() {
				err := queueClient.ConsumeWithRetry(ctx, queue.EventsQueue, translator.Process, 5, 5*time.Second, log)
				if err != nil && ctx.Err() == nil {
					log.Error("consumer stopped", zap.Error(err))
				}
			}()
		} else {
			log.Info("event translator disabled", zap.String("mode", cfg.RabbitMQWorkerMode))
		}
	}

	h := &handlers.Handler{
		Logger:      log,
		Config:      cfg,
		Menu:        st.Menu,
		Stops:       st.Stops,
		Schedule:    st.Schedule,
		Orders:      st.Orders,
		Contacts:    st.Contacts,
		Permissions: st.Permissions,
	}

	storeCfg := storage.ConfigFrom(cfg)
	if storeCfg.Enabled() {
		objects, err := storage.NewObjectStore(ctx, storeCfg)
		if err != nil {
			log.Warn("object store unavailable; photo upload and receipt archive disabled", zap.Error(err))
		} else {
			h.Photos = objects
			h.Archiver = &receipt.Archiver{Store: objects}
			log.Info("object store enabled", zap.String("bucket", storeCfg.Bucket))
		}
	}

	authService := auth.NewService(st.Admins, cfg.JWTSecret, time.Duration(cfg.JWTExpirySeconds)*time.Second, log)
	if err := authService.Bootstrap(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.Warn("admin bootstrap failed", zap.Error(err))
	}
	h.Auth = authService

	resolver := slots.New(cfg, st.Schedule, log)
	h.Slots = resolver
	h.Ordering = ordering.NewService(st.Stops, st.Orders, resolver, guard, cfg.BackendTimeout, log)

	hub := ws.NewHub(log)
	toasts := notify.NewToastFeed()
	channels := []notify.Channel{}
	if queueClient != nil {
		channels = append(channels, notify.RequirePermission(st.Permissions, &queue.PushChannel{Client: queueClient}))
	}
	channels = append(channels,
		notify.RequirePermission(st.Permissions, &ws.NotificationChannel{Hub: hub}),
		toasts,
	)
	fanout := notify.NewFanout(cfg.NotifyDismissAfter, log, channels...)
	h.Toasts = toasts

	refresher := &ws.Refresher{
		Orders:   st.Orders,
		Contacts: st.Contacts,
		Hub:      hub,
		Fanout:   fanout,
		Currency: cfg.Currency,
		Timeout:  cfg.BackendTimeout,
		Logger:   log,
	}
	if queueClient != nil {
		h.Events = queueClient
		refresher.Events = queueClient
	}

	listener := changes.NewListener(pool, log)
	go listener.Run(ctx)
	go refresher.RunPush(ctx, listener)
	if cfg.AdminPollInterval > 0 {
		go refresher.RunPolling(ctx, cfg.AdminPollInterval)
	}

	wsServer := &ws.Server{
		Hub:         hub,
		Refresher:   refresher,
		Sessions:    authService,
		Permissions: st.Permissions,
		Heartbeat:   cfg.WSHeartbeatInterval,
		Logger:      log,
	}

	health := func(r *http.Request) error {
		pingCtx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		return pool.Ping(pingCtx)
	}

	apiServer := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      httpapi.NewRouter(log, cfg, h, authService, wsServer, health),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("order api ready", zap.String("base", "/api"))
		log.Info("order ws ready", zap.String("base", "/ws"))
		log.Info("order service listening", zap.String("addr", cfg.HTTPAddr))
		if err := apiServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("http server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	cancelBackground()
	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(ctxShutdown); err != nil {
		log.Error("http server shutdown failed", zap.Error(err))
	}
}

// connectQueue dials RabbitMQ and declares the topology. Outside production
// a broker failure only disables the queue-backed features.
func connectQueue(ctx context.Context, cfg config.Config, log *zap.Logger) *queue.Client {
	if cfg.RabbitMQURL == "" {
		log.Info("rabbitmq disabled (RABBITMQ_URL is empty)")
		return nil
	}
	qc, err := queue.New(cfg.RabbitMQURL)
	if err != nil {
		if cfg.IsProduction() {
			log.Fatal("rabbitmq connection failed", zap.Error(err))
		}
		log.Warn("rabbitmq connection failed; continuing without worker", zap.Error(err))
		return nil
	}
	if err := queue.EnsureTopology(ctx, qc); err != nil {
		if cfg.IsProduction() {
			log.Fatal("rabbitmq topology failed", zap.Error(err))
		}
		log.Warn("rabbitmq topology failed; continuing without worker", zap.Error(err))
		_ = qc.Close()
		return nil
	}
	log.Info("rabbitmq enabled", zap.String("eventsQueue", queue.EventsQueue))
	return qc
}
