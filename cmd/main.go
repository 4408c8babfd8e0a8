package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/Sant0sss/jpr-iphone-stock/internal/clients"
	"github.com/Sant0sss/jpr-iphone-stock/internal/config"
	"github.com/Sant0sss/jpr-iphone-stock/internal/pricing"
	"github.com/Sant0sss/jpr-iphone-stock/internal/repository"
	"github.com/Sant0sss/jpr-iphone-stock/internal/service"
	"github.com/Sant0sss/jpr-iphone-stock/internal/transport/auth"
	"github.com/Sant0sss/jpr-iphone-stock/internal/transport/rest"
	"github.com/Sant0sss/jpr-iphone-stock/internal/transport/websocket"
	"github.com/Sant0sss/jpr-iphone-stock/pkg/database/postgres"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using system env or defaults")
	}

	// top-level context which we can cancel on shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cfg := config.Load()

	db := mustInitPostgres(ctx, cfg.Postgres)
	defer postgres.Close(db)

	redisClient := mustInitRedis(cfg.Redis)
	defer redisClient.Close()

	rates := mustLoadRates(ctx, cfg.Pricing, db)
	engine := pricing.NewEngine(rates, pricing.NormalPriceRule{
		Source:     pricing.ParseNormalPriceSource(cfg.Pricing.NormalSource),
		MarkupRate: cfg.Pricing.MarkupPercent / 100,
		FlatFee:    cfg.Pricing.FlatFee,
	})
	renderer := pricing.NewRenderer(cfg.Pricing.ClubName)

	var (
		exportStorage service.ExportStorage
		localStorage  *clients.StorageClient
	)
	switch cfg.StorageDriver {
	case "s3":
		s3Client, err := clients.NewS3Client(ctx, clients.S3Config{
			Endpoint:        cfg.S3.Endpoint,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
			Bucket:          cfg.S3.Bucket,
			UseSSL:          cfg.S3.UseSSL,
			Region:          cfg.S3.Region,
			Prefix:          cfg.S3.Prefix,
			URLExpiry:       time.Duration(cfg.S3.URLExpiryHours) * time.Hour,
		})
		if err != nil {
			log.Fatalf("s3 init error: %v", err)
		}
		exportStorage = s3Client
	default:
		storageClient, err := clients.NewLocalStorage(cfg.ExportDir, cfg.FilesPublicPrefix, cfg.ExternalURL)
		if err != nil {
			log.Fatalf("storage init error: %v", err)
		}
		localStorage = storageClient
		exportStorage = storageClient
	}

	wsHub := websocket.NewHub(cfg.CORSAllowedOrigins...)
	go wsHub.Run(ctx)
	wsClient := clients.NewWebSocketClient(wsHub)

	productRepo := repository.NewProductRepository(db)
	tokenRepo := repository.NewSellerTokenRepository(db)

	quoteSvc := service.NewQuoteService(engine, renderer, productRepo)
	quoteExportSvc := service.NewQuoteExportService(productRepo, engine, redisClient, exportStorage, wsClient)
	exportSvc := service.NewExportService(redisClient)

	handler := rest.NewHandler(quoteSvc, quoteExportSvc, exportSvc)
	router := handler.InitRouterWithAuth(auth.SellerTokenMiddleware(tokenRepo))

	// protected websocket endpoint; browsers pass the token as ?token=
	router.Get("/ws", func(w http.ResponseWriter, r *http.Request) {
		sellerID, err := auth.GetSellerID(r.Context())
		if err != nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		log.Printf("[WS] connected: seller_id=%d", sellerID)
		wsHub.HandleWebSocket(w, r, sellerID)
	})

	// public root router; everything else is mounted under the auth router
	root := chi.NewRouter()

	root.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		hctx, hcancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer hcancel()

		if err := db.PingContext(hctx); err != nil {
			rest.Error(w, "postgres unavailable", 503, http.StatusServiceUnavailable)
			return
		}
		if err := redisClient.Ping(hctx); err != nil {
			rest.Error(w, "redis unavailable", 503, http.StatusServiceUnavailable)
			return
		}
		rest.Success(w, "ok", nil)
	})

	if localStorage != nil {
		root.Get(cfg.FilesPublicPrefix+"/{file}", serveExportFile(localStorage))
	}

	root.Mount("/", router)

	corsHandler := cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           300,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      corsHandler(root),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Run HTTP server in goroutine so we can listen for shutdown signals
	srvErr := make(chan error, 1)
	go func() {
		log.Printf("HTTP server listening on :%s\n", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			srvErr <- err
			return
		}
		srvErr <- nil
	}()

	scheduler := cron.New()
	if localStorage != nil {
		// local exports are only kept for 30 minutes
		if _, err := scheduler.AddFunc("@every 5m", func() {
			removed, err := localStorage.CleanupOlderThan(30 * time.Minute)
			if err != nil {
				log.Printf("[STORAGE] cleanup error: %v", err)
				return
			}
			if removed > 0 {
				log.Printf("[STORAGE] removed %d expired exports", removed)
			}
		}); err != nil {
			log.Fatalf("cleanup schedule error: %v", err)
		}
	}
	scheduler.Start()

	// Listen for OS shutdown signals
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-srvErr:
		if err != nil {
			log.Fatalf("HTTP server error: %v", err)
		}
	case sig := <-stop:
		log.Printf("Shutdown signal received: %v", sig)

		// Give server up to 10 seconds to finish ongoing requests
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("HTTP server Shutdown error: %v", err)
		}

		<-scheduler.Stop().Done()

		// Cancel top-level context so background services (websocket hub) stop
		cancel()

		log.Println("Shutdown complete")
	}
}

func serveExportFile(storage *clients.StorageClient) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		file := chi.URLParam(r, "file")

		path, err := storage.Path(file)
		if err != nil {
			if errors.Is(err, clients.ErrFileNotFound) {
				http.NotFound(w, r)
				return
			}
			log.Printf("[HTTP] serve file %q: %v", file, err)
			http.Error(w, "failed to access file", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", clients.OriginalName(file)))
		http.ServeFile(w, r, path)
	}
}

// mustLoadRates picks the fee schedule: a file wins over the database, and
// the built-in table is used when neither is configured.
func mustLoadRates(ctx context.Context, cfg config.PricingConfig, db *sql.DB) *pricing.RateTable {
	if cfg.RateTableFile != "" {
		table, err := config.LoadRateSchedule(cfg.RateTableFile, cfg.DebitRate)
		if err != nil {
			log.Fatalf("rate schedule error: %v", err)
		}
		log.Printf("[PRICING] rates loaded from %s", cfg.RateTableFile)
		return table
	}

	fallback := pricing.NewRateTableFromRows([]pricing.RateRow{
		{Channel: pricing.DebitCard, Installments: 1, Rate: cfg.DebitRate},
	}, nil)

	if cfg.RatesFromDB {
		rows, err := repository.NewRateRepository(db).List(ctx)
		if err != nil {
			log.Fatalf("rate table query error: %v", err)
		}
		log.Printf("[PRICING] %d rate rows loaded from database", len(rows))
		return pricing.NewRateTableFromRows(rows, fallback)
	}

	return fallback
}

func mustInitPostgres(ctx context.Context, cfg config.PostgresConfig) *sql.DB {
	db, err := postgres.NewPostgresConnection(ctx, postgres.ConnectionInfo{
		Host:         cfg.Host,
		Port:         cfg.Port,
		Username:     cfg.User,
		DBName:       cfg.DBName,
		SSLMode:      cfg.SSLMode,
		Password:     cfg.Password,
		MaxOpenConns: cfg.MaxOpenConns,
		MaxIdleConns: cfg.MaxOpenConns / 2,
		ConnMaxLife:  30 * time.Minute,
	})
	if err != nil {
		log.Fatalf("postgres init error: %v", err)
	}
	return db
}

func mustInitRedis(cfg config.RedisConfig) *clients.RedisClient {
	client, err := clients.NewRedisClient(clients.RedisConfig{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		MaxRetries:  cfg.MaxRetries,
		DialTimeout: time.Duration(cfg.DialTimeout) * time.Second,
		Timeout:     time.Duration(cfg.Timeout) * time.Second,
		Prefix:      cfg.Prefix,
	})
	if err != nil {
		log.Fatalf("redis init error: %v", err)
	}
	return client
}
