package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/yumyai/snpseek/internal/config"
	"github.com/yumyai/snpseek/logger"
	"github.com/yumyai/snpseek/pkg/blob"
	"github.com/yumyai/snpseek/pkg/db"
	"github.com/yumyai/snpseek/pkg/handler"
	"github.com/yumyai/snpseek/pkg/middle"
	"github.com/yumyai/snpseek/pkg/render"
	"github.com/yumyai/snpseek/pkg/search"
)

const VERSION = "0.1.0"

var configPath string

func main() {
	root := &cobra.Command{
		Use:           "snpseek",
		Short:         "Genotype matrix search service",
		Version:       VERSION,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", defaultConfigPath(), "path to the YAML configuration")
	root.AddCommand(serveCmd(), exportCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "snpseek:", err)
		logger.Error("Command failed", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
}

func defaultConfigPath() string {
	if p := os.Getenv("SNPSEEK_CONFIG"); p != "" {
		return p
	}
	return "config.yaml"
}

// app is everything a command needs once configuration is loaded.
type app struct {
	cfg      *config.Config
	geno     *db.GenoDB
	engine   *search.Engine
	catalog  *search.Catalog
	exporter *render.GenotypeExporter
	archive  blob.Store
}

func setup(ctx context.Context) (*app, error) {
	// Try load env
	dotenvErr := godotenv.Load()

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if err := logger.InitLogger(logger.ParseLevel(cfg.Log.Level)); err != nil {
		return nil, err
	}
	if dotenvErr != nil {
		logger.Warn("No .env found, using local environment")
	}
	if cfg.SQLiteDirMissing() {
		logger.Warn("SQLite directory does not exist", zap.String("dsn", cfg.Database.DSN))
	}

	conn, err := db.Open(ctx, cfg.Database.Driver, cfg.Database.DSN, cfg.Database.MaxOpenConns)
	if err != nil {
		return nil, err
	}
	logger.Info("Open database on", zap.String("driver", cfg.Database.Driver), zap.String("dsn", cfg.Database.DSN))

	geno := db.NewGenoDB(conn)
	stores := search.FromGenoDB(geno)
	opts := searchOptions(cfg)
	engine := search.NewEngine(stores, opts)

	a := &app{
		cfg:      cfg,
		geno:     geno,
		engine:   engine,
		catalog:  search.NewCatalog(stores, opts),
		exporter: render.NewGenotypeExporter(engine, cfg.Export.ReferenceLabel),
	}

	if arc := cfg.Export.Archive; arc.Bucket != "" {
		s3, err := blob.NewS3(ctx, blob.S3Config{
			Bucket:    arc.Bucket,
			Region:    arc.Region,
			Endpoint:  arc.Endpoint,
			PathStyle: arc.PathStyle,
		})
		if err != nil {
			geno.Close()
			return nil, err
		}
		a.archive = s3
		logger.Info("Archiving exports", zap.String("bucket", arc.Bucket))
	}
	return a, nil
}

func searchOptions(cfg *config.Config) search.Options {
	s := cfg.Search
	return search.Options{
		PageSize:       s.PageSize,
		LocusBatchSize: s.LocusBatchSize,
		OwnerBatchSize: s.OwnerBatchSize,
		RequestTimeout: s.RequestTimeout,
		Retry: search.RetryPolicy{
			Attempts:       s.Retry.Attempts,
			InitialBackoff: s.Retry.InitialBackoff,
			MaxBackoff:     s.Retry.MaxBackoff,
			LeafTimeout:    s.LeafTimeout,
		},
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := setup(ctx)
			if err != nil {
				return err
			}
			defer a.geno.Close()
			defer logger.Sync() // Make sure that the buffered is flushed.

			logger.Info("Start:", zap.String("Version", VERSION))

			srv := &http.Server{
				Addr:              a.cfg.Server.Addr,
				Handler:           a.router(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errc := make(chan error, 1)
			go func() {
				logger.Info("Server starting", zap.String("addr", srv.Addr))
				errc <- srv.ListenAndServe()
			}()

			select {
			case err := <-errc:
				if !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			case <-ctx.Done():
			}

			logger.Info("Shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
}

func (a *app) router() http.Handler {
	mux := http.NewServeMux()

	// Error route
	mux.HandleFunc("GET /favicon.ico", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Not Found", http.StatusNotFound)
	})

	appCtx := &handler.AppContext{
		Searcher:       a.engine,
		Exporter:       a.exporter,
		Catalog:        a.catalog,
		Health:         a.geno,
		Archive:        a.archive,
		ExportFilename: a.cfg.Export.Filename,
	}
	appCtx.RegisterRoutes(mux)
	mux.Handle("GET /metrics", promhttp.Handler())

	// Apply middleware
	mlog := middle.CreateMiddlewareLogger(logger.ParseLevel(a.cfg.Log.Level))
	var h http.Handler = mux
	h = middle.LoggingMiddleware(mlog)(h)
	h = middle.RequestIDMiddleware(mlog)(h)
	return h
}
