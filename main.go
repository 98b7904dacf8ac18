package main

import (
	"context"
	stderrors "errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"zymeboard/adapters/artifacts"
	"zymeboard/adapters/hub"
	"zymeboard/adapters/plotly"
	"zymeboard/adapters/s3store"
	"zymeboard/app"
	"zymeboard/internal"
	"zymeboard/internal/cache"
	"zymeboard/internal/config"
	"zymeboard/internal/errors"
	"zymeboard/internal/metrics"
	"zymeboard/internal/session"
	"zymeboard/ports"
	"zymeboard/ui"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

// shutdownTimeout bounds how long in-flight requests may take after a signal
const shutdownTimeout = 10 * time.Second

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg, err := config.Load(os.Args[1:])
	if stderrors.Is(err, flag.ErrHelp) {
		fmt.Fprint(os.Stderr, err.Error())
		os.Exit(0)
	}
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := internal.DefaultLogger
	logger.SetLevel(internal.ParseLogLevel(cfg.Log.Level))
	gin.SetMode(cfg.Server.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("[%s] %v", errors.GetCode(err), err)
		stop()
		os.Exit(1)
	}
}

// run loads the results, assembles the pages and serves them until ctx ends
func run(ctx context.Context, cfg *config.Config, logger *internal.Logger) error {
	src, err := newSource(ctx, cfg)
	if err != nil {
		return err
	}
	logger.Info("Loading %s results for %q", src.Kind(), cfg.SourceName())

	m := metrics.New()
	start := time.Now()
	res, err := artifacts.Load(ctx, src, artifacts.Options{
		LegendAttribute: cfg.Data.LegendAttribute,
		IDColumn:        cfg.Data.IDColumn,
	})
	m.ObserveLoad(src.Kind(), time.Since(start))
	if err != nil {
		return err
	}
	m.SetDatasetRows(res.Dataset.Len())
	logger.Debug("ID column %q, %d columns", res.IDColumn, len(res.Dataset.Headers))

	registry, err := app.NewDashboardService(plotly.NewBuilder(res.IDColumn)).Build(app.BuildRequest{
		Results:         res,
		LegendAttribute: cfg.Data.LegendAttribute,
		Prefix:          cfg.Server.BasePath,
	})
	if err != nil {
		return err
	}

	server, err := ui.NewServer(registry, res, session.NewStore(cfg.Session.TTL), m, ui.Options{
		SourceName: cfg.SourceName(),
		BackLink:   cfg.Shell.BackLink,
	})
	if err != nil {
		return errors.Wrap(err, "failed to initialize server")
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.Start(cfg.Addr())
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "graceful shutdown failed")
	}
	logger.Info("Server stopped")
	return nil
}

// newSource picks the artifact source the configuration asks for
func newSource(ctx context.Context, cfg *config.Config) (ports.ArtifactSource, error) {
	if cfg.SourceKind() == config.SourceLocal {
		return artifacts.NewLocalSource(cfg.Data.Dir), nil
	}

	blobs, err := cache.NewBlobStore(cfg.Data.CacheDir)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open download cache")
	}

	if cfg.SourceKind() == config.SourceS3 {
		return s3store.New(ctx, s3store.Config{
			URL:       cfg.Data.S3URL,
			Region:    cfg.Data.S3Region,
			Endpoint:  cfg.Data.S3Endpoint,
			PathStyle: cfg.Data.S3PathStyle,
		}, blobs)
	}

	client := hub.NewClient(hub.Config{
		Endpoint: cfg.Data.HubEndpoint,
		Repo:     cfg.Data.HubRepo,
		Revision: cfg.Data.HubRevision,
		Token:    cfg.Data.HubToken,
	}, blobs)
	return hub.NewSource(client, cfg.Data.HubName), nil
}
