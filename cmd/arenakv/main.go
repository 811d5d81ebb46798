// Command arenakv runs the embedded arena-backed key-value engine: the
// raw HTTP/1.1-framed wire protocol on PORT, and, unless disabled, the
// read-only admin/metrics API on ADMIN_PORT.
package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/huynhanx03/arenakv/pkg/admin"
	"github.com/huynhanx03/arenakv/pkg/arena"
	"github.com/huynhanx03/arenakv/pkg/logging"
	"github.com/huynhanx03/arenakv/pkg/server"
	"github.com/huynhanx03/arenakv/pkg/settings"
)

const accessLogStripeSize = 256

func main() {
	configPath := flag.String("config", "", "path to a YAML config file (optional, overlays defaults)")
	flag.Parse()

	cfg, err := settings.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Logger)
	defer logger.Sync()

	instanceID := uuid.New().String()
	logger.Info("starting arenakv",
		zap.String("instance_id", instanceID),
		zap.Int("port", cfg.Server.Port),
		zap.Int("admin_port", cfg.Admin.Port),
		zap.Int("total_memory_size", cfg.Arena.TotalMemorySize),
	)

	a := arena.New(cfg.Arena.TotalMemorySize, cfg.Arena.IndexSize, cfg.Arena.CacheSize)

	if cfg.Snapshot.DefaultPath != "" {
		if err := a.Load(cfg.Snapshot.DefaultPath); err != nil {
			logger.Info("no snapshot loaded at startup", zap.Error(err))
		} else {
			logger.Info("restored snapshot", zap.String("path", cfg.Snapshot.DefaultPath))
		}
	}

	accessLog := server.NewAccessLogger(logger, accessLogStripeSize)
	dispatcher := server.NewDispatcher(a, 1<<12, accessLog)
	listener := server.New(net.JoinHostPort(cfg.Server.Host, itoa(cfg.Server.Port)), dispatcher, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		dispatcher.Run()
		return nil
	})

	g.Go(func() error {
		return listener.ListenAndServe(gctx)
	})

	var adminSrv *http.Server
	if cfg.Admin.Enabled {
		adminSrv = &http.Server{
			Addr:              net.JoinHostPort(cfg.Server.Host, itoa(cfg.Admin.Port)),
			Handler:           admin.Router(a, dispatcher),
			ReadHeaderTimeout: 5 * time.Second,
		}
		g.Go(func() error {
			logger.Info("admin surface listening", zap.String("addr", adminSrv.Addr))
			if err := adminSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return err
			}
			return nil
		})
	}

	<-gctx.Done()
	dispatcher.Stop()
	if adminSrv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		adminSrv.Shutdown(shutdownCtx)
	}

	if cfg.Snapshot.DefaultPath != "" {
		if err := a.Save(cfg.Snapshot.DefaultPath); err != nil {
			logger.Error("failed to save shutdown snapshot", zap.Error(err))
		} else {
			logger.Info("saved snapshot", zap.String("path", cfg.Snapshot.DefaultPath))
		}
	}

	if err := g.Wait(); err != nil {
		logger.Error("arenakv exited with error", zap.Error(err))
		os.Exit(1)
	}
}

func itoa(n int) string {
	return fmt.Sprintf("%d", n)
}
