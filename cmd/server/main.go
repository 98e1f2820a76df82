package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ogurasousui/employee-directory/internal/adapters/http/handler"
	"github.com/ogurasousui/employee-directory/internal/core/employee"
	"github.com/ogurasousui/employee-directory/internal/platform/config"
	"github.com/ogurasousui/employee-directory/internal/platform/logging"
	"github.com/ogurasousui/employee-directory/internal/platform/metrics"
	"github.com/ogurasousui/employee-directory/internal/platform/server"
)

func main() {
	configPath := flag.String("config", "", "path to config file (defaults to CONFIG_PATH env or assets/local.yaml)")
	flag.Parse()

	if err := run(*configPath); err != nil {
		log.Fatalf("server stopped with error: %v", err)
	}
}

func run(configPath string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if _, err := config.LoadEnvFiles(".env"); err != nil {
		return err
	}

	cfg, err := config.Load(config.EffectivePath(configPath))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, closer, err := logging.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer closer.Close()

	st, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer st.close()

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
	}

	svc := employee.NewService(st.repo, nil, st.tx)
	router := handler.NewRouter(svc, logger, handler.RouterOptions{
		AllowedOrigins: cfg.Server.CORSAllowedOrigins,
		Metrics:        m,
		MetricsPath:    cfg.Metrics.Path,
	})

	srv := server.New(server.Options{
		ListenAddr:       cfg.Server.ListenAddr,
		HealthListenAddr: cfg.Server.HealthListenAddr,
		ReadTimeout:      cfg.Server.ReadTimeout,
		WriteTimeout:     cfg.Server.WriteTimeout,
		ShutdownTimeout:  cfg.Server.ShutdownTimeout,
	}, router, logger)

	logger.WithField("store", cfg.Store.Driver).Info("employee directory starting")
	return srv.Run(ctx)
}
