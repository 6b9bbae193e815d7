package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/botikaph/annotator-backend/config"
	"github.com/botikaph/annotator-backend/internal/database"
	"github.com/botikaph/annotator-backend/internal/server"
	"github.com/botikaph/annotator-backend/internal/service"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load configuration")
	}

	// Raw connection verifies the database is reachable before the ORM
	// starts serving traffic.
	rawDB, err := database.New(cfg)
	if err != nil {
		logrus.WithError(err).Fatal("failed to connect to database")
	}
	defer rawDB.Close()

	db, err := database.NewGorm(cfg)
	if err != nil {
		logrus.WithError(err).Fatal("failed to open gorm connection")
	}

	if err := database.RunMigrations(db, cfg.MigrationsDir); err != nil {
		logrus.WithError(err).Fatal("failed to run migrations")
	}

	authService := service.NewAuthService(db, cfg.JWTSecret)
	srv := server.New(db, authService, cfg)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil {
			logrus.WithError(err).Fatal("server error")
		}
	case sig := <-quit:
		logrus.WithField("signal", sig.String()).Info("received signal")
	}

	logrus.Info("shutting down server")
	if err := srv.Shutdown(context.Background()); err != nil {
		logrus.WithError(err).Fatal("server shutdown error")
	}
	logrus.Info("server stopped")
}
