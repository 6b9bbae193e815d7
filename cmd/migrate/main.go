package main

import (
	"github.com/sirupsen/logrus"

	"github.com/botikaph/annotator-backend/config"
	"github.com/botikaph/annotator-backend/internal/database"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load configuration")
	}

	db, err := database.NewGorm(cfg)
	if err != nil {
		logrus.WithError(err).Fatal("failed to open gorm connection")
	}

	if err := database.RunMigrations(db, cfg.MigrationsDir); err != nil {
		logrus.WithError(err).Fatal("failed to run migrations")
	}

	logrus.Info("all migrations applied successfully")
}
