package main

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/botikaph/annotator-backend/config"
	"github.com/botikaph/annotator-backend/internal/database"
	"github.com/botikaph/annotator-backend/internal/service"
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

	authService := service.NewAuthService(db, cfg.JWTSecret)
	ctx := context.Background()

	seedUsers := []struct {
		name     string
		email    string
		password string
		isAdmin  bool
	}{
		{"Maria Santos", "maria.santos@example.com", "testpassword123", false},
		{"Jose Reyes", "jose.reyes@example.com", "testpassword123", false},
		{"Admin User", "admin@example.com", "adminpassword123", true},
	}

	for _, u := range seedUsers {
		user, err := authService.CreateUser(ctx, u.name, u.email, u.password, u.isAdmin)
		if err != nil {
			if err == service.ErrEmailTaken {
				logrus.WithField("email", u.email).Info("user already exists, skipping")
				continue
			}
			logrus.WithError(err).WithField("email", u.email).Fatal("failed to seed user")
		}
		logrus.WithFields(logrus.Fields{
			"email":    user.Email,
			"is_admin": user.IsAdmin,
		}).Info("seeded user")
	}
}
