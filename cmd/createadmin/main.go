// Command createadmin seeds an admin account. Running it again with the same
// email is a no-op.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/Domenick1991/flightbook/config"
	"github.com/Domenick1991/flightbook/internal/auth"
	"github.com/Domenick1991/flightbook/internal/logger"
	"github.com/Domenick1991/flightbook/internal/repository"
	"github.com/Domenick1991/flightbook/internal/service/users"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

func main() {
	email := flag.String("email", "admin@admin.com", "admin email")
	password := flag.String("password", "admin", "admin password")
	name := flag.String("name", "admin", "admin display name")
	flag.Parse()

	_ = godotenv.Load()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}
	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logr := logger.New(cfg.Log)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	if err := repository.NewStore(pool).Migrate(ctx); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	gormDB, err := repository.OpenGorm(pool)
	if err != nil {
		log.Fatalf("open gorm: %v", err)
	}

	tokens, err := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL())
	if err != nil {
		log.Fatalf("token service: %v", err)
	}

	service := users.NewUserService(
		repository.NewUserRepository(gormDB),
		auth.NewPasswordHasher(cfg.Auth.BcryptCost),
		tokens,
		logr,
	)

	user, created, err := service.EnsureAdmin(ctx, users.SignupInput{Name: *name, Email: *email, Password: *password})
	if err != nil {
		log.Fatalf("create admin: %v", err)
	}
	if created {
		logr.Info("admin created", "id", user.ID, "email", user.Email)
		return
	}
	logr.Info("admin already exists", "id", user.ID, "email", user.Email)
}
