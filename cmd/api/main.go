package main

import (
	"context"
	"fmt"
	"log"

	"auth-api/core"
)

func main() {
	cfg := core.Load()
	ctx := context.Background()

	logger, logCloser, err := core.SetupLogging(cfg, "api.log")
	if err != nil {
		log.Fatalf("failed to setup logging: %v", err)
	}
	defer logCloser.Close()

	db, err := core.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	defer db.Close()

	if err := core.Migrate(ctx, db); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := core.NewRedisClient(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect redis: %v", err)
	}
	defer redisClient.Close()

	policy, err := core.LoadGuardPolicy(cfg.GuardPolicyPath)
	if err != nil {
		log.Fatalf("failed to load guard policy: %v", err)
	}

	userRepo := core.NewPgUserRepository(db)
	authService := core.NewAuthService(userRepo, core.NewBcryptHasher(), logger)
	issuer := core.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	cookies := core.NewCookieWriter(cfg, issuer.TTL())
	guard := core.NewGuard(redisClient, policy, logger)

	if err := core.BootstrapAdmin(ctx, authService, userRepo, cfg); err != nil {
		log.Fatalf("bootstrap admin failed: %v", err)
	}

	router := core.NewRouter(cfg, authService, issuer, cookies, guard, logger)

	addr := fmt.Sprintf(":%s", cfg.Port)
	logger.Info("starting api server", "addr", addr, "env", cfg.Env)
	if err := router.Run(addr); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
