package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/acentrik/hr-portal/config"
	"github.com/acentrik/hr-portal/controllers"
	"github.com/acentrik/hr-portal/database"
	"github.com/acentrik/hr-portal/repository"
	"github.com/acentrik/hr-portal/routes"
	"github.com/acentrik/hr-portal/services"
)

func main() {
	env, err := config.LoadEnv()
	if err != nil {
		log.Fatal("Error loading configuration:", err)
	}

	pgClient, err := database.NewPostgresClient(env.DBHost, env.DBUser, env.DBPassword, env.DBName, env.DBPort)
	if err != nil {
		log.Fatal("Error connecting to database:", err)
	}

	redisClient, err := database.GetRedisClient(env.RedisAddr, env.RedisPass, env.RedisDB)
	if err != nil {
		log.Fatal("Error connecting to redis:", err)
	}

	userRepo := repository.NewGormUserRepository(pgClient)
	tokenRepo := repository.NewGormResetTokenRepository(pgClient)
	letterRepo := repository.NewGormOfferLetterRepository(pgClient)
	sessionRepo := repository.NewGormSessionRepository(pgClient)

	validator := services.NewPasswordValidator()
	hasher := services.NewBcryptHasher()
	audit := services.NewAuditService()

	userService := services.NewUserService(userRepo, tokenRepo, letterRepo, validator, hasher, audit, services.UserServiceConfig{
		AdminUsername:     env.AdminUsername,
		AdminPassword:     env.AdminPassword,
		UserUsername:      env.UserUsername,
		UserPassword:      env.UserPassword,
		AdminAutoRecreate: env.AdminAutoRecreate,
		ResetTokenTTL:     env.ResetTokenTTL,
		PasswordMaxAge:    env.PasswordMaxAge,
	})

	mailer := services.NewEmailService(env.SMTPHost, env.SMTPPort, env.SMTPUser, env.SMTPPassword, env.SMTPFrom)
	generator := services.NewOfferPDFGenerator()
	letterService := services.NewOfferLetterService(letterRepo, userService, validator, generator, mailer, audit)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := userService.InitializeUsers(ctx); err != nil {
		log.Fatal("Error seeding accounts:", err)
	}

	go sweepExpiredTokens(ctx, userService, env.TokenSweepEvery)

	authController := controllers.NewAuthController(userService, sessionRepo, redisClient, env.SessionTTL)
	userController := controllers.NewUserController(userService, letterService, audit)
	resetController := controllers.NewPasswordResetController(userService)
	letterController := controllers.NewOfferLetterController(letterService, audit)

	r := gin.Default()
	routes.SetupRoutes(r, authController, userController, resetController, letterController)

	srv := &http.Server{
		Addr:    env.ListenAddr,
		Handler: r,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server:", err)
		}
	}()

	<-ctx.Done()

	// Drain in-flight requests before exiting.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown: %v", err)
	}
}

// sweepExpiredTokens periodically removes expired password reset tokens.
// Validation treats a swept token the same as an unknown one, so the sweep
// can run concurrently with reset requests.
func sweepExpiredTokens(ctx context.Context, users *services.UserService, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed, err := users.CleanupExpiredTokens(ctx); err != nil {
				log.Printf("token sweep failed: %v", err)
			} else if removed > 0 {
				log.Printf("token sweep removed %d expired tokens", removed)
			}
		}
	}
}
