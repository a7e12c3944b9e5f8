package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/otabek-dev/auth-otp-service/internal/config"
	"github.com/otabek-dev/auth-otp-service/internal/database"
	"github.com/otabek-dev/auth-otp-service/internal/handler"
	"github.com/otabek-dev/auth-otp-service/internal/mail"
	"github.com/otabek-dev/auth-otp-service/internal/middleware"
	"github.com/otabek-dev/auth-otp-service/internal/queue"
	"github.com/otabek-dev/auth-otp-service/internal/repository"
	"github.com/otabek-dev/auth-otp-service/internal/router"
	"github.com/otabek-dev/auth-otp-service/internal/service"
	"github.com/otabek-dev/auth-otp-service/internal/token"
)

func main() {
	_ = godotenv.Load() // .env is optional; real deployments set the environment directly
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := database.EnsureSchema(ctx, db); err != nil {
		cancel()
		log.Fatalf("database: %v", err)
	}
	cancel()

	store := repository.NewAccountRepo(db)
	issuer := token.NewIssuer(
		cfg.AccessSecret, cfg.RefreshSecret,
		time.Duration(cfg.AccessTTLMin)*time.Minute,
		time.Duration(cfg.RefreshTTLDays)*24*time.Hour,
	)

	// Pick the mail transport: SMTP when configured, otherwise log-only.
	var notifier mail.Notifier
	if cfg.SMTPHost != "" {
		notifier = &mail.SMTPNotifier{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUser,
			Password: cfg.SMTPPass,
			From:     cfg.SMTPFrom,
		}
	} else {
		log.Printf("mail: SMTP_HOST not set, codes will be logged instead of delivered")
		notifier = mail.LogNotifier{}
	}

	// Pick the dispatch path: through the broker with a consumer goroutine,
	// or straight to the notifier when running without RabbitMQ.
	var dispatcher service.MailDispatcher
	if cfg.MailAsync {
		dispatcher = queue.NewPublisher()
		go func() {
			if err := queue.StartOTPMailConsumer(notifier); err != nil {
				log.Printf("otp-mail-consumer stopped: %v", err)
			}
		}()
	} else {
		dispatcher = &mail.OTPDispatcher{Notifier: notifier}
	}

	svc := service.NewAuthService(store, dispatcher, issuer, service.Options{
		OTPLength:       cfg.OTPLength,
		OTPTTL:          cfg.OTPTTL,
		BcryptCost:      cfg.BcryptCost,
		RequireVerified: cfg.LoginRequireVerified,
	})

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable, rate limiting disabled")
	}
	limiter := middleware.NewRateLimiter(config.LoadRateLimitConfig(), rdb)

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(svc), cfg.AccessSecret, limiter)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
