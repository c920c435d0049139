package main // Entry point package

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/Vasyl-Hlushchenko/contacts-api/internal/auth"
	"github.com/Vasyl-Hlushchenko/contacts-api/internal/config"
	"github.com/Vasyl-Hlushchenko/contacts-api/internal/database"
	"github.com/Vasyl-Hlushchenko/contacts-api/internal/handler"
	"github.com/Vasyl-Hlushchenko/contacts-api/internal/queue"
	"github.com/Vasyl-Hlushchenko/contacts-api/internal/repository"
	"github.com/Vasyl-Hlushchenko/contacts-api/internal/router"
	"github.com/Vasyl-Hlushchenko/contacts-api/internal/service"
	"github.com/Vasyl-Hlushchenko/contacts-api/internal/storage"
	"github.com/Vasyl-Hlushchenko/contacts-api/internal/utils"
)

func main() {
	// .env is optional; real deployments set variables directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	// Redis backs rate limiting and the response cache.  A nil client
	// disables both rather than blocking startup.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; rate limiting and caching disabled")
	}

	accounts := repository.NewAccountRepo(db)
	contacts := repository.NewContactRepo(db)

	tokens := auth.NewTokenService(cfg.JWTSecret)
	gate := auth.NewGate(tokens, accounts)
	hasher := &auth.BcryptHasher{Cost: cfg.BcryptCost}

	var avatars *storage.AvatarStorage
	if cfg.S3Bucket != "" {
		avatars = storage.NewAvatarStorage(cfg.S3Region, cfg.S3Endpoint, cfg.S3Bucket, cfg.S3AccessKey, cfg.S3SecretKey)
	}

	accountSvc := service.NewAccountService(
		accounts, tokens, hasher,
		&queue.Publisher{}, utils.NewGravatar(),
		time.Duration(cfg.AccessTTLMin)*time.Minute,
	)
	contactSvc := service.NewContactService(contacts)

	// Consumer turns queued confirmation events into actual emails.  It
	// reconnects on its own, so a broker outage only delays delivery.
	go func() {
		smtp := queue.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUser,
			Password: cfg.SMTPPass,
			From:     cfg.SMTPFrom,
			BaseURL:  cfg.BaseURL,
		}
		if err := queue.StartEmailConsumer(smtp); err != nil {
			log.Printf("email consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	e.Validator = handler.NewRequestValidator()

	router.RegisterRoutes(e, handler.Health(db))
	router.RegisterAuth(e, handler.NewAuthHandler(accountSvc))
	router.RegisterProtected(e, gate,
		handler.NewProfileHandler(accountSvc, avatars),
		handler.NewContactHandler(contactSvc),
		rdb,
	)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
