package main

import (
	"database/sql"
	"errors"
	"log"
	"os"

	"pawfectBack/internal/handlers"
	"pawfectBack/internal/repositories"
	"pawfectBack/internal/services"
)

type application struct {
	errorLog *log.Logger
	infoLog  *log.Logger
	db       *sql.DB

	jwtSecret string

	userRepo        *repositories.UserRepository
	ledgerRepo      *repositories.LedgerRepository
	userHandler     *handlers.UserHandler
	purchaseHandler *handlers.PurchaseHandler
}

func initializeApp(db *sql.DB, errorLog, infoLog *log.Logger) (*application, error) {
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	userRepo := repositories.NewUserRepository(db)
	ledgerRepo := repositories.NewLedgerRepository(db)

	userService, err := services.NewUserService(userRepo, jwtSecret)
	if err != nil {
		return nil, err
	}

	receipts := services.NewReceiptService(appleValidator(infoLog), googleValidator(infoLog))
	catalog := services.NewCatalogService()
	ledger := services.NewLedgerService(ledgerRepo)

	return &application{
		errorLog:        errorLog,
		infoLog:         infoLog,
		db:              db,
		jwtSecret:       jwtSecret,
		userRepo:        userRepo,
		ledgerRepo:      ledgerRepo,
		userHandler:     handlers.NewUserHandler(userService),
		purchaseHandler: handlers.NewPurchaseHandler(receipts, catalog, ledger, userRepo),
	}, nil
}

// appleValidator builds the Apple validator from env, or nil when the shared
// secret is absent: iOS purchases then fail closed with a configuration error.
func appleValidator(infoLog *log.Logger) services.AppleValidator {
	secret := os.Getenv("APPLE_SHARED_SECRET")
	if secret == "" {
		infoLog.Println("apple iap disabled: APPLE_SHARED_SECRET is not set")
		return nil
	}
	apple, err := services.NewAppleReceiptService(services.AppleReceiptConfig{
		SharedSecret: secret,
		BundleID:     os.Getenv("APPLE_BUNDLE_ID"),
	})
	if err != nil {
		infoLog.Printf("apple iap disabled: %v", err)
		return nil
	}
	return apple
}

// googleValidator wires the OAuth exchange and the Play validator from env.
// Missing service-account config disables the platform unless the
// development-only bypass flag is set; the bypass itself is refused in
// production by the service constructor.
func googleValidator(infoLog *log.Logger) services.GoogleValidator {
	allowUnverified := os.Getenv("IAP_ALLOW_UNVERIFIED") == "true"
	environment := os.Getenv("APP_ENV")

	var tokens services.AccessTokenSource
	if saJSON := os.Getenv("GOOGLE_PLAY_SERVICE_ACCOUNT_JSON"); saJSON != "" {
		oauth, err := services.NewGoogleOAuthService(saJSON, nil)
		if err != nil {
			infoLog.Printf("google iap disabled: %v", err)
			return nil
		}
		tokens = oauth
	} else if !allowUnverified {
		infoLog.Println("google iap disabled: GOOGLE_PLAY_SERVICE_ACCOUNT_JSON is not set")
		return nil
	}

	play, err := services.NewGooglePlayService(services.GooglePlayConfig{
		PackageName:     os.Getenv("GOOGLE_PLAY_PACKAGE_NAME"),
		AllowUnverified: allowUnverified && tokens == nil,
		Environment:     environment,
	}, tokens)
	if err != nil {
		infoLog.Printf("google iap disabled: %v", err)
		return nil
	}
	return play
}
