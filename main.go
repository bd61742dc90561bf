package main

import (
	"net/http"
	"os"
	"strings"

	"github.com/glebarez/sqlite"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
	"golang.org/x/time/rate"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"predex/engine"
	adminhandlers "predex/handlers/admin"
	"predex/handlers/httperr"
	"predex/handlers/markets"
	"predex/handlers/resolution"
	"predex/handlers/trades"
	"predex/ledger"
	"predex/logging"
	"predex/middleware"
	"predex/migration"
	"predex/security"
	"predex/setup"
)

func openDB() (*gorm.DB, error) {
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		return gorm.Open(postgres.Open(dsn), &gorm.Config{})
	}
	path := os.Getenv("DB_PATH")
	if path == "" {
		path = "predex.db"
	}
	return gorm.Open(sqlite.Open(path), &gorm.Config{})
}

func main() {
	// Optional .env for local development.
	godotenv.Load()

	cfg, err := setup.LoadConfig()
	if err != nil {
		logging.Fatal("config: %v", err)
	}
	defaultB, err := cfg.Economics.DefaultLiquidityWad()
	if err != nil {
		logging.Fatal("config: %v", err)
	}

	jwtSecret := []byte(os.Getenv("JWT_SECRET"))
	if len(jwtSecret) == 0 {
		logging.Fatal("JWT_SECRET is required")
	}
	adminKeyHash := []byte(os.Getenv("ADMIN_KEY_HASH"))
	if len(adminKeyHash) == 0 {
		logging.Fatal("ADMIN_KEY_HASH is required")
	}

	db, err := openDB()
	if err != nil {
		logging.Fatal("database: %v", err)
	}
	if err := migration.MigrateDB(db); err != nil {
		logging.Fatal("migration: %v", err)
	}

	marketLedger := ledger.New(db)
	collateral := ledger.NewGormCollateral(cfg.Tokens.Decimals)
	shares := ledger.NewGormShares()
	eng, err := engine.New(marketLedger, collateral, shares, engine.Config{
		FeeBps:       cfg.Economics.FeeBps,
		FeeRecipient: cfg.Economics.FeeRecipient,
	})
	if err != nil {
		logging.Fatal("engine: %v", err)
	}

	sec := security.NewService()

	router := mux.NewRouter()
	router.HandleFunc("/v0/health", func(w http.ResponseWriter, r *http.Request) {
		httperr.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	router.HandleFunc("/v0/markets", markets.CreateHandler(eng, sec, jwtSecret, defaultB)).Methods(http.MethodPost)
	router.HandleFunc("/v0/markets/{id}", markets.StatusHandler(eng)).Methods(http.MethodGet)
	router.HandleFunc("/v0/markets/{id}/metadata", markets.MetadataHandler(eng)).Methods(http.MethodGet)
	router.HandleFunc("/v0/markets/{id}/price", markets.PriceHandler(eng)).Methods(http.MethodGet)
	router.HandleFunc("/v0/markets/{id}/events", markets.EventsHandler(eng)).Methods(http.MethodGet)

	router.HandleFunc("/v0/markets/{id}/quote/buy", trades.QuoteBuyHandler(eng)).Methods(http.MethodPost)
	router.HandleFunc("/v0/markets/{id}/quote/sell", trades.QuoteSellHandler(eng)).Methods(http.MethodPost)
	router.HandleFunc("/v0/markets/{id}/buy", trades.BuyHandler(eng, jwtSecret)).Methods(http.MethodPost)
	router.HandleFunc("/v0/markets/{id}/sell", trades.SellHandler(eng, jwtSecret)).Methods(http.MethodPost)
	router.HandleFunc("/v0/markets/{id}/buy-budget", trades.BuyBudgetHandler(eng, jwtSecret)).Methods(http.MethodPost)

	router.HandleFunc("/v0/markets/{id}/resolve", resolution.ResolveHandler(eng, jwtSecret)).Methods(http.MethodPost)
	router.HandleFunc("/v0/markets/{id}/redeem", resolution.RedeemHandler(eng, jwtSecret)).Methods(http.MethodPost)

	router.HandleFunc("/v0/admin/pause", adminhandlers.PauseHandler(eng, adminKeyHash)).Methods(http.MethodPost)
	router.HandleFunc("/v0/admin/resume", adminhandlers.ResumeHandler(eng, adminKeyHash)).Methods(http.MethodPost)

	handler := middleware.RateLimit(rate.Limit(50), 100)(router)
	allowedOrigins := []string{"*"}
	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		allowedOrigins = strings.Split(origins, ",")
	}
	handler = cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Authorization", "Content-Type", "X-Admin-Key"},
	}).Handler(handler)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	logging.Info("predex listening on :%s", port)
	if err := http.ListenAndServe(":"+port, handler); err != nil {
		logging.Fatal("server: %v", err)
	}
}
