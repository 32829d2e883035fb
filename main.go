package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/EmpoweredVote/Ledger-Backend/internal/assist"
	_ "github.com/EmpoweredVote/Ledger-Backend/internal/assist/openai"
	"github.com/EmpoweredVote/Ledger-Backend/internal/auth"
	"github.com/EmpoweredVote/Ledger-Backend/internal/balances"
	"github.com/EmpoweredVote/Ledger-Backend/internal/config"
	"github.com/EmpoweredVote/Ledger-Backend/internal/db"
	"github.com/EmpoweredVote/Ledger-Backend/internal/expenses"
	"github.com/EmpoweredVote/Ledger-Backend/internal/logging"
	"github.com/EmpoweredVote/Ledger-Backend/internal/middleware"
	"github.com/EmpoweredVote/Ledger-Backend/internal/statementimport"
	"github.com/EmpoweredVote/Ledger-Backend/internal/taxonomy"
	"github.com/EmpoweredVote/Ledger-Backend/internal/todos"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

func RootHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprintln(w, "Server is up!")
}

func main() {
	_ = godotenv.Load(".env.local")
	logging.Init()
	log := logging.For("main")

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("Invalid configuration")
	}
	if err := cfg.Validate(); err != nil {
		log.WithError(err).Fatal("Invalid configuration")
	}
	time.Local = cfg.Location
	decimal.MarshalJSONWithoutQuotes = true

	tax, err := taxonomy.Load(cfg.TaxonomyFile)
	if err != nil {
		log.WithError(err).Fatal("Failed to load taxonomy")
	}

	db.Connect()
	expenses.Init()
	balances.Init()
	statementimport.Init()
	todos.Init()

	verifier := auth.NewTokenVerifier(cfg.JWTSecret, cfg.JWTAudience)

	expenseStore := expenses.NewGormStore(db.DB)
	expenseHandler := &expenses.Handler{Store: expenseStore, Taxonomy: tax, Location: cfg.Location}

	assistHandler := &assist.Handler{
		Taxonomy:      tax,
		Tags:          assist.ExpenseTags{Store: expenseStore, Taxonomy: tax},
		RatePerMinute: cfg.AssistPerMin,
	}
	if p, err := assist.NewProvider(assist.LoadFromEnv()); err != nil {
		log.WithError(err).Warn("Capture routes disabled")
	} else {
		assistHandler.Provider = p
		log.WithField("provider", p.Name()).Info("Capture routes enabled")
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.RequestLogger(&chimw.DefaultLogFormatter{Logger: logging.Logger, NoColor: true}))
	r.Use(chimw.Recoverer)
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))
	r.Get("/", RootHandler)

	r.Mount("/expenses", expenses.SetupRoutes(expenseHandler, verifier))
	r.Mount("/subcategories", expenses.SetupSubcategoryRoutes(expenseHandler, verifier))
	r.Mount("/balances", balances.SetupRoutes(&balances.Handler{
		Store:    balances.GormStore{DB: db.DB},
		Spend:    expenseStore,
		Location: cfg.Location,
	}, verifier))
	r.Mount("/imports", statementimport.SetupRoutes(&statementimport.Handler{
		Committer:     statementimport.GormCommitter{DB: db.DB},
		Subcategories: expenseStore,
		Taxonomy:      tax,
	}, verifier))
	r.Mount("/todos", todos.SetupRoutes(&todos.Handler{
		Store:        todos.NewGormStore(db.DB),
		DefaultTasks: tax.DefaultTasks,
		Location:     cfg.Location,
	}, verifier))
	r.Mount("/api", assist.SetupRoutes(assistHandler, verifier))

	log.WithField("port", cfg.Port).Info("Server listening")
	if err := http.ListenAndServe("0.0.0.0:"+cfg.Port, r); err != nil {
		log.WithError(err).Fatal("Server stopped")
	}
}
