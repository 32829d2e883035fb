package main

import (
	"context"
	"flag"
	"os"

	"github.com/EmpoweredVote/Ledger-Backend/internal/balances"
	"github.com/EmpoweredVote/Ledger-Backend/internal/config"
	"github.com/EmpoweredVote/Ledger-Backend/internal/db"
	"github.com/EmpoweredVote/Ledger-Backend/internal/expenses"
	"github.com/EmpoweredVote/Ledger-Backend/internal/logging"
	"github.com/EmpoweredVote/Ledger-Backend/internal/normalize"
	"github.com/EmpoweredVote/Ledger-Backend/internal/seeds"
	"github.com/EmpoweredVote/Ledger-Backend/internal/taxonomy"
	"github.com/EmpoweredVote/Ledger-Backend/internal/todos"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load(".env.local")
	logging.Init()
	log := logging.For("seed")

	userID := flag.String("user", "", "account to fill with sample data")
	random := flag.Int("random", 0, "extra generated expenses this month")
	seed := flag.Int64("seed", 1, "generator seed for -random")
	flag.Parse()
	if *userID == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("Invalid configuration")
	}
	tax, err := taxonomy.Load(cfg.TaxonomyFile)
	if err != nil {
		log.WithError(err).Fatal("Failed to load taxonomy")
	}

	db.Connect()
	expenses.Init()
	balances.Init()
	todos.Init()

	stores := seeds.Stores{
		Expenses: expenses.NewGormStore(db.DB),
		Balances: balances.GormStore{DB: db.DB},
		Todos:    todos.NewGormStore(db.DB),
	}
	ctx := context.Background()
	today := normalize.Today(cfg.Location)
	if _, err := seeds.Demo(ctx, stores, tax, *userID, today); err != nil {
		log.WithError(err).Fatal("Seeding failed")
	}
	if *random > 0 {
		n, err := seeds.Random(ctx, stores.Expenses, tax, *userID, today, *random, *seed)
		if err != nil {
			log.WithError(err).Fatal("Seeding failed")
		}
		log.Infof("added %d generated expenses", n)
	}
}
