package main

import (
	"context"
	"flag"
	"os"

	"github.com/EmpoweredVote/Ledger-Backend/internal/logging"
	"github.com/EmpoweredVote/Ledger-Backend/internal/statementimport"
	"github.com/EmpoweredVote/Ledger-Backend/internal/taxonomy"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load(".env.local")
	logging.Init()

	var (
		csvPath = flag.String("csv", "", "path to the bank statement export")
		userID  = flag.String("user", "", "owner of the imported expenses")
		dbURL   = flag.String("db", os.Getenv("DATABASE_URL"), "DATABASE_URL")
		dryRun  = flag.Bool("dry-run", false, "parse and print without writing")
	)
	flag.Parse()

	if *csvPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	tax, err := taxonomy.Load(os.Getenv("TAXONOMY_FILE"))
	if err != nil {
		logging.Logger.WithError(err).Fatal("load taxonomy")
	}

	cfg := statementimport.Config{
		CSVPath:     *csvPath,
		DatabaseURL: *dbURL,
		UserID:      *userID,
		DryRun:      *dryRun,
	}
	if _, err := statementimport.Run(context.Background(), cfg, tax, os.Stdout); err != nil {
		logging.Logger.WithError(err).Fatal("statement import failed")
	}
}
