package balances

import (
	"github.com/EmpoweredVote/Ledger-Backend/internal/db"
	"github.com/EmpoweredVote/Ledger-Backend/internal/logging"
)

func Init() {
	log := logging.For("balances")

	if err := db.EnsureSchema(db.DB, db.Schema); err != nil {
		log.WithError(err).Fatal("Failed to ensure schema")
	}

	if err := db.DB.AutoMigrate(&MonthlyBalance{}); err != nil {
		log.WithError(err).Fatal("Failed to auto-migrate monthly_balances")
	}

	log.Info("Balances module initialized")
}
