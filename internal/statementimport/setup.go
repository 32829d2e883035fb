package statementimport

import (
	"github.com/EmpoweredVote/Ledger-Backend/internal/db"
	"github.com/EmpoweredVote/Ledger-Backend/internal/logging"
)

// Init must run after expenses.Init, which owns the expenses table.
func Init() {
	log := logging.For("statementimport")

	if err := db.EnsureSchema(db.DB, db.Schema); err != nil {
		log.WithError(err).Fatal("Failed to ensure schema")
	}

	if err := db.DB.AutoMigrate(&ImportBatch{}); err != nil {
		log.WithError(err).Fatal("Failed to auto-migrate import_batches")
	}

	log.Info("Statement import module initialized")
}
