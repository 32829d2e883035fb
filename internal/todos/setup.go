package todos

import (
	"github.com/EmpoweredVote/Ledger-Backend/internal/db"
	"github.com/EmpoweredVote/Ledger-Backend/internal/logging"
)

func Init() {
	log := logging.For("todos")

	if err := db.EnsureSchema(db.DB, db.Schema); err != nil {
		log.WithError(err).Fatal("Failed to ensure schema")
	}

	if err := db.DB.AutoMigrate(&Todo{}); err != nil {
		log.WithError(err).Fatal("Failed to auto-migrate todos table")
	}

	log.Info("Todos module initialized")
}
