package expenses

import (
	"github.com/EmpoweredVote/Ledger-Backend/internal/db"
	"github.com/EmpoweredVote/Ledger-Backend/internal/logging"
)

func Init() {
	log := logging.For("expenses")

	if err := db.EnsureSchema(db.DB, db.Schema); err != nil {
		log.WithError(err).Fatal("Failed to ensure schema")
	}

	if err := db.DB.AutoMigrate(
		&Expense{},
		&Subcategory{},
	); err != nil {
		log.WithError(err).Fatal("Failed to auto-migrate expense tables")
	}

	// Subcategory names are unique per user and category, ignoring case
	if err := db.DB.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_subcategories_user_cat_name
		ON ledger.subcategories (user_id, category, lower(name));
	`).Error; err != nil {
		log.WithError(err).Fatal("Failed to create idx_subcategories_user_cat_name")
	}

	log.Info("Expenses module initialized")
}
