package statementimport

import (
	"time"

	"github.com/lib/pq"
)

// ImportBatch is the audit row written with every committed import.
type ImportBatch struct {
	ID        string         `gorm:"primaryKey" json:"id"`
	UserID    string         `gorm:"not null;index" json:"user_id"`
	FileName  string         `json:"file_name"`
	Processed int            `json:"processed"`
	Skipped   int            `json:"skipped"`
	Inserted  int            `json:"inserted"`
	Notes     pq.StringArray `gorm:"type:text[]" json:"notes"`
	CreatedAt time.Time      `json:"created_at"`
}

func (ImportBatch) TableName() string { return "ledger.import_batches" }
