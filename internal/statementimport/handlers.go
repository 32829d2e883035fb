package statementimport

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/EmpoweredVote/Ledger-Backend/internal/expenses"
	"github.com/EmpoweredVote/Ledger-Backend/internal/logging"
	"github.com/EmpoweredVote/Ledger-Backend/internal/taxonomy"
	"github.com/EmpoweredVote/Ledger-Backend/internal/utils"
	"github.com/sirupsen/logrus"
)

// MaxUploadBytes caps statement uploads.
const MaxUploadBytes = 5 << 20

// SubcategorySource lists the user's saved subcategory tags.
type SubcategorySource interface {
	ListSubcategories(ctx context.Context, userID, category string) ([]expenses.Subcategory, error)
}

type Handler struct {
	Committer     Committer
	Subcategories SubcategorySource
	Taxonomy      taxonomy.Config
}

var log = logging.For("statementimport")

func userID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.WriteError(w, "Unauthorized: missing user ID in context", http.StatusUnauthorized)
	}
	return id, ok
}

// Preview parses an uploaded statement and returns drafts for review.
// Nothing is stored.
func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			utils.WriteError(w, "File too large", http.StatusRequestEntityTooLarge)
			return
		}
		utils.WriteError(w, "No file provided", http.StatusBadRequest)
		return
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		utils.WriteError(w, "Failed to read file", http.StatusBadRequest)
		return
	}

	opts := DefaultOptions(h.Taxonomy, nil)
	if h.Subcategories != nil {
		stored, err := h.Subcategories.ListSubcategories(r.Context(), uid, opts.Category)
		if err != nil {
			log.WithError(err).Warn("preview: saved subcategories unavailable")
		} else {
			names := make([]string, len(stored))
			for i, s := range stored {
				names[i] = s.Name
			}
			opts = DefaultOptions(h.Taxonomy, names)
		}
	}

	res, err := Parse(string(raw), opts)
	if err != nil {
		utils.WriteError(w, err.Error(), http.StatusBadRequest)
		return
	}

	entry := log.WithFields(logrus.Fields{"user_id": uid, "file": header.Filename})
	for _, s := range res.Skips {
		entry.Debugf("skipped line %d: %s", s.Line, s.Reason)
	}
	entry.Infof("parsed %d expenses, %d rows skipped", res.Processed, res.Skipped)

	utils.WriteJSON(w, http.StatusOK, res)
}

type CommitRequest struct {
	FileName  string  `json:"file_name"`
	Processed int     `json:"processed"`
	Skipped   int     `json:"skipped"`
	Skips     []Skip  `json:"skips"`
	Drafts    []Draft `json:"drafts"`
}

type commitResponse struct {
	BatchID  string `json:"batch_id"`
	Inserted int    `json:"inserted"`
}

// Commit stores the reviewed drafts as one batch.
func (h *Handler) Commit(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	var req CommitRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteError(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if len(req.Drafts) == 0 {
		utils.WriteError(w, "No expenses to import", http.StatusBadRequest)
		return
	}

	rows, err := BuildExpenses(h.Taxonomy, uid, req.Drafts)
	if err != nil {
		utils.WriteError(w, err.Error(), http.StatusBadRequest)
		return
	}

	batch := ImportBatch{
		UserID:    uid,
		FileName:  strings.TrimSpace(req.FileName),
		Processed: req.Processed,
		Skipped:   req.Skipped,
		Notes:     Notes(req.Skips),
	}
	if err := h.Committer.Commit(r.Context(), &batch, rows); err != nil {
		log.WithError(err).Error("commit import")
		utils.WriteError(w, "Failed to save expenses", http.StatusInternalServerError)
		return
	}

	log.WithField("user_id", uid).Infof("imported %d expenses in batch %s", batch.Inserted, batch.ID)
	utils.WriteJSON(w, http.StatusCreated, commitResponse{BatchID: batch.ID, Inserted: batch.Inserted})
}

func (h *Handler) ListBatches(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	batches, err := h.Committer.ListBatches(r.Context(), uid)
	if err != nil {
		log.WithError(err).Error("list import batches")
		utils.WriteError(w, "Failed to fetch imports", http.StatusInternalServerError)
		return
	}
	if batches == nil {
		batches = []ImportBatch{}
	}
	utils.WriteJSON(w, http.StatusOK, batches)
}
