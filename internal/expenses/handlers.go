package expenses

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/EmpoweredVote/Ledger-Backend/internal/logging"
	"github.com/EmpoweredVote/Ledger-Backend/internal/normalize"
	"github.com/EmpoweredVote/Ledger-Backend/internal/taxonomy"
	"github.com/EmpoweredVote/Ledger-Backend/internal/utils"
	"github.com/go-chi/chi/v5"
)

// AllCategories in a category filter means no filter.
const AllCategories = "All"

type Handler struct {
	Store    Store
	Taxonomy taxonomy.Config
	Location *time.Location
}

var log = logging.For("expenses")

func userID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.WriteError(w, "Unauthorized: missing user ID in context", http.StatusUnauthorized)
	}
	return id, ok
}

func parseOptionalDate(s string) (*normalize.Date, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	d, err := normalize.ParseDate(s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func parseFilter(r *http.Request) (Filter, error) {
	q := r.URL.Query()
	f := Filter{
		Category:    strings.TrimSpace(q.Get("category")),
		Subcategory: strings.TrimSpace(q.Get("subcategory")),
	}
	if f.Category == AllCategories {
		f.Category = ""
	}
	if f.Category == "" {
		f.Subcategory = ""
	}

	var err error
	if f.Start, err = parseOptionalDate(q.Get("start")); err != nil {
		return f, err
	}
	if f.End, err = parseOptionalDate(q.Get("end")); err != nil {
		return f, err
	}
	return f, nil
}

func (h *Handler) ListExpenses(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	f, err := parseFilter(r)
	if err != nil {
		utils.WriteError(w, err.Error(), http.StatusBadRequest)
		return
	}

	rows, err := h.Store.List(r.Context(), uid, f)
	if err != nil {
		log.WithError(err).Error("list expenses")
		utils.WriteError(w, "Failed to fetch expenses", http.StatusInternalServerError)
		return
	}
	if rows == nil {
		rows = []Expense{}
	}
	utils.WriteJSON(w, http.StatusOK, rows)
}

func (h *Handler) GetExpense(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	e, err := h.Store.Get(r.Context(), uid, chi.URLParam(r, "id"))
	if errors.Is(err, ErrNotFound) {
		utils.WriteError(w, "Expense not found", http.StatusNotFound)
		return
	}
	if err != nil {
		log.WithError(err).Error("get expense")
		utils.WriteError(w, "Failed to fetch expense", http.StatusInternalServerError)
		return
	}
	utils.WriteJSON(w, http.StatusOK, e)
}

func (h *Handler) decodeInput(w http.ResponseWriter, r *http.Request) (Input, bool) {
	var in Input
	if err := utils.DecodeJSON(r, &in); err != nil {
		utils.WriteError(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return in, false
	}
	in, err := in.Normalize(h.Taxonomy)
	if err != nil {
		utils.WriteError(w, err.Error(), http.StatusBadRequest)
		return in, false
	}
	return in, true
}

func (h *Handler) CreateExpense(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	in, ok := h.decodeInput(w, r)
	if !ok {
		return
	}

	e := Expense{UserID: uid}
	in.apply(&e)
	if err := h.Store.Create(r.Context(), &e); err != nil {
		log.WithError(err).Error("create expense")
		utils.WriteError(w, "Failed to save expense", http.StatusInternalServerError)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, e)
}

func (h *Handler) UpdateExpense(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	in, ok := h.decodeInput(w, r)
	if !ok {
		return
	}

	e := Expense{ID: chi.URLParam(r, "id"), UserID: uid}
	in.apply(&e)
	err := h.Store.Update(r.Context(), &e)
	if errors.Is(err, ErrNotFound) {
		utils.WriteError(w, "Expense not found", http.StatusNotFound)
		return
	}
	if err != nil {
		log.WithError(err).Error("update expense")
		utils.WriteError(w, "Failed to update expense", http.StatusInternalServerError)
		return
	}
	utils.WriteJSON(w, http.StatusOK, e)
}

func (h *Handler) DeleteExpense(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	err := h.Store.Delete(r.Context(), uid, chi.URLParam(r, "id"))
	if errors.Is(err, ErrNotFound) {
		utils.WriteError(w, "Expense not found", http.StatusNotFound)
		return
	}
	if err != nil {
		log.WithError(err).Error("delete expense")
		utils.WriteError(w, "Failed to delete expense", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) merged(r *http.Request, uid string) (map[string][]string, error) {
	stored, err := h.Store.ListSubcategories(r.Context(), uid, "")
	if err != nil {
		return nil, err
	}
	used, err := h.Store.UsedSubcategories(r.Context(), uid)
	if err != nil {
		return nil, err
	}
	return MergedSubcategories(h.Taxonomy, stored, used), nil
}

// monthRange is the first and last day of the month containing d.
func monthRange(d normalize.Date) (normalize.Date, normalize.Date) {
	first := normalize.Date{Year: d.Year, Month: d.Month, Day: 1}
	last := normalize.DateOf(first.Time().AddDate(0, 1, -1))
	return first, last
}

// GetSummary aggregates the range given by start/end, defaulting to the
// current month.
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	f, err := parseFilter(r)
	if err != nil {
		utils.WriteError(w, err.Error(), http.StatusBadRequest)
		return
	}
	first, last := monthRange(normalize.Today(h.Location))
	if f.Start == nil {
		f.Start = &first
	}
	if f.End == nil {
		f.End = &last
	}

	rows, err := h.Store.List(r.Context(), uid, Filter{Start: f.Start, End: f.End})
	if err != nil {
		log.WithError(err).Error("summary rows")
		utils.WriteError(w, "Failed to fetch expenses", http.StatusInternalServerError)
		return
	}
	merged, err := h.merged(r, uid)
	if err != nil {
		log.WithError(err).Error("summary subcategories")
		utils.WriteError(w, "Failed to fetch subcategories", http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, http.StatusOK, BuildSummary(h.Taxonomy, merged, rows, *f.Start, *f.End))
}

func (h *Handler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	rows, err := h.Store.List(r.Context(), uid, Filter{})
	if err != nil {
		log.WithError(err).Error("export rows")
		utils.WriteError(w, "Failed to fetch expenses", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="expenses.csv"`)
	if err := WriteCSV(w, rows); err != nil {
		log.WithError(err).Error("write export")
	}
}

func (h *Handler) ListSubcategories(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	merged, err := h.merged(r, uid)
	if err != nil {
		log.WithError(err).Error("list subcategories")
		utils.WriteError(w, "Failed to fetch subcategories", http.StatusInternalServerError)
		return
	}

	if category := r.URL.Query().Get("category"); category != "" && category != AllCategories {
		if !h.Taxonomy.HasCategory(category) {
			utils.WriteError(w, ErrInvalidCategory.Error(), http.StatusBadRequest)
			return
		}
		utils.WriteJSON(w, http.StatusOK, map[string][]string{category: merged[category]})
		return
	}
	utils.WriteJSON(w, http.StatusOK, merged)
}

type createSubcategoryRequest struct {
	Category string `json:"category"`
	Name     string `json:"name"`
}

// CreateSubcategory adds a tag unless the merged list already has it in
// any casing.
func (h *Handler) CreateSubcategory(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	var req createSubcategoryRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteError(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if !h.Taxonomy.HasCategory(req.Category) {
		utils.WriteError(w, ErrInvalidCategory.Error(), http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		utils.WriteError(w, "name is required", http.StatusBadRequest)
		return
	}

	merged, err := h.merged(r, uid)
	if err != nil {
		log.WithError(err).Error("create subcategory")
		utils.WriteError(w, "Failed to fetch subcategories", http.StatusInternalServerError)
		return
	}
	if existing, found := taxonomy.Match(merged[req.Category], req.Name); found {
		utils.WriteError(w, "Subcategory already exists: "+existing, http.StatusConflict)
		return
	}

	sub := Subcategory{UserID: uid, Category: req.Category, Name: req.Name}
	err = h.Store.CreateSubcategory(r.Context(), &sub)
	if errors.Is(err, ErrDuplicate) {
		utils.WriteError(w, "Subcategory already exists: "+req.Name, http.StatusConflict)
		return
	}
	if err != nil {
		log.WithError(err).Error("create subcategory")
		utils.WriteError(w, "Failed to save subcategory", http.StatusInternalServerError)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, sub)
}
