package balances

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/EmpoweredVote/Ledger-Backend/internal/logging"
	"github.com/EmpoweredVote/Ledger-Backend/internal/normalize"
	"github.com/EmpoweredVote/Ledger-Backend/internal/utils"
	"github.com/shopspring/decimal"
)

type Handler struct {
	Store    Store
	Spend    SpendSource
	Location *time.Location
}

var log = logging.For("balances")

func (h *Handler) now() time.Time {
	if h.Location == nil {
		return time.Now()
	}
	return time.Now().In(h.Location)
}

// periodFromQuery reads month/year, defaulting each to the current one.
func (h *Handler) periodFromQuery(r *http.Request) (Period, error) {
	p := PeriodOf(h.now())
	q := r.URL.Query()
	if v := q.Get("month"); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil {
			return p, fmt.Errorf("invalid month %q", v)
		}
		p.Month = m
	}
	if v := q.Get("year"); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil {
			return p, fmt.Errorf("invalid year %q", v)
		}
		p.Year = y
	}
	return p, p.Validate()
}

func userID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.WriteError(w, "Unauthorized: missing user ID in context", http.StatusUnauthorized)
	}
	return id, ok
}

func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	p, err := h.periodFromQuery(r)
	if err != nil {
		utils.WriteError(w, err.Error(), http.StatusBadRequest)
		return
	}

	b, err := h.Store.Get(r.Context(), uid, p)
	if errors.Is(err, ErrNotFound) {
		utils.WriteError(w, "No balance set for this month", http.StatusNotFound)
		return
	}
	if err != nil {
		log.WithError(err).Error("get balance")
		utils.WriteError(w, "Failed to fetch balance", http.StatusInternalServerError)
		return
	}
	utils.WriteJSON(w, http.StatusOK, b)
}

type putBalanceRequest struct {
	Month  int             `json:"month"`
	Year   int             `json:"year"`
	Amount decimal.Decimal `json:"amount"`
}

func (h *Handler) PutBalance(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	var req putBalanceRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteError(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	p := Period{Month: req.Month, Year: req.Year}
	if err := p.Validate(); err != nil {
		utils.WriteError(w, err.Error(), http.StatusBadRequest)
		return
	}

	b := MonthlyBalance{UserID: uid, Month: p.Month, Year: p.Year, Amount: req.Amount.Round(2)}
	if err := h.Store.Upsert(r.Context(), &b); err != nil {
		log.WithError(err).Error("upsert balance")
		utils.WriteError(w, "Failed to save balance", http.StatusInternalServerError)
		return
	}
	utils.WriteJSON(w, http.StatusOK, b)
}

func (h *Handler) DeleteBalance(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	p, err := h.periodFromQuery(r)
	if err != nil {
		utils.WriteError(w, err.Error(), http.StatusBadRequest)
		return
	}

	err = h.Store.Delete(r.Context(), uid, p)
	if errors.Is(err, ErrNotFound) {
		utils.WriteError(w, "No balance set for this month", http.StatusNotFound)
		return
	}
	if err != nil {
		log.WithError(err).Error("delete balance")
		utils.WriteError(w, "Failed to delete balance", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type remainingResponse struct {
	Month           int     `json:"month"`
	Year            int     `json:"year"`
	StartingBalance *string `json:"starting_balance"`
	TotalSpent      string  `json:"total_spent"`
	Remaining       string  `json:"remaining"`
}

// GetRemaining reports balance minus spend. The spend range defaults to the
// selected month but can be narrowed with start/end.
func (h *Handler) GetRemaining(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	p, err := h.periodFromQuery(r)
	if err != nil {
		utils.WriteError(w, err.Error(), http.StatusBadRequest)
		return
	}

	start := normalize.Date{Year: p.Year, Month: time.Month(p.Month + 1), Day: 1}
	end := normalize.DateOf(start.Time().AddDate(0, 1, -1))
	q := r.URL.Query()
	if v := q.Get("start"); v != "" {
		if start, err = normalize.ParseDate(v); err != nil {
			utils.WriteError(w, err.Error(), http.StatusBadRequest)
			return
		}
	}
	if v := q.Get("end"); v != "" {
		if end, err = normalize.ParseDate(v); err != nil {
			utils.WriteError(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	var balance *decimal.Decimal
	b, err := h.Store.Get(r.Context(), uid, p)
	switch {
	case err == nil:
		balance = &b.Amount
	case errors.Is(err, ErrNotFound):
	default:
		log.WithError(err).Error("remaining: balance")
		utils.WriteError(w, "Failed to fetch balance", http.StatusInternalServerError)
		return
	}

	spent, err := h.Spend.TotalSpent(r.Context(), uid, &start, &end)
	if err != nil {
		log.WithError(err).Error("remaining: spend")
		utils.WriteError(w, "Failed to fetch expenses", http.StatusInternalServerError)
		return
	}

	resp := remainingResponse{
		Month:      p.Month,
		Year:       p.Year,
		TotalSpent: normalize.FormatAmount(spent),
		Remaining:  normalize.FormatAmount(Remaining(balance, spent)),
	}
	if balance != nil {
		s := normalize.FormatAmount(*balance)
		resp.StartingBalance = &s
	}
	utils.WriteJSON(w, http.StatusOK, resp)
}
