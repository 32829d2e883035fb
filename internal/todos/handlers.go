package todos

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/EmpoweredVote/Ledger-Backend/internal/logging"
	"github.com/EmpoweredVote/Ledger-Backend/internal/normalize"
	"github.com/EmpoweredVote/Ledger-Backend/internal/utils"
	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

type Handler struct {
	Store Store
	// DefaultTasks are ensured on today's list whenever the list is read.
	DefaultTasks []string
	Location     *time.Location
}

var log = logging.For("todos")

func userID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.WriteError(w, "Unauthorized: missing user ID in context", http.StatusUnauthorized)
	}
	return id, ok
}

// today resolves the client's date: an explicit value wins over the
// server's zone so a client past midnight sees its own day.
func (h *Handler) today(explicit string) (normalize.Date, error) {
	if s := strings.TrimSpace(explicit); s != "" {
		return normalize.ParseDate(s)
	}
	return normalize.Today(h.Location), nil
}

func nonNil(list []Todo) []Todo {
	if list == nil {
		return []Todo{}
	}
	return list
}

func (h *Handler) ensureDefaults(r *http.Request, uid string, today normalize.Date) error {
	if len(h.DefaultTasks) == 0 {
		return nil
	}
	current, err := h.Store.InBucket(r.Context(), uid, datePtr(today))
	if err != nil {
		return err
	}
	missing := MissingDefaults(current, uid, today, h.DefaultTasks)
	if len(missing) == 0 {
		return nil
	}
	if _, err := h.Store.Create(r.Context(), missing); err != nil {
		return err
	}
	log.WithField("user_id", uid).Debugf("inserted %d default tasks", len(missing))
	return nil
}

func (h *Handler) ListTodos(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	today, err := h.today(q.Get("today"))
	if err != nil {
		utils.WriteError(w, "Invalid today date", http.StatusBadRequest)
		return
	}

	f := Filter{Tag: strings.TrimSpace(q.Get("tag"))}
	if f.Tag == "All" {
		f.Tag = ""
	}
	if m := strings.TrimSpace(q.Get("month")); m != "" {
		first, err := normalize.ParseDate(m + "-01")
		if err != nil {
			utils.WriteError(w, "Invalid month, expected YYYY-MM", http.StatusBadRequest)
			return
		}
		f.Month = &first
	}

	if err := h.ensureDefaults(r, uid, today); err != nil {
		log.WithError(err).Warn("insert default tasks")
	}

	list, err := h.Store.List(r.Context(), uid, f)
	if err != nil {
		log.WithError(err).Error("list todos")
		utils.WriteError(w, "Failed to fetch todos", http.StatusInternalServerError)
		return
	}
	utils.WriteJSON(w, http.StatusOK, nonNil(list))
}

func (h *Handler) GetBoard(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	today, err := h.today(r.URL.Query().Get("today"))
	if err != nil {
		utils.WriteError(w, "Invalid today date", http.StatusBadRequest)
		return
	}

	if err := h.ensureDefaults(r, uid, today); err != nil {
		log.WithError(err).Warn("insert default tasks")
	}

	list, err := h.Store.List(r.Context(), uid, Filter{})
	if err != nil {
		log.WithError(err).Error("list todos for board")
		utils.WriteError(w, "Failed to fetch todos", http.StatusInternalServerError)
		return
	}
	utils.WriteJSON(w, http.StatusOK, SplitBoard(list, today))
}

type createRequest struct {
	Task       string          `json:"task"`
	DueDate    *normalize.Date `json:"due_date"`
	ProjectTag string          `json:"project_tag"`
}

type batchRequest struct {
	Tasks      []string        `json:"tasks"`
	DueDate    *normalize.Date `json:"due_date"`
	ProjectTag string          `json:"project_tag"`
}

// insert appends tasks to the end of their bucket.
func (h *Handler) insert(r *http.Request, uid string, tasks []string, due *normalize.Date, tag string) ([]Todo, error) {
	bucket, err := h.Store.InBucket(r.Context(), uid, due)
	if err != nil {
		return nil, err
	}
	next := NextSortOrder(bucket, due)

	rows := make([]Todo, 0, len(tasks))
	for _, task := range tasks {
		rows = append(rows, Todo{
			UserID:     uid,
			Task:       task,
			DueDate:    due,
			SortOrder:  next,
			ProjectTag: tagPtr(tag),
		})
		next++
	}
	return h.Store.Create(r.Context(), rows)
}

func (h *Handler) CreateTodo(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	var req createRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteError(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	task := strings.TrimSpace(req.Task)
	if task == "" {
		utils.WriteError(w, ErrEmptyTask.Error(), http.StatusBadRequest)
		return
	}

	created, err := h.insert(r, uid, []string{task}, req.DueDate, req.ProjectTag)
	if err != nil {
		log.WithError(err).Error("create todo")
		utils.WriteError(w, "Failed to save todo", http.StatusInternalServerError)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, created[0])
}

// CreateBatch adds several tasks at once, as captured from a photo.
func (h *Handler) CreateBatch(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	var req batchRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteError(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	var tasks []string
	for _, t := range req.Tasks {
		if t = strings.TrimSpace(t); t != "" {
			tasks = append(tasks, t)
		}
	}
	if len(tasks) == 0 {
		utils.WriteError(w, "No tasks provided", http.StatusBadRequest)
		return
	}

	created, err := h.insert(r, uid, tasks, req.DueDate, req.ProjectTag)
	if err != nil {
		log.WithError(err).Error("create todo batch")
		utils.WriteError(w, "Failed to save todos", http.StatusInternalServerError)
		return
	}
	log.WithField("user_id", uid).Infof("added %d tasks", len(created))
	utils.WriteJSON(w, http.StatusCreated, created)
}

// load fetches the todo named in the URL, writing 404/500 on failure.
func (h *Handler) load(w http.ResponseWriter, r *http.Request, uid string) (Todo, bool) {
	t, err := h.Store.Get(r.Context(), uid, chi.URLParam(r, "id"))
	if errors.Is(err, ErrNotFound) {
		utils.WriteError(w, "Todo not found", http.StatusNotFound)
		return t, false
	}
	if err != nil {
		log.WithError(err).Error("get todo")
		utils.WriteError(w, "Failed to fetch todo", http.StatusInternalServerError)
		return t, false
	}
	return t, true
}

func (h *Handler) save(w http.ResponseWriter, r *http.Request, t *Todo) {
	err := h.Store.Update(r.Context(), t)
	if errors.Is(err, ErrNotFound) {
		utils.WriteError(w, "Todo not found", http.StatusNotFound)
		return
	}
	if err != nil {
		log.WithError(err).Error("update todo")
		utils.WriteError(w, "Failed to update todo", http.StatusInternalServerError)
		return
	}
	utils.WriteJSON(w, http.StatusOK, t)
}

type updateRequest struct {
	Task       *string `json:"task"`
	Status     *bool   `json:"status"`
	ProjectTag *string `json:"project_tag"`
}

// UpdateTodo edits text, completion or tag. Absent fields are unchanged and
// an empty tag clears it.
func (h *Handler) UpdateTodo(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	var req updateRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteError(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	t, ok := h.load(w, r, uid)
	if !ok {
		return
	}
	if req.Task != nil {
		task := strings.TrimSpace(*req.Task)
		if task == "" {
			utils.WriteError(w, ErrEmptyTask.Error(), http.StatusBadRequest)
			return
		}
		t.Task = task
	}
	if req.Status != nil {
		t.Status = *req.Status
	}
	if req.ProjectTag != nil {
		t.ProjectTag = tagPtr(*req.ProjectTag)
	}
	h.save(w, r, &t)
}

type moveRequest struct {
	DueDate *normalize.Date `json:"due_date"`
}

// MoveDate changes a todo's due date (null sends it to the backlog) and
// puts it last in the target bucket.
func (h *Handler) MoveDate(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	var req moveRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteError(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	t, ok := h.load(w, r, uid)
	if !ok {
		return
	}
	if SameDay(t.DueDate, req.DueDate) {
		utils.WriteJSON(w, http.StatusOK, t)
		return
	}

	target, err := h.Store.InBucket(r.Context(), uid, req.DueDate)
	if err != nil {
		log.WithError(err).Error("read target bucket")
		utils.WriteError(w, "Failed to move todo", http.StatusInternalServerError)
		return
	}
	t.DueDate = req.DueDate
	t.SortOrder = NextSortOrder(target, req.DueDate)
	h.save(w, r, &t)
}

type reorderRequest struct {
	DueDate *normalize.Date `json:"due_date"`
	IDs     []string        `json:"ids"`
}

// Reorder writes sort_order = position for a bucket. No version check is
// made; concurrent reorders resolve to whichever lands last.
func (h *Handler) Reorder(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	var req reorderRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteError(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if len(req.IDs) == 0 {
		utils.WriteError(w, "ids are required", http.StatusBadRequest)
		return
	}

	bucket, err := h.Store.InBucket(r.Context(), uid, req.DueDate)
	if err != nil {
		log.WithError(err).Error("read bucket for reorder")
		utils.WriteError(w, "Failed to reorder todos", http.StatusInternalServerError)
		return
	}
	ordered, err := ApplyOrder(bucket, req.IDs)
	if err != nil {
		utils.WriteError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.Store.SaveColumns(r.Context(), ordered, "sort_order"); err != nil {
		log.WithError(err).Error("save order")
		utils.WriteError(w, "Failed to reorder todos", http.StatusInternalServerError)
		return
	}
	utils.WriteJSON(w, http.StatusOK, ordered)
}

type dayRequest struct {
	Today string `json:"today"`
}

// decodeDay reads an optional {today} body; an empty body means the
// server's today.
func (h *Handler) decodeDay(w http.ResponseWriter, r *http.Request) (normalize.Date, bool) {
	var req dayRequest
	if err := utils.DecodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		utils.WriteError(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return normalize.Date{}, false
	}
	today, err := h.today(req.Today)
	if err != nil {
		utils.WriteError(w, "Invalid today date", http.StatusBadRequest)
		return today, false
	}
	return today, true
}

// MovePending brings every incomplete task from other days onto today.
func (h *Handler) MovePending(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	today, ok := h.decodeDay(w, r)
	if !ok {
		return
	}

	all, err := h.Store.List(r.Context(), uid, Filter{})
	if err != nil {
		log.WithError(err).Error("list todos for move")
		utils.WriteError(w, "Failed to move tasks", http.StatusInternalServerError)
		return
	}
	moved := PlanMovePending(all, today)
	if err := h.Store.SaveColumns(r.Context(), moved, "due_date", "sort_order"); err != nil {
		log.WithError(err).Error("move pending tasks")
		utils.WriteError(w, "Failed to move tasks", http.StatusInternalServerError)
		return
	}

	log.WithFields(logrus.Fields{"user_id": uid, "moved": len(moved)}).Info("moved pending tasks to today")
	utils.WriteJSON(w, http.StatusOK, map[string]int{"moved": len(moved)})
}

// SinkDone moves today's completed tasks below the incomplete ones.
func (h *Handler) SinkDone(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	today, ok := h.decodeDay(w, r)
	if !ok {
		return
	}

	bucket, err := h.Store.InBucket(r.Context(), uid, datePtr(today))
	if err != nil {
		log.WithError(err).Error("read today for sink")
		utils.WriteError(w, "Failed to move done tasks", http.StatusInternalServerError)
		return
	}
	ordered := SinkDone(bucket)
	if err := h.Store.SaveColumns(r.Context(), ordered, "sort_order"); err != nil {
		log.WithError(err).Error("sink done tasks")
		utils.WriteError(w, "Failed to move done tasks", http.StatusInternalServerError)
		return
	}
	utils.WriteJSON(w, http.StatusOK, ordered)
}

type contextRequest struct {
	Today string `json:"today"`
	Text  string `json:"text"`
}

// SaveContext creates or rewrites today's context note.
func (h *Handler) SaveContext(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	var req contextRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteError(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		utils.WriteError(w, "Context text is required", http.StatusBadRequest)
		return
	}
	today, err := h.today(req.Today)
	if err != nil {
		utils.WriteError(w, "Invalid today date", http.StatusBadRequest)
		return
	}

	bucket, err := h.Store.InBucket(r.Context(), uid, datePtr(today))
	if err != nil {
		log.WithError(err).Error("read today for context")
		utils.WriteError(w, "Failed to save context", http.StatusInternalServerError)
		return
	}
	for _, t := range bucket {
		if t.IsContext() {
			t.Task = ContextPrefix + text
			h.save(w, r, &t)
			return
		}
	}

	created, err := h.Store.Create(r.Context(), []Todo{{
		UserID:    uid,
		Task:      ContextPrefix + text,
		DueDate:   datePtr(today),
		SortOrder: NextSortOrder(bucket, datePtr(today)),
	}})
	if err != nil {
		log.WithError(err).Error("create context")
		utils.WriteError(w, "Failed to save context", http.StatusInternalServerError)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, created[0])
}

func (h *Handler) DeleteTodo(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	err := h.Store.Delete(r.Context(), uid, chi.URLParam(r, "id"))
	if errors.Is(err, ErrNotFound) {
		utils.WriteError(w, "Todo not found", http.StatusNotFound)
		return
	}
	if err != nil {
		log.WithError(err).Error("delete todo")
		utils.WriteError(w, "Failed to delete todo", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteMany clears the listed ids, or the user's whole list when the ids
// parameter is absent. An ids parameter with nothing in it is rejected.
func (h *Handler) DeleteMany(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	raw, filtered := r.URL.Query()["ids"]
	var ids []string
	for _, v := range raw {
		for _, id := range strings.Split(v, ",") {
			if id = strings.TrimSpace(id); id != "" {
				ids = append(ids, id)
			}
		}
	}
	if filtered && len(ids) == 0 {
		utils.WriteError(w, "No ids provided", http.StatusBadRequest)
		return
	}

	n, err := h.Store.DeleteMany(r.Context(), uid, ids)
	if err != nil {
		log.WithError(err).Error("delete todos")
		utils.WriteError(w, "Failed to delete todos", http.StatusInternalServerError)
		return
	}
	log.WithFields(logrus.Fields{"user_id": uid, "deleted": n}).Info("cleared todos")
	utils.WriteJSON(w, http.StatusOK, map[string]int64{"deleted": n})
}
