package assist

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/EmpoweredVote/Ledger-Backend/internal/expenses"
	"github.com/EmpoweredVote/Ledger-Backend/internal/logging"
	"github.com/EmpoweredVote/Ledger-Backend/internal/taxonomy"
	"github.com/EmpoweredVote/Ledger-Backend/internal/utils"
	"github.com/sirupsen/logrus"
)

// Upload limits per field.
const (
	MaxImageBytes = 10 << 20
	MaxAudioBytes = 25 << 20
)

const defaultAudioName = "recording.webm"

// TagSource lists the user's merged subcategory names per category.
type TagSource interface {
	Merged(ctx context.Context, userID string) (map[string][]string, error)
}

// ExpenseTags reads merged tags from the expense store.
type ExpenseTags struct {
	Store    expenses.Store
	Taxonomy taxonomy.Config
}

func (t ExpenseTags) Merged(ctx context.Context, userID string) (map[string][]string, error) {
	stored, err := t.Store.ListSubcategories(ctx, userID, "")
	if err != nil {
		return nil, err
	}
	used, err := t.Store.UsedSubcategories(ctx, userID)
	if err != nil {
		return nil, err
	}
	return expenses.MergedSubcategories(t.Taxonomy, stored, used), nil
}

type Handler struct {
	// Provider is nil when no model service is configured; the routes then
	// answer 503.
	Provider Provider
	Taxonomy taxonomy.Config
	Tags     TagSource
	// RatePerMinute caps requests per user; zero disables the limit.
	RatePerMinute int
}

var log = logging.For("assist")

// Transcription mirrors the speech service's JSON reply.
type Transcription struct {
	Text string `json:"text"`
}

type ocrResponse struct {
	Tasks       []string `json:"tasks"`
	RawResponse string   `json:"rawResponse"`
}

type voiceExpenseResponse struct {
	Transcription Transcription `json:"transcription"`
	Extracted     Extracted     `json:"extracted"`
	// Fallback is set when the fields came from the transcript pattern
	// rather than the model.
	Fallback bool `json:"fallback,omitempty"`
}

type voiceTodoResponse struct {
	Transcription Transcription `json:"transcription"`
	Task          string        `json:"task"`
}

type failureResponse struct {
	Error         string         `json:"error"`
	Transcription *Transcription `json:"transcription,omitempty"`
}

func (h *Handler) ready(w http.ResponseWriter) bool {
	if h.Provider == nil {
		utils.WriteError(w, "Capture service is not configured", http.StatusServiceUnavailable)
		return false
	}
	return true
}

// readUpload reads one multipart file field under limit bytes.
func readUpload(w http.ResponseWriter, r *http.Request, field, missing string, limit int64) ([]byte, *multipart.FileHeader, bool) {
	// leave room for the other multipart parts
	r.Body = http.MaxBytesReader(w, r.Body, limit+(1<<20))
	file, header, err := r.FormFile(field)
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			utils.WriteError(w, "File too large", http.StatusRequestEntityTooLarge)
			return nil, nil, false
		}
		utils.WriteError(w, missing, http.StatusBadRequest)
		return nil, nil, false
	}
	defer file.Close()

	if header.Size > limit {
		utils.WriteError(w, "File too large", http.StatusRequestEntityTooLarge)
		return nil, nil, false
	}
	data, err := io.ReadAll(file)
	if err != nil {
		utils.WriteError(w, "Failed to read file", http.StatusBadRequest)
		return nil, nil, false
	}
	return data, header, true
}

// OCRTasks extracts todo lines from a photo of a notebook page.
func (h *Handler) OCRTasks(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	data, header, ok := readUpload(w, r, "image", "No image file provided", MaxImageBytes)
	if !ok {
		return
	}

	mime := header.Header.Get("Content-Type")
	if mime == "" || mime == "application/octet-stream" {
		mime = http.DetectContentType(data)
	}

	reply, err := h.Provider.Complete(r.Context(), ChatRequest{
		Model:       ModelVision,
		System:      ocrSystemPrompt,
		User:        ocrUserPrompt,
		Image:       &Image{MIMEType: mime, Data: data},
		MaxTokens:   1000,
		Temperature: 0.1,
	})
	if err != nil {
		log.WithError(err).Error("ocr completion")
		utils.WriteError(w, "Failed to process image", http.StatusInternalServerError)
		return
	}
	if strings.TrimSpace(reply) == "" {
		utils.WriteError(w, "No response from OCR service", http.StatusInternalServerError)
		return
	}

	tasks := ParseTasks(reply)
	log.WithFields(logrus.Fields{"bytes": len(data), "tasks": len(tasks)}).Info("extracted tasks from image")
	utils.WriteJSON(w, http.StatusOK, ocrResponse{Tasks: tasks, RawResponse: reply})
}

func (h *Handler) transcribe(w http.ResponseWriter, r *http.Request, prompt string) (Transcription, bool) {
	data, header, ok := readUpload(w, r, "audio", "No audio file provided", MaxAudioBytes)
	if !ok {
		return Transcription{}, false
	}
	name := header.Filename
	if name == "" {
		name = defaultAudioName
	}

	text, err := h.Provider.Transcribe(r.Context(), bytes.NewReader(data), name, prompt)
	if err != nil {
		log.WithError(err).Error("transcription")
		utils.WriteError(w, "Failed to transcribe audio", http.StatusInternalServerError)
		return Transcription{}, false
	}
	return Transcription{Text: strings.TrimSpace(text)}, true
}

// VoiceExpense turns a spoken expense into form fields.
func (h *Handler) VoiceExpense(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	uid, _ := utils.GetUserIDFromContext(r.Context())

	tr, ok := h.transcribe(w, r, expenseTranscribePrompt)
	if !ok {
		return
	}

	var merged map[string][]string
	if h.Tags != nil {
		m, err := h.Tags.Merged(r.Context(), uid)
		if err != nil {
			log.WithError(err).Warn("voice expense: saved subcategories unavailable")
		}
		merged = m
	}

	reply, err := h.Provider.Complete(r.Context(), ChatRequest{
		Model:       ModelExtract,
		System:      expenseSystemPrompt(h.Taxonomy, merged),
		User:        tr.Text,
		MaxTokens:   500,
		Temperature: 0,
	})
	if err != nil {
		log.WithError(err).Error("expense extraction")
		utils.WriteJSON(w, http.StatusInternalServerError, failureResponse{Error: "Failed to extract expense", Transcription: &tr})
		return
	}

	ex, fromModel := ExtractExpense(reply, tr.Text, h.Taxonomy, merged)
	if !fromModel {
		log.WithField("raw", reply).Warn("model reply was not JSON, used transcript fallback")
	}
	utils.WriteJSON(w, http.StatusOK, voiceExpenseResponse{Transcription: tr, Extracted: ex, Fallback: !fromModel})
}

// VoiceTodo turns a spoken command into task text.
func (h *Handler) VoiceTodo(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	tr, ok := h.transcribe(w, r, todoTranscribePrompt)
	if !ok {
		return
	}

	reply, err := h.Provider.Complete(r.Context(), ChatRequest{
		Model:       ModelExtract,
		System:      todoSystemPrompt,
		User:        tr.Text,
		MaxTokens:   100,
		Temperature: 0,
	})
	if err != nil {
		log.WithError(err).Error("todo extraction")
		utils.WriteJSON(w, http.StatusInternalServerError, failureResponse{Error: "Failed to extract task from audio", Transcription: &tr})
		return
	}

	task := capitalizeFirst(strings.Trim(strings.TrimSpace(reply), `"`))
	if task == "" {
		task = StripCommand(tr.Text)
	}
	if task == "" {
		utils.WriteJSON(w, http.StatusInternalServerError, failureResponse{Error: "Failed to extract task from audio", Transcription: &tr})
		return
	}
	utils.WriteJSON(w, http.StatusOK, voiceTodoResponse{Transcription: tr, Task: task})
}
