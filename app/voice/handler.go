package voice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/voicecart/voicecart/assistant"
	"github.com/voicecart/voicecart/cart"
	"github.com/voicecart/voicecart/nlu"
)

// Processor runs one full voice interaction over a saved audio file.
type Processor interface {
	Process(ctx context.Context, audioPath string) (*assistant.Result, error)
}

// Extractor interprets a raw text command for the debug route.
type Extractor interface {
	Extract(text string) nlu.IntentResult
}

// CartActions is the slice of the cart service the debug route drives.
type CartActions interface {
	Add(product string, qty int) (cart.Line, error)
	Remove(product string, qty int) error
	List() ([]cart.Line, error)
}

type VoiceHandler struct {
	processor Processor
	extractor Extractor
	cart      CartActions
	audioDir  string
	logger    *slog.Logger
}

func NewVoiceHandler(p Processor, e Extractor, c CartActions, audioDir string, logger *slog.Logger) *VoiceHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &VoiceHandler{
		processor: p,
		extractor: e,
		cart:      c,
		audioDir:  audioDir,
		logger:    logger.With("component", "voice"),
	}
}

// HandleUpload accepts a recorded utterance as multipart field "audio",
// stores it under a fresh session id and runs the interaction pipeline.
// The temporary audio file is removed on every exit path.
func (h *VoiceHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	file, _, err := r.FormFile("audio")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "No file uploaded"})
		return
	}
	defer file.Close()

	session := strings.ReplaceAll(uuid.NewString(), "-", "")
	inputPath := filepath.Join(h.audioDir, fmt.Sprintf("input_%s.wav", session))

	if err := saveUpload(file, inputPath); err != nil {
		h.logger.Error("file save failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": fmt.Sprintf("File save failed: %v", err),
		})
		return
	}
	defer func() {
		if err := os.Remove(inputPath); err == nil {
			h.logger.Info("removed temporary file", "path", inputPath)
		}
	}()
	h.logger.Info("saved audio", "path", inputPath, "session_id", session)

	if _, err := h.processor.Process(r.Context(), inputPath); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			h.logger.Error("processing timed out", "session_id", session)
			writeJSON(w, http.StatusInternalServerError, map[string]string{
				"error":   "Processing took too long",
				"message": "Please try again with a shorter recording",
			})
			return
		}
		h.logger.Error("processing failed", "session_id", session, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error":   "Audio processing failed",
			"details": err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":     "success",
		"message":    "Audio processed successfully",
		"session_id": session,
	})
}

type debugRequest struct {
	Text string `json:"text"`
}

type Line struct {
	Product    string  `json:"product"`
	Quantity   int     `json:"quantity"`
	Price      float64 `json:"price"`
	TotalPrice float64 `json:"total_price"`
}

type debugResponse struct {
	Status  string `json:"status"`
	Action  string `json:"action,omitempty"`
	Message string `json:"message,omitempty"`
	Cart    []Line `json:"cart"`
}

func toLines(lines []cart.Line) []Line {
	out := make([]Line, len(lines))
	for i, l := range lines {
		out[i] = Line{
			Product:    l.Product,
			Quantity:   l.Quantity,
			Price:      l.Price.InexactFloat64(),
			TotalPrice: l.TotalPrice.InexactFloat64(),
		}
	}
	return out
}

// HandleDebug runs a raw text command through the extractor and the cart
// ledger, bypassing transcription, sentiment and synthesis. An unknown
// intent is a failure-status response that still reports the current cart.
func (h *VoiceHandler) HandleDebug(w http.ResponseWriter, r *http.Request) {
	var req debugRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid JSON body"})
		return
	}

	entities := h.extractor.Extract(req.Text)
	h.logger.Info("debug entities",
		"intent", entities.Intent,
		"product", entities.Product,
		"quantity", entities.Quantity)

	var action string
	switch entities.Intent {
	case nlu.IntentAddToCart:
		if _, err := h.cart.Add(entities.Product, entities.Quantity); err != nil {
			h.debugError(w, err)
			return
		}
		action = "add"
	case nlu.IntentRemoveFromCart:
		if err := h.cart.Remove(entities.Product, entities.Quantity); err != nil {
			h.debugError(w, err)
			return
		}
		action = "remove"
	case nlu.IntentShowCart:
		action = "show"
	default:
		lines, _ := h.cart.List()
		writeJSON(w, http.StatusBadRequest, debugResponse{
			Status:  "error",
			Message: "Unknown intent",
			Cart:    toLines(lines),
		})
		return
	}

	lines, err := h.cart.List()
	if err != nil {
		h.debugError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, debugResponse{
		Status: "success",
		Action: action,
		Cart:   toLines(lines),
	})
}

func (h *VoiceHandler) debugError(w http.ResponseWriter, err error) {
	h.logger.Error("debug command failed", "error", err)
	lines, _ := h.cart.List()
	writeJSON(w, http.StatusInternalServerError, debugResponse{
		Status:  "error",
		Message: err.Error(),
		Cart:    toLines(lines),
	})
}

func saveUpload(src io.Reader, path string) error {
	dst, err := os.Create(path)
	if err != nil {
		return err
	}
	defer dst.Close()
	if _, err := io.Copy(dst, src); err != nil {
		return err
	}
	return dst.Close()
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
