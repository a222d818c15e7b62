// Package assistant drives a single voice interaction end to end:
// transcription, sentiment gate, intent extraction, cart action, response
// synthesis and interaction logging.
package assistant

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/voicecart/voicecart/cart"
	"github.com/voicecart/voicecart/models"
	"github.com/voicecart/voicecart/nlu"
)

// Sentiment labels produced by the external classifier.
const (
	SentimentPositive = "POSITIVE"
	SentimentNegative = "NEGATIVE"
	SentimentNeutral  = "NEUTRAL"
)

// Fixed responses of the interaction pipeline.
const (
	escalationResponse = "You sound frustrated. Let me connect you to a support agent."
	emptyCartResponse  = "Your cart is empty."
	unknownResponse    = "Sorry, I didn't understand that. Can you rephrase?"
)

// Transcriber converts recorded audio into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
}

// SentimentClassifier labels text as POSITIVE, NEGATIVE or NEUTRAL with a
// confidence score in [0,1].
type SentimentClassifier interface {
	Classify(ctx context.Context, text string) (label string, score float64, err error)
}

// Synthesizer renders response text as speech into outputPath.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, outputPath string) error
}

// CartActions is the slice of the cart service the orchestrator drives.
type CartActions interface {
	Add(product string, qty int) (cart.Line, error)
	Remove(product string, qty int) error
	List() ([]cart.Line, error)
}

// Extractor interprets an utterance. Satisfied by *nlu.Extractor.
type Extractor interface {
	Extract(text string) nlu.IntentResult
}

// LogStore appends completed interactions.
type LogStore interface {
	Append(entry *models.InteractionLog) error
}

// Result is the structured outcome of one interaction.
type Result struct {
	Text      string
	Sentiment string
	Score     float64
	Intent    nlu.IntentResult
	Response  string
	Escalated bool
}

// Orchestrator sequences one voice interaction. Collaborator handles are
// injected at construction and live for the whole process; retries re-run
// the whole interaction, there is no intra-interaction checkpoint.
type Orchestrator struct {
	transcriber Transcriber
	sentiment   SentimentClassifier
	synthesizer Synthesizer
	extractor   Extractor
	cart        CartActions
	logs        LogStore
	timeout     time.Duration
	audioDir    string
	logger      *slog.Logger
}

func NewOrchestrator(
	transcriber Transcriber,
	sentiment SentimentClassifier,
	synthesizer Synthesizer,
	extractor Extractor,
	cartSvc CartActions,
	logs LogStore,
	timeout time.Duration,
	audioDir string,
	logger *slog.Logger,
) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		transcriber: transcriber,
		sentiment:   sentiment,
		synthesizer: synthesizer,
		extractor:   extractor,
		cart:        cartSvc,
		logs:        logs,
		timeout:     timeout,
		audioDir:    audioDir,
		logger:      logger.With("component", "assistant"),
	}
}

// Process runs the full interaction state machine over one audio file.
// The whole interaction is bounded by the configured timeout; a negative
// sentiment verdict escalates and terminates the pipeline without touching
// the cart or the interaction log.
func (o *Orchestrator) Process(ctx context.Context, audioPath string) (*Result, error) {
	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	text, err := o.transcriber.Transcribe(ctx, audioPath)
	if err != nil {
		return nil, fmt.Errorf("transcription: %w", err)
	}
	o.logger.Info("transcribed", "text", text)

	label, score, err := o.sentiment.Classify(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("sentiment: %w", err)
	}
	o.logger.Info("sentiment", "label", label, "score", score)

	result := &Result{Text: text, Sentiment: label, Score: score}

	if label == SentimentNegative {
		result.Escalated = true
		result.Response = escalationResponse
		if err := o.speak(ctx, result.Response); err != nil {
			return nil, err
		}
		return result, nil
	}

	result.Intent = o.extractor.Extract(text)
	o.logger.Info("extracted entities",
		"intent", result.Intent.Intent,
		"product", result.Intent.Product,
		"quantity", result.Intent.Quantity,
		"metric", result.Intent.Metric)

	result.Response, err = o.handleAction(result.Intent)
	if err != nil {
		return nil, err
	}
	o.logger.Info("responding", "response", result.Response)

	if err := o.speak(ctx, result.Response); err != nil {
		return nil, err
	}

	// The cart mutation is already committed; a failed log write is
	// reported but does not roll it back.
	entry := &models.InteractionLog{
		UserInput: text,
		Intent:    string(result.Intent.Intent),
		Product:   result.Intent.Product,
		Quantity:  result.Intent.Quantity,
		Metric:    result.Intent.Metric,
		Response:  result.Response,
		Sentiment: label,
	}
	if err := o.logs.Append(entry); err != nil {
		o.logger.Error("interaction log write failed", "error", err)
		return result, fmt.Errorf("interaction log: %w", err)
	}
	return result, nil
}

func (o *Orchestrator) handleAction(intent nlu.IntentResult) (string, error) {
	switch intent.Intent {
	case nlu.IntentAddToCart:
		if _, err := o.cart.Add(intent.Product, intent.Quantity); err != nil {
			return "", err
		}
		return fmt.Sprintf("Added %d %s to your cart.", intent.Quantity, intent.Product), nil

	case nlu.IntentRemoveFromCart:
		if err := o.cart.Remove(intent.Product, intent.Quantity); err != nil {
			return "", err
		}
		return fmt.Sprintf("Removed %s from your cart.", intent.Product), nil

	case nlu.IntentShowCart:
		lines, err := o.cart.List()
		if err != nil {
			return "", err
		}
		if len(lines) == 0 {
			return emptyCartResponse, nil
		}
		parts := make([]string, len(lines))
		for i, l := range lines {
			parts[i] = fmt.Sprintf("%d %s", l.Quantity, l.Product)
		}
		return "Your cart has: " + strings.Join(parts, ", "), nil

	default:
		return unknownResponse, nil
	}
}

func (o *Orchestrator) speak(ctx context.Context, response string) error {
	out := filepath.Join(o.audioDir, "response.wav")
	if err := o.synthesizer.Synthesize(ctx, response, out); err != nil {
		return fmt.Errorf("speech synthesis: %w", err)
	}
	return nil
}
