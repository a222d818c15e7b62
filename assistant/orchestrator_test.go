package assistant

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/voicecart/voicecart/cart"
	"github.com/voicecart/voicecart/models"
	"github.com/voicecart/voicecart/nlu"
)

// --- Fakes ---

type fakeTranscriber struct {
	text string
	err  error
	// blockOnCtx makes Transcribe wait for context cancellation, to
	// exercise the interaction timeout.
	blockOnCtx bool
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, audioPath string) (string, error) {
	if f.blockOnCtx {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return f.text, f.err
}

type fakeClassifier struct {
	label string
	score float64
	err   error
}

func (f *fakeClassifier) Classify(ctx context.Context, text string) (string, float64, error) {
	return f.label, f.score, f.err
}

type fakeSynthesizer struct {
	err      error
	spoken   []string
	lastPath string
}

func (f *fakeSynthesizer) Synthesize(ctx context.Context, text, outputPath string) error {
	f.spoken = append(f.spoken, text)
	f.lastPath = outputPath
	return f.err
}

type fakeExtractor struct {
	result nlu.IntentResult
	called bool
}

func (f *fakeExtractor) Extract(text string) nlu.IntentResult {
	f.called = true
	return f.result
}

type fakeCart struct {
	lines     []cart.Line
	added     []string
	removed   []string
	listErr   error
	addErr    error
	removeErr error
}

func (f *fakeCart) Add(product string, qty int) (cart.Line, error) {
	if f.addErr != nil {
		return cart.Line{}, f.addErr
	}
	f.added = append(f.added, product)
	return cart.Line{Product: product, Quantity: qty}, nil
}

func (f *fakeCart) Remove(product string, qty int) error {
	if f.removeErr != nil {
		return f.removeErr
	}
	f.removed = append(f.removed, product)
	return nil
}

func (f *fakeCart) List() ([]cart.Line, error) {
	return f.lines, f.listErr
}

type fakeLogStore struct {
	entries []*models.InteractionLog
	err     error
}

func (f *fakeLogStore) Append(entry *models.InteractionLog) error {
	if f.err != nil {
		return f.err
	}
	f.entries = append(f.entries, entry)
	return nil
}

// --- Helpers ---

type fixture struct {
	transcriber *fakeTranscriber
	classifier  *fakeClassifier
	synthesizer *fakeSynthesizer
	extractor   *fakeExtractor
	cart        *fakeCart
	logs        *fakeLogStore
}

func newFixture() *fixture {
	return &fixture{
		transcriber: &fakeTranscriber{text: "add 3 kg rice"},
		classifier:  &fakeClassifier{label: SentimentPositive, score: 0.9},
		synthesizer: &fakeSynthesizer{},
		extractor: &fakeExtractor{result: nlu.IntentResult{
			Intent: nlu.IntentAddToCart, Product: "Rice", Quantity: 3, Metric: "kg",
		}},
		cart: &fakeCart{},
		logs: &fakeLogStore{},
	}
}

func (fx *fixture) orchestrator(timeout time.Duration) *Orchestrator {
	return NewOrchestrator(
		fx.transcriber, fx.classifier, fx.synthesizer,
		fx.extractor, fx.cart, fx.logs,
		timeout, "audio_files", nil,
	)
}

// --- Tests ---

func TestProcessAddFlow(t *testing.T) {
	fx := newFixture()
	o := fx.orchestrator(0)

	result, err := o.Process(context.Background(), "input.wav")

	assert.NoError(t, err)
	assert.Equal(t, "add 3 kg rice", result.Text)
	assert.Equal(t, SentimentPositive, result.Sentiment)
	assert.False(t, result.Escalated)
	assert.Equal(t, "Added 3 Rice to your cart.", result.Response)

	assert.Equal(t, []string{"Rice"}, fx.cart.added)
	assert.Equal(t, []string{"Added 3 Rice to your cart."}, fx.synthesizer.spoken)

	assert.Len(t, fx.logs.entries, 1)
	entry := fx.logs.entries[0]
	assert.Equal(t, "add 3 kg rice", entry.UserInput)
	assert.Equal(t, "add_to_cart", entry.Intent)
	assert.Equal(t, "Rice", entry.Product)
	assert.Equal(t, 3, entry.Quantity)
	assert.Equal(t, "kg", entry.Metric)
	assert.Equal(t, SentimentPositive, entry.Sentiment)
}

func TestProcessRemoveFlow(t *testing.T) {
	fx := newFixture()
	fx.extractor.result = nlu.IntentResult{
		Intent: nlu.IntentRemoveFromCart, Product: "Milk", Quantity: 2,
	}
	o := fx.orchestrator(0)

	result, err := o.Process(context.Background(), "input.wav")

	assert.NoError(t, err)
	assert.Equal(t, "Removed Milk from your cart.", result.Response)
	assert.Equal(t, []string{"Milk"}, fx.cart.removed)
}

func TestProcessShowCart(t *testing.T) {
	fx := newFixture()
	fx.extractor.result = nlu.IntentResult{Intent: nlu.IntentShowCart, Product: "item", Quantity: 1}
	fx.cart.lines = []cart.Line{
		{Product: "rice", Quantity: 2},
		{Product: "milk", Quantity: 1},
	}
	o := fx.orchestrator(0)

	result, err := o.Process(context.Background(), "input.wav")

	assert.NoError(t, err)
	assert.Equal(t, "Your cart has: 2 rice, 1 milk", result.Response)
}

func TestProcessShowEmptyCart(t *testing.T) {
	fx := newFixture()
	fx.extractor.result = nlu.IntentResult{Intent: nlu.IntentShowCart, Product: "item", Quantity: 1}
	o := fx.orchestrator(0)

	result, err := o.Process(context.Background(), "input.wav")

	assert.NoError(t, err)
	assert.Equal(t, "Your cart is empty.", result.Response)
}

func TestProcessUnknownIntentDoesNotMutate(t *testing.T) {
	fx := newFixture()
	fx.extractor.result = nlu.IntentResult{Intent: nlu.IntentUnknown, Product: "item", Quantity: 1}
	o := fx.orchestrator(0)

	result, err := o.Process(context.Background(), "input.wav")

	assert.NoError(t, err)
	assert.Equal(t, "Sorry, I didn't understand that. Can you rephrase?", result.Response)
	assert.Empty(t, fx.cart.added)
	assert.Empty(t, fx.cart.removed)
	// Unknown-intent interactions are still logged.
	assert.Len(t, fx.logs.entries, 1)
}

func TestProcessNegativeSentimentEscalates(t *testing.T) {
	fx := newFixture()
	fx.classifier.label = SentimentNegative
	fx.classifier.score = 0.97
	o := fx.orchestrator(0)

	result, err := o.Process(context.Background(), "input.wav")

	assert.NoError(t, err)
	assert.True(t, result.Escalated)
	assert.Equal(t, "You sound frustrated. Let me connect you to a support agent.", result.Response)

	// The escalation branch is terminal: no extraction, no cart mutation,
	// no interaction log.
	assert.False(t, fx.extractor.called)
	assert.Empty(t, fx.cart.added)
	assert.Empty(t, fx.cart.removed)
	assert.Empty(t, fx.logs.entries)

	// The escalation message is still spoken.
	assert.Equal(t, []string{"You sound frustrated. Let me connect you to a support agent."}, fx.synthesizer.spoken)
}

func TestProcessTranscriptionFailureIsFatal(t *testing.T) {
	fx := newFixture()
	fx.transcriber.err = errors.New("unreadable audio")
	o := fx.orchestrator(0)

	_, err := o.Process(context.Background(), "input.wav")

	assert.Error(t, err)
	assert.False(t, fx.extractor.called)
	assert.Empty(t, fx.logs.entries)
}

func TestProcessSynthesisFailureIsReported(t *testing.T) {
	fx := newFixture()
	fx.synthesizer.err = errors.New("tts unavailable")
	o := fx.orchestrator(0)

	_, err := o.Process(context.Background(), "input.wav")

	assert.Error(t, err)
	// The cart mutation has already committed at this point.
	assert.Equal(t, []string{"Rice"}, fx.cart.added)
	// But the interaction is not logged as completed.
	assert.Empty(t, fx.logs.entries)
}

func TestProcessLogFailureReportedWithoutRollback(t *testing.T) {
	fx := newFixture()
	fx.logs.err = errors.New("store unreachable")
	o := fx.orchestrator(0)

	result, err := o.Process(context.Background(), "input.wav")

	assert.Error(t, err)
	assert.NotNil(t, result)
	assert.Equal(t, []string{"Rice"}, fx.cart.added)
}

func TestProcessTimeout(t *testing.T) {
	fx := newFixture()
	fx.transcriber.blockOnCtx = true
	o := fx.orchestrator(20 * time.Millisecond)

	_, err := o.Process(context.Background(), "input.wav")

	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSynthesizerWritesToAudioDir(t *testing.T) {
	fx := newFixture()
	o := fx.orchestrator(0)

	_, err := o.Process(context.Background(), "input.wav")

	assert.NoError(t, err)
	assert.Equal(t, "audio_files/response.wav", fx.synthesizer.lastPath)
}
