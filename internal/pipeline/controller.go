package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"minuteminds/internal/export"
	"minuteminds/internal/gateway"
	"minuteminds/internal/logging"
	"minuteminds/internal/services"
)

// Gateway is the slice of the remote client the controller depends on.
type Gateway interface {
	Transcribe(ctx context.Context, filename string, audio io.Reader, denoise bool) (gateway.TranscribeResult, error)
	Summarize(ctx context.Context, documentID string) (gateway.SummarizeResult, error)
	ExtractItems(ctx context.Context, documentID string) ([]gateway.KeyItem, error)
	PersistItems(ctx context.Context, documentID string, items []gateway.KeyItem) error
	Translate(ctx context.Context, text, target string) (string, error)
	ExportDocument(ctx context.Context, documentID, format string) ([]byte, error)
}

// AuthState exposes the session fact the controller gates on.
type AuthState interface {
	Verified() bool
}

// Option customises Controller construction.
type Option func(*Controller)

// WithLogger attaches a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logging.NewComponentLogger(logger, "pipeline")
		}
	}
}

// WithSnapshotStore injects a custom persistence layer.
func WithSnapshotStore(store SnapshotStore) Option {
	return func(c *Controller) { c.store = store }
}

// WithClock overrides the time source used for export labels.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}

// Controller sequences the document pipeline. Transcribe feeds every other
// stage; a fresh transcript invalidates all derived outputs. Stage calls are
// single-flight: invoking a stage that is already running is a no-op.
type Controller struct {
	gw     Gateway
	auth   AuthState
	store  SnapshotStore
	logger *slog.Logger
	now    func() time.Time

	mu      sync.Mutex
	doc     Document
	stages  stageSet
	version uint64
}

// New builds a controller, restoring any state a previous invocation left in
// stateDir.
func New(gw Gateway, auth AuthState, stateDir string, opts ...Option) (*Controller, error) {
	if gw == nil {
		return nil, errors.New("gateway is nil")
	}
	if auth == nil {
		return nil, errors.New("auth state is nil")
	}
	ctrl := &Controller{
		gw:     gw,
		auth:   auth,
		store:  NewFileSnapshotStore(stateDir),
		logger: logging.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(ctrl)
	}

	snap, err := ctrl.store.Load()
	if err != nil {
		return nil, err
	}
	ctrl.doc = snap.Document
	ctrl.stages = snap.Stages
	ctrl.version = snap.Version
	return ctrl, nil
}

// Document returns a copy of the current document.
func (c *Controller) Document() Document {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.doc.clone()
}

// StageStatus returns the status of a single stage.
func (c *Controller) StageStatus(key string) StageStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stages.get(key)
}

// Stages returns every tracked stage and its status.
func (c *Controller) Stages() map[string]StageStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stages.clone()
}

// Reset discards the document and all stage state.
func (c *Controller) Reset() error {
	c.mu.Lock()
	c.doc = Document{}
	c.stages = newStageSet()
	c.version++
	c.mu.Unlock()
	return c.store.Clear()
}

// Transcribe uploads audio and installs the resulting transcript as the new
// pipeline root. Every output derived from a previous transcript is cleared.
func (c *Controller) Transcribe(ctx context.Context, filename string, audio io.Reader, denoise bool) error {
	c.mu.Lock()
	if !c.auth.Verified() {
		c.mu.Unlock()
		return services.Wrap(services.ErrPrecondition, "pipeline", "transcribe", "login required", nil)
	}
	if audio == nil {
		c.mu.Unlock()
		return services.Wrap(services.ErrPrecondition, "pipeline", "transcribe", "no audio selected", nil)
	}
	if c.stages.get(StageTranscribe).State == StageRunning {
		c.mu.Unlock()
		c.logger.Debug("transcribe already running; invocation dropped")
		return nil
	}
	c.stages.set(StageTranscribe, StageRunning)
	c.mu.Unlock()

	ctx = services.WithStage(ctx, StageTranscribe)
	result, err := c.gw.Transcribe(ctx, filename, audio, denoise)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.stages.fail(StageTranscribe, services.Message(err))
		c.persistLocked()
		return err
	}

	c.version++
	c.doc = Document{
		ID:         result.TranscriptionID,
		Filename:   filename,
		Transcript: result.Transcription,
		Segments:   result.Segments,
	}
	c.stages.resetDownstream()
	c.stages.set(StageTranscribe, StageSucceeded)
	c.logger.Info("transcript installed",
		logging.String(logging.FieldDocumentID, result.TranscriptionID),
		logging.Int("segments", len(result.Segments)))
	c.persistLocked()
	return nil
}

// Summarize produces a summary for the current transcript.
func (c *Controller) Summarize(ctx context.Context) error {
	documentID, version, err := c.begin(StageSummarize)
	if err != nil || documentID == "" {
		return err
	}

	ctx = services.WithStage(services.WithDocumentID(ctx, documentID), StageSummarize)
	result, callErr := c.gw.Summarize(ctx, documentID)

	_, err = c.commit(StageSummarize, version, callErr, func() {
		c.doc.Summary = &Summary{Text: result.Summary, BulletPoints: result.BulletPoints}
	})
	return err
}

// ExtractItems pulls decisions and action items out of the current transcript.
// Each item receives a locally assigned identifier that stays stable for the
// life of the transcript.
func (c *Controller) ExtractItems(ctx context.Context) error {
	documentID, version, err := c.begin(StageItems)
	if err != nil || documentID == "" {
		return err
	}

	ctx = services.WithStage(services.WithDocumentID(ctx, documentID), StageItems)
	extracted, callErr := c.gw.ExtractItems(ctx, documentID)

	_, err = c.commit(StageItems, version, callErr, func() {
		items := make([]KeyItem, 0, len(extracted))
		for _, item := range extracted {
			items = append(items, KeyItem{
				ID:       uuid.New().String(),
				Text:     item.Text,
				Assignee: item.Assignee,
				Status:   normalizeStatus(item.Status),
			})
		}
		c.doc.KeyItems = items
	})
	return err
}

// Translate renders the current transcript in the target language.
func (c *Controller) Translate(ctx context.Context, lang string) error {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if lang == "" {
		return services.Wrap(services.ErrPrecondition, "pipeline", "translate", "target language required", nil)
	}
	stage := TranslateStage(lang)
	documentID, version, err := c.begin(stage)
	if err != nil || documentID == "" {
		return err
	}

	c.mu.Lock()
	transcript := c.doc.Transcript
	c.mu.Unlock()

	ctx = services.WithStage(services.WithDocumentID(ctx, documentID), stage)
	translated, callErr := c.gw.Translate(ctx, transcript, lang)

	_, err = c.commit(stage, version, callErr, func() {
		if c.doc.Translations == nil {
			c.doc.Translations = make(map[string]string)
		}
		c.doc.Translations[lang] = translated
	})
	return err
}

// Export fetches the rendered minutes in the requested format. The returned
// label is a pure function of today's date and the format.
func (c *Controller) Export(ctx context.Context, format string) ([]byte, string, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		return nil, "", services.Wrap(services.ErrPrecondition, "pipeline", "export", "export format required", nil)
	}
	stage := ExportStage(format)
	documentID, version, err := c.begin(stage)
	if err != nil || documentID == "" {
		return nil, "", err
	}

	ctx = services.WithStage(services.WithDocumentID(ctx, documentID), stage)
	payload, callErr := c.gw.ExportDocument(ctx, documentID, format)

	label := export.Label(c.now(), format)
	committed, commitErr := c.commit(stage, version, callErr, func() {
		if c.doc.Exports == nil {
			c.doc.Exports = make(map[string]string)
		}
		c.doc.Exports[format] = label
	})
	if commitErr != nil {
		return nil, "", commitErr
	}
	// A result from a replaced transcript is dropped, payload included.
	if !committed {
		return nil, "", nil
	}
	return payload, label, nil
}

// begin gates a downstream stage: the transcript must exist and the stage
// must not already be running. It returns the document id and the transcript
// version the stage's result will be committed against. An empty id with a
// nil error means the invocation was dropped as a duplicate.
func (c *Controller) begin(stage string) (string, uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.auth.Verified() {
		return "", 0, services.Wrap(services.ErrPrecondition, "pipeline", stage, "login required", nil)
	}
	if !c.doc.HasTranscript() {
		return "", 0, services.Wrap(services.ErrPrecondition, "pipeline", stage, "transcribe a recording first", nil)
	}
	if c.stages.get(stage).State == StageRunning {
		c.logger.Debug("stage already running; invocation dropped", logging.String(logging.FieldStage, stage))
		return "", 0, nil
	}
	c.stages.set(stage, StageRunning)
	return c.doc.ID, c.version, nil
}

// commit applies a stage result. Results computed against a transcript that
// has since been replaced are discarded without touching the new state; the
// returned bool reports whether the result was applied.
func (c *Controller) commit(stage string, version uint64, callErr error, apply func()) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.version != version {
		c.logger.Info("stale stage result discarded", logging.String(logging.FieldStage, stage))
		return false, nil
	}
	if callErr != nil {
		c.stages.fail(stage, services.Message(callErr))
		c.persistLocked()
		return false, callErr
	}
	apply()
	c.stages.set(stage, StageSucceeded)
	c.persistLocked()
	return true, nil
}

func (c *Controller) persistLocked() {
	snap := snapshot{Document: c.doc.clone(), Stages: c.stages.clone(), Version: c.version}
	if err := c.store.Save(snap); err != nil {
		c.logger.Warn("pipeline state not persisted", logging.Error(err))
	}
}

func normalizeStatus(status string) string {
	if strings.EqualFold(strings.TrimSpace(status), StatusDone) {
		return StatusDone
	}
	return StatusOpen
}
