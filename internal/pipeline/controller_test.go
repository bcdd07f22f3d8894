package pipeline

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"minuteminds/internal/gateway"
	"minuteminds/internal/services"
)

type fakeAuth struct{ verified bool }

func (f *fakeAuth) Verified() bool { return f.verified }

type fakeGateway struct {
	mu sync.Mutex

	transcribeResult gateway.TranscribeResult
	transcribeErr    error
	summarizeResult  gateway.SummarizeResult
	summarizeErr     error
	items            []gateway.KeyItem
	itemsErr         error
	persistErr       error
	translated       string
	translateErr     error
	exportPayload    []byte
	exportErr        error

	transcribeCalls int
	summarizeCalls  int
	extractCalls    int
	persistCalls    int
	translateCalls  int
	exportCalls     int
	persisted       [][]gateway.KeyItem

	summarizeGate chan struct{}
	exportGate    chan struct{}
}

func (f *fakeGateway) Transcribe(ctx context.Context, filename string, audio io.Reader, denoise bool) (gateway.TranscribeResult, error) {
	f.mu.Lock()
	f.transcribeCalls++
	f.mu.Unlock()
	return f.transcribeResult, f.transcribeErr
}

func (f *fakeGateway) Summarize(ctx context.Context, documentID string) (gateway.SummarizeResult, error) {
	f.mu.Lock()
	f.summarizeCalls++
	gate := f.summarizeGate
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	return f.summarizeResult, f.summarizeErr
}

func (f *fakeGateway) ExtractItems(ctx context.Context, documentID string) ([]gateway.KeyItem, error) {
	f.mu.Lock()
	f.extractCalls++
	f.mu.Unlock()
	return f.items, f.itemsErr
}

func (f *fakeGateway) PersistItems(ctx context.Context, documentID string, items []gateway.KeyItem) error {
	f.mu.Lock()
	f.persistCalls++
	f.persisted = append(f.persisted, items)
	f.mu.Unlock()
	return f.persistErr
}

func (f *fakeGateway) Translate(ctx context.Context, text, target string) (string, error) {
	f.mu.Lock()
	f.translateCalls++
	f.mu.Unlock()
	return f.translated, f.translateErr
}

func (f *fakeGateway) ExportDocument(ctx context.Context, documentID, format string) ([]byte, error) {
	f.mu.Lock()
	f.exportCalls++
	gate := f.exportGate
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	return f.exportPayload, f.exportErr
}

func (f *fakeGateway) totalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.transcribeCalls + f.summarizeCalls + f.extractCalls + f.persistCalls + f.translateCalls + f.exportCalls
}

func newTestController(t *testing.T, gw *fakeGateway, auth *fakeAuth) *Controller {
	t.Helper()
	ctrl, err := New(gw, auth, t.TempDir())
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return ctrl
}

func transcribeHello(t *testing.T, ctrl *Controller, gw *fakeGateway) {
	t.Helper()
	gw.transcribeResult = gateway.TranscribeResult{
		TranscriptionID: "doc1",
		Transcription:   "hello team",
		Segments:        []gateway.Segment{{Start: 0, End: 2, Text: "hello team"}},
	}
	if err := ctrl.Transcribe(context.Background(), "standup.wav", strings.NewReader("RIFF"), false); err != nil {
		t.Fatalf("Transcribe() error: %v", err)
	}
}

func TestTranscribeInstallsTranscript(t *testing.T) {
	gw := &fakeGateway{}
	ctrl := newTestController(t, gw, &fakeAuth{verified: true})

	transcribeHello(t, ctrl, gw)

	doc := ctrl.Document()
	if doc.ID != "doc1" || doc.Transcript != "hello team" {
		t.Errorf("document = %+v", doc)
	}
	if got := ctrl.StageStatus(StageTranscribe).State; got != StageSucceeded {
		t.Errorf("transcribe status = %v", got)
	}
	for _, stage := range []string{StageSummarize, StageItems} {
		if got := ctrl.StageStatus(stage).State; got != StageIdle {
			t.Errorf("stage %s = %v, want idle", stage, got)
		}
	}
}

func TestDownstreamStagesRequireTranscript(t *testing.T) {
	gw := &fakeGateway{}
	ctrl := newTestController(t, gw, &fakeAuth{verified: true})
	ctx := context.Background()

	checks := map[string]func() error{
		"summarize": func() error { return ctrl.Summarize(ctx) },
		"items":     func() error { return ctrl.ExtractItems(ctx) },
		"translate": func() error { return ctrl.Translate(ctx, "fr") },
		"export": func() error {
			_, _, err := ctrl.Export(ctx, "pdf")
			return err
		},
	}
	for name, invoke := range checks {
		if err := invoke(); !services.IsPrecondition(err) {
			t.Errorf("%s: expected precondition error, got %v", name, err)
		}
	}
	if calls := gw.totalCalls(); calls != 0 {
		t.Errorf("gateway received %d calls before any transcript", calls)
	}
}

func TestStagesRequireVerifiedSession(t *testing.T) {
	gw := &fakeGateway{}
	auth := &fakeAuth{verified: false}
	ctrl := newTestController(t, gw, auth)

	err := ctrl.Transcribe(context.Background(), "standup.wav", strings.NewReader("RIFF"), false)
	if !services.IsPrecondition(err) {
		t.Fatalf("expected precondition error, got %v", err)
	}
	if gw.totalCalls() != 0 {
		t.Errorf("gateway called while unverified")
	}
}

func TestRetranscribeClearsDerivedOutputs(t *testing.T) {
	gw := &fakeGateway{
		summarizeResult: gateway.SummarizeResult{
			Summary:      "short recap",
			BulletPoints: []string{"a", "b", "c"},
		},
		items:      []gateway.KeyItem{{Text: "ship it", Status: "pending"}},
		translated: "bonjour equipe",
	}
	ctrl := newTestController(t, gw, &fakeAuth{verified: true})
	ctx := context.Background()

	transcribeHello(t, ctrl, gw)
	if err := ctrl.Summarize(ctx); err != nil {
		t.Fatalf("Summarize() error: %v", err)
	}
	if err := ctrl.ExtractItems(ctx); err != nil {
		t.Fatalf("ExtractItems() error: %v", err)
	}
	if err := ctrl.Translate(ctx, "fr"); err != nil {
		t.Fatalf("Translate() error: %v", err)
	}

	doc := ctrl.Document()
	if doc.Summary == nil || len(doc.Summary.BulletPoints) != 3 {
		t.Fatalf("summary = %+v", doc.Summary)
	}
	if len(doc.KeyItems) != 1 || len(doc.Translations) != 1 {
		t.Fatalf("items = %d, translations = %d", len(doc.KeyItems), len(doc.Translations))
	}

	gw.transcribeResult = gateway.TranscribeResult{TranscriptionID: "doc2", Transcription: "new meeting"}
	if err := ctrl.Transcribe(ctx, "retro.wav", strings.NewReader("RIFF"), false); err != nil {
		t.Fatalf("second Transcribe() error: %v", err)
	}

	doc = ctrl.Document()
	if doc.ID != "doc2" {
		t.Errorf("id = %q", doc.ID)
	}
	if doc.Summary != nil {
		t.Error("summary survived re-transcription")
	}
	if doc.KeyItems != nil {
		t.Error("key items survived re-transcription")
	}
	if len(doc.Translations) != 0 {
		t.Error("translations survived re-transcription")
	}
	if got := ctrl.StageStatus(StageSummarize).State; got != StageIdle {
		t.Errorf("summarize status = %v, want idle", got)
	}
	if got := ctrl.StageStatus(TranslateStage("fr")).State; got != StageIdle {
		t.Errorf("translate:fr status = %v, want idle", got)
	}
}

func TestDuplicateInvocationWhileRunningIsDropped(t *testing.T) {
	gw := &fakeGateway{summarizeGate: make(chan struct{})}
	ctrl := newTestController(t, gw, &fakeAuth{verified: true})
	ctx := context.Background()

	transcribeHello(t, ctrl, gw)

	done := make(chan error, 1)
	go func() { done <- ctrl.Summarize(ctx) }()

	deadline := time.After(2 * time.Second)
	for ctrl.StageStatus(StageSummarize).State != StageRunning {
		select {
		case <-deadline:
			t.Fatal("summarize never reached running state")
		case <-time.After(5 * time.Millisecond):
		}
	}

	if err := ctrl.Summarize(ctx); err != nil {
		t.Fatalf("duplicate invocation returned %v, want nil", err)
	}

	close(gw.summarizeGate)
	if err := <-done; err != nil {
		t.Fatalf("original invocation failed: %v", err)
	}
	if gw.summarizeCalls != 1 {
		t.Errorf("summarize called %d times, want 1", gw.summarizeCalls)
	}
	if got := ctrl.StageStatus(StageSummarize).State; got != StageSucceeded {
		t.Errorf("summarize status = %v", got)
	}
}

func TestStaleSummarizeResultIsDiscarded(t *testing.T) {
	gw := &fakeGateway{
		summarizeGate:   make(chan struct{}),
		summarizeResult: gateway.SummarizeResult{Summary: "stale recap"},
	}
	ctrl := newTestController(t, gw, &fakeAuth{verified: true})
	ctx := context.Background()

	transcribeHello(t, ctrl, gw)

	done := make(chan error, 1)
	go func() { done <- ctrl.Summarize(ctx) }()

	deadline := time.After(2 * time.Second)
	for ctrl.StageStatus(StageSummarize).State != StageRunning {
		select {
		case <-deadline:
			t.Fatal("summarize never reached running state")
		case <-time.After(5 * time.Millisecond):
		}
	}

	// Replace the transcript while the summary is still in flight.
	gw.transcribeResult = gateway.TranscribeResult{TranscriptionID: "doc2", Transcription: "fresh"}
	if err := ctrl.Transcribe(ctx, "retro.wav", strings.NewReader("RIFF"), false); err != nil {
		t.Fatalf("Transcribe() error: %v", err)
	}

	close(gw.summarizeGate)
	if err := <-done; err != nil {
		t.Fatalf("stale invocation returned %v, want nil", err)
	}

	doc := ctrl.Document()
	if doc.Summary != nil {
		t.Errorf("stale summary applied to new transcript: %+v", doc.Summary)
	}
	if got := ctrl.StageStatus(StageSummarize).State; got != StageIdle {
		t.Errorf("summarize status = %v, want idle", got)
	}
}

func TestStageFailureIsRecordedAndSurfaced(t *testing.T) {
	gw := &fakeGateway{summarizeErr: services.Wrap(services.ErrRemote, "gateway", "summarize", "status 500",
		&services.RemoteMessageError{Message: "Summarizer overloaded"})}
	ctrl := newTestController(t, gw, &fakeAuth{verified: true})

	transcribeHello(t, ctrl, gw)

	err := ctrl.Summarize(context.Background())
	if !errors.Is(err, services.ErrRemote) {
		t.Fatalf("expected remote error, got %v", err)
	}
	status := ctrl.StageStatus(StageSummarize)
	if status.State != StageFailed {
		t.Errorf("summarize status = %v, want failed", status.State)
	}
	if status.ErrorMessage != "Summarizer overloaded" {
		t.Errorf("failure message = %q", status.ErrorMessage)
	}
	// A failed stage can be retried; success clears the message.
	gw.summarizeErr = nil
	gw.summarizeResult = gateway.SummarizeResult{Summary: "recap"}
	if err := ctrl.Summarize(context.Background()); err != nil {
		t.Fatalf("retry error: %v", err)
	}
	status = ctrl.StageStatus(StageSummarize)
	if status.State != StageSucceeded {
		t.Errorf("summarize status after retry = %v", status.State)
	}
	if status.ErrorMessage != "" {
		t.Errorf("message survived retry: %q", status.ErrorMessage)
	}
}

func TestStageFailureMessageSurvivesRestart(t *testing.T) {
	dir := t.TempDir()
	gw := &fakeGateway{summarizeErr: services.Wrap(services.ErrRemote, "gateway", "summarize", "status 503",
		&services.RemoteMessageError{Message: "Summarizer overloaded"})}
	ctrl, err := New(gw, &fakeAuth{verified: true}, dir)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	transcribeHello(t, ctrl, gw)
	if err := ctrl.Summarize(context.Background()); err == nil {
		t.Fatal("expected summarize error")
	}

	restored, err := New(gw, &fakeAuth{verified: true}, dir)
	if err != nil {
		t.Fatalf("restore error: %v", err)
	}
	status := restored.StageStatus(StageSummarize)
	if status.State != StageFailed || status.ErrorMessage != "Summarizer overloaded" {
		t.Errorf("restored status = %+v", status)
	}
}

func TestExtractAssignsStableIdentifiers(t *testing.T) {
	gw := &fakeGateway{items: []gateway.KeyItem{
		{Text: "ship release", Assignee: "Ana", Status: "pending"},
		{Text: "book room", Status: "done"},
	}}
	ctrl := newTestController(t, gw, &fakeAuth{verified: true})

	transcribeHello(t, ctrl, gw)
	if err := ctrl.ExtractItems(context.Background()); err != nil {
		t.Fatalf("ExtractItems() error: %v", err)
	}

	items := ctrl.Document().KeyItems
	if len(items) != 2 {
		t.Fatalf("items = %d", len(items))
	}
	if items[0].ID == "" || items[1].ID == "" || items[0].ID == items[1].ID {
		t.Errorf("identifiers not unique: %q, %q", items[0].ID, items[1].ID)
	}
	if items[0].Status != StatusOpen {
		t.Errorf("status %q not normalized to open", items[0].Status)
	}
	if items[1].Status != StatusDone {
		t.Errorf("status = %q, want done", items[1].Status)
	}
}

func TestDoubleToggleRestoresOriginalStatus(t *testing.T) {
	gw := &fakeGateway{items: []gateway.KeyItem{{Text: "ship release", Status: "pending"}}}
	ctrl := newTestController(t, gw, &fakeAuth{verified: true})
	ctx := context.Background()

	transcribeHello(t, ctrl, gw)
	if err := ctrl.ExtractItems(ctx); err != nil {
		t.Fatalf("ExtractItems() error: %v", err)
	}

	if err := ctrl.ToggleItem(ctx, 0); err != nil {
		t.Fatalf("first toggle error: %v", err)
	}
	if got := ctrl.Document().KeyItems[0].Status; got != StatusDone {
		t.Errorf("status after first toggle = %q", got)
	}
	if err := ctrl.ToggleItem(ctx, 0); err != nil {
		t.Fatalf("second toggle error: %v", err)
	}
	if got := ctrl.Document().KeyItems[0].Status; got != StatusOpen {
		t.Errorf("status after double toggle = %q, want open", got)
	}
	if gw.persistCalls != 2 {
		t.Errorf("persist called %d times, want 2", gw.persistCalls)
	}
	if len(gw.persisted) == 2 && len(gw.persisted[1]) != 1 {
		t.Errorf("persisted list length = %d", len(gw.persisted[1]))
	}
}

func TestToggleKeepsLocalFlipWhenPersistFails(t *testing.T) {
	gw := &fakeGateway{
		items:      []gateway.KeyItem{{Text: "ship release", Status: "pending"}},
		persistErr: services.Wrap(services.ErrRemote, "gateway", "key-items", "status 500", nil),
	}
	ctrl := newTestController(t, gw, &fakeAuth{verified: true})
	ctx := context.Background()

	transcribeHello(t, ctrl, gw)
	if err := ctrl.ExtractItems(ctx); err != nil {
		t.Fatalf("ExtractItems() error: %v", err)
	}

	err := ctrl.ToggleItem(ctx, 0)
	if !errors.Is(err, services.ErrRemote) {
		t.Fatalf("expected remote error, got %v", err)
	}
	if got := ctrl.Document().KeyItems[0].Status; got != StatusDone {
		t.Errorf("status = %q, want done despite failed persistence", got)
	}
}

func TestToggleByIDFindsItemAfterReorder(t *testing.T) {
	gw := &fakeGateway{items: []gateway.KeyItem{
		{Text: "first", Status: "pending"},
		{Text: "second", Status: "pending"},
	}}
	ctrl := newTestController(t, gw, &fakeAuth{verified: true})
	ctx := context.Background()

	transcribeHello(t, ctrl, gw)
	if err := ctrl.ExtractItems(ctx); err != nil {
		t.Fatalf("ExtractItems() error: %v", err)
	}

	target := ctrl.Document().KeyItems[1]
	if err := ctrl.ToggleItemByID(ctx, target.ID); err != nil {
		t.Fatalf("ToggleItemByID() error: %v", err)
	}
	items := ctrl.Document().KeyItems
	if items[0].Status != StatusOpen || items[1].Status != StatusDone {
		t.Errorf("statuses = %q, %q", items[0].Status, items[1].Status)
	}

	if err := ctrl.ToggleItemByID(ctx, "missing"); !services.IsPrecondition(err) {
		t.Errorf("expected precondition error for unknown id, got %v", err)
	}
}

func TestExportReturnsDeterministicLabel(t *testing.T) {
	gw := &fakeGateway{exportPayload: []byte("%PDF-1.4")}
	fixed := time.Date(2026, time.March, 14, 16, 0, 0, 0, time.UTC)
	ctrl, err := New(gw, &fakeAuth{verified: true}, t.TempDir(), WithClock(func() time.Time { return fixed }))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	transcribeHello(t, ctrl, gw)

	payload, label, err := ctrl.Export(context.Background(), "pdf")
	if err != nil {
		t.Fatalf("Export() error: %v", err)
	}
	if string(payload) != "%PDF-1.4" {
		t.Errorf("payload = %q", payload)
	}
	if label != "minutes_2026-03-14.pdf" {
		t.Errorf("label = %q", label)
	}
	_, second, err := ctrl.Export(context.Background(), "pdf")
	if err != nil {
		t.Fatalf("second Export() error: %v", err)
	}
	if second != label {
		t.Errorf("labels differ: %q vs %q", label, second)
	}
	if got := ctrl.StageStatus(ExportStage("pdf")).State; got != StageSucceeded {
		t.Errorf("export status = %v", got)
	}
}

func TestStaleExportResultIsDropped(t *testing.T) {
	gw := &fakeGateway{
		exportGate:    make(chan struct{}),
		exportPayload: []byte("%PDF-1.4"),
	}
	ctrl := newTestController(t, gw, &fakeAuth{verified: true})
	ctx := context.Background()

	transcribeHello(t, ctrl, gw)

	type exportResult struct {
		payload []byte
		label   string
		err     error
	}
	done := make(chan exportResult, 1)
	go func() {
		payload, label, err := ctrl.Export(ctx, "pdf")
		done <- exportResult{payload, label, err}
	}()

	deadline := time.After(2 * time.Second)
	for ctrl.StageStatus(ExportStage("pdf")).State != StageRunning {
		select {
		case <-deadline:
			t.Fatal("export never reached running state")
		case <-time.After(5 * time.Millisecond):
		}
	}

	// Replace the transcript while the export is still in flight.
	gw.transcribeResult = gateway.TranscribeResult{TranscriptionID: "doc2", Transcription: "fresh"}
	if err := ctrl.Transcribe(ctx, "retro.wav", strings.NewReader("RIFF"), false); err != nil {
		t.Fatalf("Transcribe() error: %v", err)
	}

	close(gw.exportGate)
	result := <-done
	if result.err != nil {
		t.Fatalf("stale export returned %v, want nil", result.err)
	}
	if result.payload != nil || result.label != "" {
		t.Errorf("stale export handed back payload %q label %q", result.payload, result.label)
	}
	if got := ctrl.StageStatus(ExportStage("pdf")).State; got != StageIdle {
		t.Errorf("export status = %v, want idle", got)
	}
	if len(ctrl.Document().Exports) != 0 {
		t.Errorf("stale export recorded on new transcript: %+v", ctrl.Document().Exports)
	}
}

func TestStateSurvivesRestart(t *testing.T) {
	dir := t.TempDir()
	gw := &fakeGateway{summarizeResult: gateway.SummarizeResult{Summary: "recap"}}
	ctrl, err := New(gw, &fakeAuth{verified: true}, dir)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	transcribeHello(t, ctrl, gw)
	if err := ctrl.Summarize(context.Background()); err != nil {
		t.Fatalf("Summarize() error: %v", err)
	}

	restored, err := New(gw, &fakeAuth{verified: true}, dir)
	if err != nil {
		t.Fatalf("restore error: %v", err)
	}
	doc := restored.Document()
	if doc.ID != "doc1" || doc.Summary == nil || doc.Summary.Text != "recap" {
		t.Errorf("restored document = %+v", doc)
	}
	if got := restored.StageStatus(StageSummarize).State; got != StageSucceeded {
		t.Errorf("restored summarize status = %v", got)
	}
}

func TestSnapshotNormalizesRunningStages(t *testing.T) {
	dir := t.TempDir()
	store := NewFileSnapshotStore(dir)
	snap := snapshot{
		Document: Document{ID: "doc1", Transcript: "hello"},
		Stages: stageSet{
			StageTranscribe: {State: StageSucceeded},
			StageSummarize:  {State: StageRunning},
		},
		Version: 3,
	}
	if err := store.Save(snap); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if got := loaded.Stages[StageSummarize].State; got != StageIdle {
		t.Errorf("summarize reloaded as %v, want idle", got)
	}
	if got := loaded.Stages[StageTranscribe].State; got != StageSucceeded {
		t.Errorf("transcribe reloaded as %v", got)
	}
}

func TestResetClearsEverything(t *testing.T) {
	gw := &fakeGateway{}
	ctrl := newTestController(t, gw, &fakeAuth{verified: true})

	transcribeHello(t, ctrl, gw)
	if err := ctrl.Reset(); err != nil {
		t.Fatalf("Reset() error: %v", err)
	}
	if ctrl.Document().HasTranscript() {
		t.Error("transcript survived reset")
	}
	if got := ctrl.StageStatus(StageTranscribe).State; got != StageIdle {
		t.Errorf("transcribe status = %v after reset", got)
	}
}
