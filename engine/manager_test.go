package engine

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/kbukum/transcriptkit/errors"
	"github.com/kbukum/transcriptkit/transcript"
)

type fakeTranscriber struct {
	name      string
	available bool
	chunks    []transcript.TimedText
}

func (f *fakeTranscriber) Name() string                     { return f.name }
func (f *fakeTranscriber) IsAvailable(context.Context) bool { return f.available }
func (f *fakeTranscriber) Transcribe(context.Context, Audio) ([]transcript.TimedText, error) {
	return f.chunks, nil
}

func fakeFactory(available bool) Factory[Transcriber] {
	return func(cfg map[string]any) (Transcriber, error) {
		name, _ := cfg["name"].(string)
		return &fakeTranscriber{name: name, available: available}, nil
	}
}

func TestRegistry_BuildAndNames(t *testing.T) {
	r := NewRegistry[Transcriber]("transcription")
	r.Register("whisper", fakeFactory(true))
	r.Register("assembly", fakeFactory(true))

	names := r.Names()
	if len(names) != 2 || names[0] != "assembly" || names[1] != "whisper" {
		t.Errorf("expected sorted names, got %v", names)
	}

	e, err := r.Build("whisper", map[string]any{"name": "whisper"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if e.Name() != "whisper" {
		t.Errorf("expected whisper, got %s", e.Name())
	}

	_, err = r.Build("missing", nil)
	appErr, ok := errors.AsAppError(err)
	if !ok || appErr.Code != errors.ErrCodeNotFound {
		t.Fatalf("expected NOT_FOUND for unknown factory, got %v", err)
	}
	if known, _ := appErr.Details["known"].([]string); len(known) != 2 {
		t.Errorf("expected known engines in details, got %v", appErr.Details["known"])
	}

	r.Register("broken", func(map[string]any) (Transcriber, error) { return nil, fmt.Errorf("no url") })
	if _, err := r.Build("broken", nil); err == nil || !strings.Contains(err.Error(), `transcription engine "broken": no url`) {
		t.Errorf("expected wrapped factory error, got %v", err)
	}
}

func TestManager_GetUsesSelector(t *testing.T) {
	m := NewTranscribers(&PrioritySelector[Transcriber]{Priority: []string{"down", "up"}})
	m.Register("down", fakeFactory(false))
	m.Register("up", fakeFactory(true))

	if err := m.Initialize("down", map[string]any{"name": "down"}); err != nil {
		t.Fatal(err)
	}
	if err := m.Initialize("up", map[string]any{"name": "up"}); err != nil {
		t.Fatal(err)
	}

	e, err := m.Get(context.Background())
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if e.Name() != "up" {
		t.Errorf("expected the available engine, got %s", e.Name())
	}

	avail := m.Available()
	if len(avail) != 2 || avail[0] != "down" {
		t.Errorf("expected both engines listed, got %v", avail)
	}
}

func TestManager_DefaultOverridesSelector(t *testing.T) {
	m := NewTranscribers(nil)
	m.Register("down", fakeFactory(false))
	if err := m.Initialize("down", map[string]any{"name": "down"}); err != nil {
		t.Fatal(err)
	}

	if _, err := m.Get(context.Background()); !errors.IsCode(err, errors.ErrCodeServiceUnavailable) {
		t.Fatalf("expected SERVICE_UNAVAILABLE from health-check selector, got %v", err)
	}

	if err := m.SetDefault("down"); err != nil {
		t.Fatal(err)
	}
	e, err := m.Get(context.Background())
	if err != nil || e.Name() != "down" {
		t.Errorf("expected pinned default, got %v, %v", e, err)
	}

	if err := m.SetDefault("missing"); !errors.IsCode(err, errors.ErrCodeNotFound) {
		t.Errorf("expected NOT_FOUND, got %v", err)
	}
}

func TestManager_GetByName(t *testing.T) {
	m := NewTranscribers(nil)
	m.Register("whisper", fakeFactory(true))
	if err := m.Initialize("whisper", map[string]any{"name": "whisper"}); err != nil {
		t.Fatal(err)
	}
	if _, err := m.GetByName("whisper"); err != nil {
		t.Errorf("expected engine, got %v", err)
	}
	if _, err := m.GetByName("nope"); err == nil {
		t.Error("expected error for unknown engine")
	}
	if err := m.Initialize("nope", nil); err == nil {
		t.Error("expected error initializing unregistered engine")
	}
}
