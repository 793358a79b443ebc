package meeting

import (
	"context"
	stderrors "errors"
	"slices"
	"testing"
	"time"

	"github.com/kbukum/transcriptkit/errors"
	"github.com/kbukum/transcriptkit/transcript"
)

func fixedClock() func() time.Time {
	now := time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		now = now.Add(time.Second)
		return now
	}
}

func newTestService(t *testing.T) (*Service, *memRepo, *memCache, *recordingPublisher) {
	t.Helper()
	repo := newMemRepo()
	cache := newMemCache()
	pub := &recordingPublisher{}
	svc := NewService(repo, WithCache(cache), WithPublisher(pub), WithClock(fixedClock()))
	return svc, repo, cache, pub
}

func TestServiceLifecycle(t *testing.T) {
	ctx := context.Background()
	svc, repo, _, pub := newTestService(t)

	m, err := svc.Create(ctx, CreateRequest{Title: "planning"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Pause(ctx, m.ID); err != nil {
		t.Fatalf("pause: %v", err)
	}
	if _, err := svc.Resume(ctx, m.ID); err != nil {
		t.Fatalf("resume: %v", err)
	}
	stopped, err := svc.Stop(ctx, m.ID, Recording{AudioPath: "/rec/planning.wav", Duration: 61.5})
	if err != nil {
		t.Fatalf("stop: %v", err)
	}
	if stopped.Status != StatusProcessing || stopped.AudioPath != "/rec/planning.wav" || stopped.Duration != 61.5 {
		t.Errorf("unexpected stopped meeting %+v", stopped)
	}
	if got := repo.status(t, m.ID); got != StatusProcessing {
		t.Errorf("stored status %s", got)
	}

	want := []EventType{EventCreated, EventStatusChanged, EventStatusChanged, EventStatusChanged}
	if got := pub.types(); !slices.Equal(got, want) {
		t.Errorf("events = %v, want %v", got, want)
	}
	last := pub.last()
	if last.Previous != StatusRecording || last.Status != StatusProcessing {
		t.Errorf("unexpected last event %+v", last)
	}
}

func TestServiceInvalidTransition(t *testing.T) {
	ctx := context.Background()
	svc, repo, _, _ := newTestService(t)

	m, err := svc.Create(ctx, CreateRequest{})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Resume(ctx, m.ID); !errors.IsCode(err, errors.ErrCodeConflict) {
		t.Errorf("expected CONFLICT resuming a recording meeting, got %v", err)
	}
	if got := repo.status(t, m.ID); got != StatusRecording {
		t.Errorf("status must be unchanged, got %s", got)
	}
}

func TestServiceNotFound(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	if _, err := svc.Pause(context.Background(), "missing"); !errors.IsCode(err, errors.ErrCodeNotFound) {
		t.Errorf("expected NOT_FOUND, got %v", err)
	}
}

func TestServiceCreateInvalid(t *testing.T) {
	svc, _, _, pub := newTestService(t)
	if _, err := svc.Create(context.Background(), CreateRequest{Profile: "nope"}); err == nil {
		t.Fatal("expected validation error")
	}
	if len(pub.types()) != 0 {
		t.Error("no event expected for a rejected create")
	}
}

func TestServicePublishFailureIsNotFatal(t *testing.T) {
	repo := newMemRepo()
	pub := &recordingPublisher{err: stderrors.New("broker down")}
	svc := NewService(repo, WithPublisher(pub))

	m, err := svc.Create(context.Background(), CreateRequest{})
	if err != nil {
		t.Fatalf("create must succeed when publishing fails: %v", err)
	}
	if _, err := svc.Cancel(context.Background(), m.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}
}

func TestServiceTranscriptCache(t *testing.T) {
	ctx := context.Background()
	svc, repo, cache, _ := newTestService(t)

	res := &transcript.Result{Segments: []transcript.AlignedSegment{{Start: 0, End: 1, Text: "hi"}}}
	if err := repo.SaveTranscript(ctx, "m1", res); err != nil {
		t.Fatal(err)
	}

	got, err := svc.Transcript(ctx, "m1")
	if err != nil {
		t.Fatalf("transcript: %v", err)
	}
	if len(got.Segments) != 1 {
		t.Fatalf("unexpected transcript %+v", got)
	}
	if _, ok := cache.items["m1"]; !ok {
		t.Error("expected transcript to be cached after a miss")
	}

	if _, err := svc.Transcript(ctx, "missing"); !errors.IsCode(err, errors.ErrCodeNotFound) {
		t.Errorf("expected NOT_FOUND, got %v", err)
	}
}

func TestServiceCancelInvalidatesCache(t *testing.T) {
	ctx := context.Background()
	svc, _, cache, _ := newTestService(t)

	m, err := svc.Create(ctx, CreateRequest{})
	if err != nil {
		t.Fatal(err)
	}
	_ = cache.Put(ctx, m.ID, &transcript.Result{})
	if _, err := svc.Cancel(ctx, m.ID); err != nil {
		t.Fatal(err)
	}
	if _, ok := cache.items[m.ID]; ok {
		t.Error("expected cache entry to be removed")
	}
}

func TestServiceList(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := newTestService(t)

	a, _ := svc.Create(ctx, CreateRequest{Title: "a"})
	b, _ := svc.Create(ctx, CreateRequest{Title: "b"})
	if _, err := svc.Cancel(ctx, a.ID); err != nil {
		t.Fatal(err)
	}

	all, err := svc.List(ctx, "", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 || all[0].ID != b.ID {
		t.Errorf("expected newest first, got %d meetings", len(all))
	}
	cancelled, _ := svc.List(ctx, StatusCancelled, 0)
	if len(cancelled) != 1 || cancelled[0].ID != a.ID {
		t.Errorf("expected only the cancelled meeting, got %v", cancelled)
	}
}
