package redis

import (
	"context"
	"testing"
	"time"

	"quiz-engine/internal/app"
	"quiz-engine/internal/domain"
)

func TestSessionStoreSetsAndClearsKeys(t *testing.T) {
	mr := startRedis(t)
	store := NewSessionStore(newClient(mr), time.Minute)

	session := app.NewSession("s-1", sampleQuiz())
	store.Put(session)
	if !mr.Exists("quiz:session:s-1") {
		t.Fatalf("expected redis key to be set")
	}
	if v, _ := mr.Get("quiz:session:s-1"); v != "quiz-1" {
		t.Fatalf("expected marker to carry quiz id, got %q", v)
	}
	if got, ok := store.Get("s-1"); !ok || got != session {
		t.Fatalf("expected local session returned")
	}
	live, err := store.Live(context.Background(), "s-1")
	if err != nil || !live {
		t.Fatalf("expected session live, got %v %v", live, err)
	}

	store.Delete("s-1")
	if mr.Exists("quiz:session:s-1") {
		t.Fatalf("expected redis key to be removed")
	}
	if _, ok := store.Get("s-1"); ok {
		t.Fatalf("expected session dropped locally")
	}
}

func TestSessionStoreMarkerExpires(t *testing.T) {
	mr := startRedis(t)
	store := NewSessionStore(newClient(mr), time.Minute)
	store.Put(app.NewSession("s-1", domain.Quiz{ID: "quiz-1"}))

	mr.FastForward(2 * time.Minute)
	live, err := store.Live(context.Background(), "s-1")
	if err != nil {
		t.Fatalf("live: %v", err)
	}
	if live {
		t.Fatalf("expected marker to expire")
	}
}

func TestSessionStoreCloseAllClearsMarkers(t *testing.T) {
	mr := startRedis(t)
	store := NewSessionStore(newClient(mr), time.Minute)
	store.Put(app.NewSession("s-1", sampleQuiz()))
	store.Put(app.NewSession("s-2", sampleQuiz()))

	if n := store.CloseAll(context.Background()); n != 2 {
		t.Fatalf("expected two sessions closed, got %d", n)
	}
	if mr.Exists("quiz:session:s-1") || mr.Exists("quiz:session:s-2") {
		t.Fatalf("expected markers removed")
	}
	if _, ok := store.Get("s-1"); ok {
		t.Fatalf("expected local map emptied")
	}
}
