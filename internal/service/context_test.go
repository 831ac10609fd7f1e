package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/botfactory/botfactory/internal/domain/conversation"
	"github.com/botfactory/botfactory/internal/domain/knowledge"
)

func TestKnowledgeServedFromCache(t *testing.T) {
	store := newMemStore()
	store.entries = []knowledge.Entry{
		{BotID: "b1", Kind: knowledge.KindText, Content: "Ish vaqti: 9:00 - 18:00"},
	}
	svc := NewContextService(store, newMemCache(), time.Minute, 2000, 3)

	first, err := svc.Knowledge(context.Background(), "b1")
	if err != nil {
		t.Fatalf("Knowledge: %v", err)
	}
	if !strings.Contains(first, "Ish vaqti") {
		t.Fatalf("knowledge = %q", first)
	}

	second, err := svc.Knowledge(context.Background(), "b1")
	if err != nil {
		t.Fatalf("Knowledge (cached): %v", err)
	}
	if second != first {
		t.Errorf("cached text differs: %q vs %q", second, first)
	}
	if store.knowledgeLoads != 1 {
		t.Errorf("store loaded %d times, want 1", store.knowledgeLoads)
	}
}

func TestKnowledgeInvalidateForcesReload(t *testing.T) {
	store := newMemStore()
	store.entries = []knowledge.Entry{
		{BotID: "b1", Kind: knowledge.KindText, Content: "eski matn"},
	}
	svc := NewContextService(store, newMemCache(), time.Minute, 2000, 3)

	if _, err := svc.Knowledge(context.Background(), "b1"); err != nil {
		t.Fatalf("Knowledge: %v", err)
	}

	store.mu.Lock()
	store.entries[0].Content = "yangi matn"
	store.mu.Unlock()
	svc.Invalidate(context.Background(), "b1")

	text, err := svc.Knowledge(context.Background(), "b1")
	if err != nil {
		t.Fatalf("Knowledge after invalidate: %v", err)
	}
	if text != "yangi matn" {
		t.Errorf("knowledge = %q, want the fresh text", text)
	}
	if store.knowledgeLoads != 2 {
		t.Errorf("store loaded %d times, want 2", store.knowledgeLoads)
	}
}

func TestKnowledgeEmptyNotCached(t *testing.T) {
	store := newMemStore()
	svc := NewContextService(store, newMemCache(), time.Minute, 2000, 3)

	for i := 0; i < 2; i++ {
		text, err := svc.Knowledge(context.Background(), "b1")
		if err != nil {
			t.Fatalf("Knowledge: %v", err)
		}
		if text != "" {
			t.Fatalf("knowledge = %q, want empty", text)
		}
	}
	if store.knowledgeLoads != 2 {
		t.Errorf("store loaded %d times, want 2 (empty text must not pin the cache)", store.knowledgeLoads)
	}
}

func TestKnowledgeWithoutCache(t *testing.T) {
	store := newMemStore()
	store.entries = []knowledge.Entry{
		{BotID: "b1", Kind: knowledge.KindText, Content: "matn"},
	}
	svc := NewContextService(store, nil, time.Minute, 2000, 3)

	if _, err := svc.Knowledge(context.Background(), "b1"); err != nil {
		t.Fatalf("Knowledge: %v", err)
	}
	if _, err := svc.Knowledge(context.Background(), "b1"); err != nil {
		t.Fatalf("Knowledge: %v", err)
	}
	if store.knowledgeLoads != 2 {
		t.Errorf("store loaded %d times, want 2 without a cache", store.knowledgeLoads)
	}
}

func TestKnowledgeLoadErrorPropagates(t *testing.T) {
	store := newMemStore()
	store.knowledgeErr = errors.New("connection refused")
	svc := NewContextService(store, nil, time.Minute, 2000, 3)

	if _, err := svc.Knowledge(context.Background(), "b1"); err == nil {
		t.Fatal("Knowledge returned nil error for a failing store")
	}
}

func TestHistoryFormatsRecentTurns(t *testing.T) {
	store := newMemStore()
	store.turns = []conversation.Turn{
		{BotID: "b1", PlatformUserID: "7", Input: "salom", Output: "Salom!"},
		{BotID: "b1", PlatformUserID: "7", Input: "narxi qancha", Output: "3 million som"},
		{BotID: "b1", PlatformUserID: "other", Input: "boshqa", Output: "boshqa"},
	}
	svc := NewContextService(store, nil, time.Minute, 2000, 3)

	history, err := svc.History(context.Background(), "b1", "7")
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if !strings.Contains(history, "Foydalanuvchi: salom") {
		t.Errorf("history missing first turn: %q", history)
	}
	if !strings.Contains(history, "Bot: 3 million som") {
		t.Errorf("history missing second answer: %q", history)
	}
	if strings.Contains(history, "boshqa") {
		t.Errorf("history leaked another user's turn: %q", history)
	}
}

func TestProductsFiltersByKind(t *testing.T) {
	store := newMemStore()
	store.entries = []knowledge.Entry{
		{BotID: "b1", Kind: knowledge.KindText, Content: "matn"},
		{BotID: "b1", Kind: knowledge.KindProduct, Content: "Mahsulot: Telefon", MediaRef: "https://img.example/t.png"},
	}
	svc := NewContextService(store, nil, time.Minute, 2000, 3)

	products, err := svc.Products(context.Background(), "b1")
	if err != nil {
		t.Fatalf("Products: %v", err)
	}
	if len(products) != 1 || products[0].Kind != knowledge.KindProduct {
		t.Fatalf("products = %v, want the single product entry", products)
	}
}
