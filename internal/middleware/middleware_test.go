package middleware

import (
	"context"
	"testing"
	"time"

	"github.com/go-telegram/bot/models"
)

func TestChatLimiter(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	l := NewChatLimiter(3, time.Minute)
	l.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		if !l.Allow(42) {
			t.Fatalf("message %d should be allowed", i+1)
		}
	}
	if l.Allow(42) {
		t.Fatalf("fourth message in a burst should be limited")
	}
	if !l.Allow(7) {
		t.Fatalf("other chats have their own bucket")
	}

	// One token comes back every window/limit.
	now = now.Add(20 * time.Second)
	if !l.Allow(42) {
		t.Fatalf("a refilled token should be usable")
	}
	if l.Allow(42) {
		t.Fatalf("only one token should have been refilled")
	}

	now = now.Add(time.Minute)
	if !l.Allow(42) {
		t.Fatalf("an idle chat should be allowed again")
	}
	if len(l.chats) != 1 {
		t.Fatalf("idle chats should be dropped, have %d", len(l.chats))
	}
}

func TestActorFromUser(t *testing.T) {
	isAdmin := func(id int64) bool { return id == 1 }

	a := ActorFromUser(&models.User{ID: 1, FirstName: "Ada", LastName: "Lovelace"}, isAdmin)
	if a.ID != "1" || a.DisplayName != "Ada Lovelace" || !a.Privileged {
		t.Fatalf("unexpected actor %+v", a)
	}

	b := ActorFromUser(&models.User{ID: 2, Username: "bob"}, isAdmin)
	if b.DisplayName != "bob" || b.Privileged {
		t.Fatalf("unexpected actor %+v", b)
	}
}

func TestActorContext(t *testing.T) {
	if _, ok := GetActor(context.Background()); ok {
		t.Fatalf("empty context must not carry an actor")
	}
	ctx := WithActor(context.Background(), ActorFromUser(&models.User{ID: 5, FirstName: "Eve"}, func(int64) bool { return false }))
	a, ok := GetActor(ctx)
	if !ok || a.ID != "5" {
		t.Fatalf("actor not found in context: %+v", a)
	}
}

func TestDescribeUpdate(t *testing.T) {
	cmd := describeUpdate(&models.Update{Message: &models.Message{
		Chat: models.Chat{ID: -100},
		From: &models.User{ID: 42},
		Text: "/claim collect_wood 3",
	}})
	if cmd.kind != "command" || cmd.data != "/claim" || cmd.chatID != -100 || cmd.userID != 42 {
		t.Fatalf("unexpected command info %+v", cmd)
	}

	text := describeUpdate(&models.Update{Message: &models.Message{Chat: models.Chat{ID: 7}, Text: "hello"}})
	if text.kind != "message" || text.data != "" || text.userID != 0 {
		t.Fatalf("plain text should not be logged: %+v", text)
	}

	cb := describeUpdate(&models.Update{CallbackQuery: &models.CallbackQuery{
		From:    models.User{ID: 1},
		Data:    "approve_42_1001",
		Message: models.MaybeInaccessibleMessage{Message: &models.Message{Chat: models.Chat{ID: -200}}},
	}})
	if cb.kind != "callback_query" || cb.data != "approve_42_1001" || cb.chatID != -200 {
		t.Fatalf("unexpected callback info %+v", cb)
	}

	if other := describeUpdate(&models.Update{}); other.kind != "unknown" {
		t.Fatalf("empty update kind = %q", other.kind)
	}
}
