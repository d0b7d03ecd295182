package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"science-chat/internal/domain"
)

func TestMemoryUserRepository_RoundTrip(t *testing.T) {
	repo := NewMemoryUserRepository()
	ctx := context.Background()
	now := time.Now().UTC()

	in := []domain.Turn{
		{ID: "t1", Role: domain.RoleUser, Message: "what is DNA?", CreatedAt: now},
		{ID: "t2", Role: domain.RoleModel, Message: "a molecule", CreatedAt: now},
	}
	if err := repo.AppendTurns(ctx, "u1", in); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out, found, err := repo.FindUser(ctx, "u1")
	if err != nil || !found {
		t.Fatalf("expected user found, err=%v found=%v", err, found)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 turns, got %d", len(out))
	}
	for i := range in {
		if out[i].Role != in[i].Role || out[i].Message != in[i].Message || out[i].ID != in[i].ID {
			t.Fatalf("turn %d mismatch: %+v vs %+v", i, out[i], in[i])
		}
		if out[i].UserID != "u1" {
			t.Fatalf("expected user id set, got %q", out[i].UserID)
		}
	}
}

func TestMemoryUserRepository_AbsentAndDelete(t *testing.T) {
	repo := NewMemoryUserRepository()
	ctx := context.Background()

	if _, found, err := repo.FindUser(ctx, "ghost"); err != nil || found {
		t.Fatalf("expected absent user without error, found=%v err=%v", found, err)
	}
	if err := repo.DeleteUser(ctx, "ghost"); err != nil {
		t.Fatalf("expected idempotent delete, got %v", err)
	}

	_ = repo.AppendTurns(ctx, "u1", []domain.Turn{{Role: domain.RoleUser, Message: "hi"}})
	if err := repo.DeleteUser(ctx, "u1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, found, _ := repo.FindUser(ctx, "u1"); found {
		t.Fatalf("expected user deleted")
	}
}

func TestMemoryUserRepository_ConcurrentAppendsKeepPairs(t *testing.T) {
	repo := NewMemoryUserRepository()
	ctx := context.Background()

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			msg := fmt.Sprintf("q%d", i)
			_ = repo.AppendTurns(ctx, "u1", []domain.Turn{
				{Role: domain.RoleUser, Message: msg},
				{Role: domain.RoleModel, Message: "a-" + msg},
			})
		}(i)
	}
	wg.Wait()

	turns, _, _ := repo.FindUser(ctx, "u1")
	if len(turns) != 2*n {
		t.Fatalf("expected %d turns, got %d", 2*n, len(turns))
	}
	for i := 0; i < len(turns); i += 2 {
		if turns[i].Role != domain.RoleUser || turns[i+1].Role != domain.RoleModel {
			t.Fatalf("pair %d out of order: %+v %+v", i/2, turns[i], turns[i+1])
		}
		if turns[i+1].Message != "a-"+turns[i].Message {
			t.Fatalf("pair %d interleaved: %q / %q", i/2, turns[i].Message, turns[i+1].Message)
		}
	}
}

func TestMemoryUserRepository_TimestampsNonDecreasing(t *testing.T) {
	repo := NewMemoryUserRepository()
	ctx := context.Background()
	now := time.Now().UTC()

	_ = repo.AppendTurns(ctx, "u1", []domain.Turn{
		{Role: domain.RoleUser, Message: "late", CreatedAt: now},
		{Role: domain.RoleModel, Message: "late", CreatedAt: now},
	})
	_ = repo.AppendTurns(ctx, "u1", []domain.Turn{
		{Role: domain.RoleUser, Message: "early", CreatedAt: now.Add(-time.Minute)},
		{Role: domain.RoleModel, Message: "early", CreatedAt: now.Add(-time.Second)},
	})

	turns, _, _ := repo.FindUser(ctx, "u1")
	for i := 1; i < len(turns); i++ {
		if turns[i].CreatedAt.Before(turns[i-1].CreatedAt) {
			t.Fatalf("turn %d goes back in time: %s < %s", i, turns[i].CreatedAt, turns[i-1].CreatedAt)
		}
	}
}

func TestNotBefore(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	if got := notBefore(base.Add(-time.Hour), base); !got.Equal(base) {
		t.Fatalf("expected floor, got %s", got)
	}
	if got := notBefore(base.Add(time.Hour), base); !got.Equal(base.Add(time.Hour)) {
		t.Fatalf("expected original time, got %s", got)
	}
}

func TestMemoryUserRepository_AppendAfterConcurrentDeleteNotLost(t *testing.T) {
	repo := NewMemoryUserRepository()
	ctx := context.Background()
	_ = repo.AppendTurns(ctx, "u1", []domain.Turn{{Role: domain.RoleUser, Message: "old"}})

	// Registro obtenido por un append justo antes de que corra el delete.
	stale := repo.user("u1", true)
	if err := repo.DeleteUser(ctx, "u1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.appendTo(stale, "u1", []domain.Turn{{Role: domain.RoleUser, Message: "lost"}}) {
		t.Fatalf("expected append on a deleted record to be rejected")
	}

	pair := []domain.Turn{
		{Role: domain.RoleUser, Message: "new"},
		{Role: domain.RoleModel, Message: "reply"},
	}
	if err := repo.AppendTurns(ctx, "u1", pair); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	turns, found, _ := repo.FindUser(ctx, "u1")
	if !found || len(turns) != 2 || turns[0].Message != "new" {
		t.Fatalf("expected only the post-delete pair, got found=%v %+v", found, turns)
	}
}

func TestMemoryUserRepository_ConcurrentAppendAndDelete(t *testing.T) {
	repo := NewMemoryUserRepository()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = repo.AppendTurns(ctx, "u1", []domain.Turn{
				{Role: domain.RoleUser, Message: "q"},
				{Role: domain.RoleModel, Message: "a"},
			})
		}()
		go func() {
			defer wg.Done()
			_ = repo.DeleteUser(ctx, "u1")
		}()
	}
	wg.Wait()

	if err := repo.AppendTurns(ctx, "u1", []domain.Turn{
		{Role: domain.RoleUser, Message: "final"},
		{Role: domain.RoleModel, Message: "done"},
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	turns, found, _ := repo.FindUser(ctx, "u1")
	if !found || len(turns)%2 != 0 || turns[len(turns)-1].Message != "done" {
		t.Fatalf("expected final pair visible and pairs intact, got found=%v %+v", found, turns)
	}
}
