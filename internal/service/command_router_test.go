package service

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestCommandRouterRoute(t *testing.T) {
	cases := []struct {
		name       string
		prompt     string
		wantHandle bool
		wantReply  string
		wantDelete bool
	}{
		{"my id", "/my id", true, "Your User id is: abc123", false},
		{"my id case and spaces", "  /MY ID \n", true, "Your User id is: abc123", false},
		{"delete own data", "/delete data abc123", true, "All data with user ID: abc123 has been deleted!", true},
		{"delete own data uppercase", " /DELETE DATA ABC123 ", true, "All data with user ID: abc123 has been deleted!", true},
		{"delete without id", "/delete data", true, "Please provide the user ID. You can use /my id to get your id.", false},
		{"delete other user", "/delete data someone-else", false, "", false},
		{"command inside sentence", "please /delete data abc123 now", false, "", false},
		{"my id inside sentence", "what is /my id", false, "", false},
		{"regular prompt", "what is entropy?", false, "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := newMockUserRepo()
			repo.seed("abc123", "q", "a")
			router := NewCommandRouter(repo)

			reply, handled, err := router.Route(context.Background(), tc.prompt, "abc123")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if handled != tc.wantHandle {
				t.Fatalf("expected handled=%v, got %v", tc.wantHandle, handled)
			}
			if reply != tc.wantReply {
				t.Fatalf("expected reply %q, got %q", tc.wantReply, reply)
			}
			if got := len(repo.deletes) == 1; got != tc.wantDelete {
				t.Fatalf("expected delete=%v, deletes=%v", tc.wantDelete, repo.deletes)
			}
			_, found, _ := repo.FindUser(context.Background(), "abc123")
			if found == tc.wantDelete {
				t.Fatalf("expected history present=%v, got %v", !tc.wantDelete, found)
			}
		})
	}
}

func TestCommandRouterRoute_DeleteIncludesID(t *testing.T) {
	router := NewCommandRouter(newMockUserRepo())
	reply, handled, err := router.Route(context.Background(), "/delete data abc123", "abc123")
	if err != nil || !handled {
		t.Fatalf("expected handled without error, handled=%v err=%v", handled, err)
	}
	if !strings.Contains(reply, "abc123") {
		t.Fatalf("expected confirmation to mention id, got %q", reply)
	}
}

func TestCommandRouterRoute_DeleteStorageError(t *testing.T) {
	repo := newMockUserRepo()
	repo.deleteErr = errors.New("db down")
	router := NewCommandRouter(repo)

	_, handled, err := router.Route(context.Background(), "/delete data abc123", "abc123")
	if !handled {
		t.Fatalf("expected command to be recognized")
	}
	if !errors.Is(err, ErrStorage) {
		t.Fatalf("expected ErrStorage, got %v", err)
	}
}
