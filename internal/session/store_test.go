package session

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rajavardhan19/NEXO.AI-WEBSITE-BUILDER-BACKEND/internal/engine"
)

func TestStore_HistoryRoundTrip(t *testing.T) {
	store := NewStore()

	if got := store.History("p1"); len(got) != 0 {
		t.Errorf("fresh project history = %d turns, want 0", len(got))
	}

	turns := []engine.Turn{
		engine.UserTurn("build me a site"),
		engine.ModelTurn("done"),
	}
	store.SetHistory("p1", turns)

	got := store.History("p1")
	if len(got) != 2 {
		t.Fatalf("History() = %d turns, want 2", len(got))
	}

	// Mutating the returned slice must not affect the store.
	got[0] = engine.UserTurn("tampered")
	if store.History("p1")[0].Content != "build me a site" {
		t.Error("History() must return a copy")
	}

	store.DeleteHistory("p1")
	if got := store.History("p1"); len(got) != 0 {
		t.Errorf("history after delete = %d turns, want 0", len(got))
	}
}

func TestStore_ChatEviction(t *testing.T) {
	store := NewStore()

	for i := 0; i < MaxChatEntries+1; i++ {
		store.AppendChat("s1", engine.RoleUser, fmt.Sprintf("message %d", i))
	}

	entries := store.Chat("s1")
	if len(entries) != MaxChatEntries {
		t.Fatalf("Chat() = %d entries, want %d", len(entries), MaxChatEntries)
	}

	// Oldest entry evicted, newest kept.
	if entries[0].Text != "message 1" {
		t.Errorf("entries[0] = %q, want %q", entries[0].Text, "message 1")
	}
	if last := entries[len(entries)-1].Text; last != fmt.Sprintf("message %d", MaxChatEntries) {
		t.Errorf("last entry = %q", last)
	}
}

func TestStore_FormatChat(t *testing.T) {
	store := NewStore()

	if store.FormatChat("none") != "" {
		t.Error("empty session must format to empty string")
	}

	store.AppendChat("s1", engine.RoleUser, "hello")
	store.AppendChat("s1", engine.RoleModel, "hi there")

	transcript := store.FormatChat("s1")
	want := "User: hello\nAssistant: hi there\n"
	if transcript != want {
		t.Errorf("FormatChat() = %q, want %q", transcript, want)
	}
	if !strings.HasSuffix(transcript, "\n") {
		t.Error("transcript must end with a newline")
	}
}

func TestStore_LockProjectExcludesSameProject(t *testing.T) {
	store := NewStore()

	unlock := store.LockProject("p1")

	acquired := make(chan struct{})
	go func() {
		u := store.LockProject("p1")
		close(acquired)
		u()
	}()

	time.Sleep(20 * time.Millisecond)
	select {
	case <-acquired:
		t.Fatal("second LockProject(p1) acquired while first still held")
	default:
	}

	// A different project is not serialized behind p1.
	done := make(chan struct{})
	go func() {
		u := store.LockProject("p2")
		u()
		close(done)
	}()
	<-done

	unlock()
	<-acquired
}

func TestStore_ConcurrentAppendChat(t *testing.T) {
	store := NewStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			store.AppendChat("s1", engine.RoleUser, fmt.Sprintf("m%d", n))
		}(i)
	}
	wg.Wait()

	if got := len(store.Chat("s1")); got != MaxChatEntries {
		t.Errorf("Chat() = %d entries, want %d", got, MaxChatEntries)
	}
}
