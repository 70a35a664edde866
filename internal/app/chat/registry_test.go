package chat

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
)

// mockHandle is a Handle backed by an in-memory payload log, standing in for
// a websocket session.
type mockHandle struct {
	key string

	mu       sync.Mutex
	payloads [][]byte
	failing  bool
	closed   bool
	reason   string
}

func newMockHandle(key string) *mockHandle {
	return &mockHandle{key: key}
}

func (m *mockHandle) Key() string { return m.key }

func (m *mockHandle) Deliver(payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failing {
		return errors.New("delivery refused")
	}

	copied := make([]byte, len(payload))
	copy(copied, payload)
	m.payloads = append(m.payloads, copied)
	return nil
}

func (m *mockHandle) Close(reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.reason = reason
}

// received decodes every delivered payload as a rendered event.
func (m *mockHandle) received(t *testing.T) []renderedEvent {
	t.Helper()

	m.mu.Lock()
	defer m.mu.Unlock()

	events := make([]renderedEvent, 0, len(m.payloads))
	for _, payload := range m.payloads {
		var ev renderedEvent
		if err := json.Unmarshal(payload, &ev); err != nil {
			t.Fatalf("Failed to decode delivered payload %q: %v", payload, err)
		}
		events = append(events, ev)
	}
	return events
}

func (m *mockHandle) deliveredCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.payloads)
}

func TestRegistry_Admit(t *testing.T) {
	reg := NewRegistry()

	conn, admitErr := reg.Admit("client-a", "Red Dog 3", newMockHandle("h1"))
	if admitErr != nil {
		t.Fatalf("Admit failed: %v", admitErr)
	}
	if conn.ClientID != "client-a" || conn.Username != "Red Dog 3" {
		t.Errorf("Unexpected connection identity: %+v", conn)
	}
	if reg.Len() != 1 {
		t.Errorf("Expected registry size 1, got %d", reg.Len())
	}

	username, ok := reg.LookupUsername("client-a")
	if !ok || username != "Red Dog 3" {
		t.Errorf("LookupUsername = (%q, %v), want (Red Dog 3, true)", username, ok)
	}
}

func TestRegistry_DuplicateClientRejected(t *testing.T) {
	reg := NewRegistry()

	if _, admitErr := reg.Admit("client-a", "Red Dog 3", newMockHandle("h1")); admitErr != nil {
		t.Fatalf("First admit failed: %v", admitErr)
	}

	_, admitErr := reg.Admit("client-a", "Blue Cat 7", newMockHandle("h2"))
	if admitErr == nil {
		t.Fatal("Expected duplicate admission to fail")
	}

	// The registry must be unchanged: still one connection, original username.
	if reg.Len() != 1 {
		t.Errorf("Expected registry size 1 after rejected admit, got %d", reg.Len())
	}
	if username, _ := reg.LookupUsername("client-a"); username != "Red Dog 3" {
		t.Errorf("Existing connection identity changed: got %q", username)
	}
}

func TestRegistry_RemoveIdempotent(t *testing.T) {
	reg := NewRegistry()
	handle := newMockHandle("h1")

	if _, admitErr := reg.Admit("client-a", "Red Dog 3", handle); admitErr != nil {
		t.Fatalf("Admit failed: %v", admitErr)
	}

	reg.Remove(handle)

	if reg.Len() != 0 {
		t.Errorf("Expected empty registry after Remove, got %d", reg.Len())
	}
	if _, ok := reg.LookupUsername("client-a"); ok {
		t.Error("Expected LookupUsername to miss after Remove")
	}
	for _, conn := range reg.Snapshot() {
		if conn.Handle().Key() == "h1" {
			t.Error("Snapshot still contains removed handle")
		}
	}

	// Removing again must be a no-op.
	reg.Remove(handle)
	if reg.Len() != 0 {
		t.Errorf("Second Remove changed registry size: %d", reg.Len())
	}
}

func TestRegistry_SnapshotIsCopy(t *testing.T) {
	reg := NewRegistry()

	handleA := newMockHandle("h1")
	if _, admitErr := reg.Admit("client-a", "Red Dog 3", handleA); admitErr != nil {
		t.Fatalf("Admit failed: %v", admitErr)
	}

	snapshot := reg.Snapshot()
	reg.Remove(handleA)

	if len(snapshot) != 1 {
		t.Errorf("Snapshot taken before Remove should keep its entries, got %d", len(snapshot))
	}
	if reg.Len() != 0 {
		t.Errorf("Registry should be empty after Remove, got %d", reg.Len())
	}
}

func TestRegistry_Usernames(t *testing.T) {
	reg := NewRegistry()

	if _, admitErr := reg.Admit("client-a", "Red Dog 3", newMockHandle("h1")); admitErr != nil {
		t.Fatalf("Admit failed: %v", admitErr)
	}
	if _, admitErr := reg.Admit("client-b", "Blue Cat 7", newMockHandle("h2")); admitErr != nil {
		t.Fatalf("Admit failed: %v", admitErr)
	}

	names := reg.Usernames()
	if len(names) != 2 {
		t.Fatalf("Expected 2 live usernames, got %d", len(names))
	}
	if _, ok := names["Red Dog 3"]; !ok {
		t.Error("Missing username Red Dog 3")
	}
	if _, ok := names["Blue Cat 7"]; !ok {
		t.Error("Missing username Blue Cat 7")
	}
}

func TestRegistry_ConcurrentAdmitRemove(t *testing.T) {
	reg := NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()

			handle := newMockHandle(fmt.Sprintf("h%d", n))
			clientID := fmt.Sprintf("client-%d", n)

			if _, admitErr := reg.Admit(clientID, fmt.Sprintf("User %d", n), handle); admitErr != nil {
				t.Errorf("Admit %d failed: %v", n, admitErr)
				return
			}

			reg.Snapshot()

			if n%2 == 0 {
				reg.Remove(handle)
			}
		}(i)
	}
	wg.Wait()

	if reg.Len() != 25 {
		t.Errorf("Expected 25 live connections after concurrent churn, got %d", reg.Len())
	}
}

func TestRegistry_CloseAll(t *testing.T) {
	reg := NewRegistry()

	handleA := newMockHandle("h1")
	handleB := newMockHandle("h2")
	if _, admitErr := reg.Admit("client-a", "Red Dog 3", handleA); admitErr != nil {
		t.Fatalf("Admit failed: %v", admitErr)
	}
	if _, admitErr := reg.Admit("client-b", "Blue Cat 7", handleB); admitErr != nil {
		t.Fatalf("Admit failed: %v", admitErr)
	}

	reg.CloseAll("shutdown")

	if !handleA.closed || !handleB.closed {
		t.Error("Expected all handles closed")
	}
	if handleA.reason != "shutdown" {
		t.Errorf("Unexpected close reason: %q", handleA.reason)
	}
}
