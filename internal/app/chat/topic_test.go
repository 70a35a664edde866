package chat

import (
	"fmt"
	"sync"
	"testing"
)

func subscribedConn(t *testing.T, reg *Registry, topic *Topic, clientID, username, handleKey string) (*Connection, *mockHandle) {
	t.Helper()

	handle := newMockHandle(handleKey)
	conn, admitErr := reg.Admit(clientID, username, handle)
	if admitErr != nil {
		t.Fatalf("Admit %s failed: %v", clientID, admitErr)
	}
	topic.Subscribe(conn)
	return conn, handle
}

func TestTopic_SubscribeUnsubscribe(t *testing.T) {
	reg := NewRegistry()
	topic := NewTopic("lobby")

	connA, _ := subscribedConn(t, reg, topic, "client-a", "Red Dog 3", "h1")
	_, _ = subscribedConn(t, reg, topic, "client-b", "Blue Cat 7", "h2")

	if topic.Len() != 2 {
		t.Fatalf("Expected 2 members, got %d", topic.Len())
	}

	topic.Unsubscribe(connA)

	members := topic.Members()
	if len(members) != 1 {
		t.Fatalf("Expected 1 member after unsubscribe, got %d", len(members))
	}
	if members[0].Username != "Blue Cat 7" {
		t.Errorf("Unexpected remaining member: %q", members[0].Username)
	}

	// Unsubscribing a non-member is a no-op.
	topic.Unsubscribe(connA)
	if topic.Len() != 1 {
		t.Errorf("Repeated unsubscribe changed membership: %d", topic.Len())
	}
}

func TestTopic_MembersIsSnapshot(t *testing.T) {
	reg := NewRegistry()
	topic := NewTopic("lobby")

	connA, _ := subscribedConn(t, reg, topic, "client-a", "Red Dog 3", "h1")

	members := topic.Members()
	topic.Unsubscribe(connA)

	if len(members) != 1 {
		t.Errorf("Snapshot should keep its entries after mutation, got %d", len(members))
	}
}

func TestTopic_ConcurrentMembership(t *testing.T) {
	reg := NewRegistry()
	topic := NewTopic("lobby")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()

			handle := newMockHandle(fmt.Sprintf("h%d", n))
			conn, admitErr := reg.Admit(fmt.Sprintf("client-%d", n), fmt.Sprintf("User %d", n), handle)
			if admitErr != nil {
				t.Errorf("Admit %d failed: %v", n, admitErr)
				return
			}

			topic.Subscribe(conn)
			topic.Members()

			if n%2 == 0 {
				topic.Unsubscribe(conn)
			}
		}(i)
	}
	wg.Wait()

	if topic.Len() != 25 {
		t.Errorf("Expected 25 members after concurrent churn, got %d", topic.Len())
	}
}
