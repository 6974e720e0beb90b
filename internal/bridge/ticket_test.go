package bridge

import (
	"testing"
	"time"
)

func TestRegistryOpenClose(t *testing.T) {
	r := NewRegistry()

	if err := r.Open(Ticket{ClientID: 777, ManagerID: 111, Topic: "т", SLAHours: 6}); err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := r.Open(Ticket{ClientID: 777, ManagerID: 222}); err == nil {
		t.Fatal("second open for the same client must fail")
	}

	got, ok := r.Get(777)
	if !ok || got.ManagerID != 111 || got.SLAHours != 6 {
		t.Errorf("get = (%+v, %v)", got, ok)
	}
	if got.OpenedAt.IsZero() {
		t.Error("open should stamp the ticket")
	}

	closed, ok := r.Close(777)
	if !ok || closed.ManagerID != 111 {
		t.Errorf("close = (%+v, %v)", closed, ok)
	}
	if _, ok := r.Get(777); ok {
		t.Error("ticket still open after close")
	}
	if _, ok := r.Close(777); ok {
		t.Error("double close should report no ticket")
	}
}

func TestRegistryBindingsSurviveClose(t *testing.T) {
	r := NewRegistry()
	if err := r.Open(Ticket{ClientID: 777, ManagerID: 111}); err != nil {
		t.Fatalf("open: %v", err)
	}
	r.Bind(111, 5, 777)
	r.Close(777)

	id, ok := r.Resolve(111, 5)
	if !ok || id != 777 {
		t.Errorf("resolve after close = (%d, %v), want (777, true)", id, ok)
	}
}

func TestRegistryResolveScopedToManager(t *testing.T) {
	r := NewRegistry()
	r.Bind(111, 5, 777)

	if _, ok := r.Resolve(222, 5); ok {
		t.Error("binding leaked into another manager's chat")
	}
	if _, ok := r.Resolve(111, 6); ok {
		t.Error("binding matched a different message")
	}
}

func TestOpenTicketsOldestFirst(t *testing.T) {
	r := NewRegistry()
	base := time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC)
	r.Open(Ticket{ClientID: 2, ManagerID: 111, OpenedAt: base.Add(time.Hour)})
	r.Open(Ticket{ClientID: 1, ManagerID: 111, OpenedAt: base})
	r.Open(Ticket{ClientID: 3, ManagerID: 222, OpenedAt: base.Add(2 * time.Hour)})

	got := r.OpenTickets()
	if len(got) != 3 {
		t.Fatalf("len = %d", len(got))
	}
	for i, want := range []int64{1, 2, 3} {
		if got[i].ClientID != want {
			t.Errorf("position %d: client %d, want %d", i, got[i].ClientID, want)
		}
	}
}
