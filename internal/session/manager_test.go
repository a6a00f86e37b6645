package session

import (
	"testing"
	"time"
)

func TestManager_CreateGet(t *testing.T) {
	m := NewManager(time.Hour, "groq", "")
	s := m.Create()
	if s.ID() == "" {
		t.Fatal("empty session id")
	}

	got, ok := m.Get(s.ID())
	if !ok || got != s {
		t.Fatal("created session not found")
	}
	if _, ok := m.Get("nope"); ok {
		t.Error("unknown id found")
	}

	again, created := m.GetOrCreate(s.ID())
	if created || again != s {
		t.Error("GetOrCreate made a new session for a live id")
	}
	other, created := m.GetOrCreate("")
	if !created || other.ID() == s.ID() {
		t.Error("GetOrCreate with empty id should create")
	}
}

func TestManager_DefaultCredentials(t *testing.T) {
	m := NewManager(time.Hour, "openai", "sk-server")
	provider, key := m.Create().Credentials()
	if provider != "openai" || key != "sk-server" {
		t.Errorf("credentials = %q %q", provider, key)
	}
}

func TestManager_Expiry(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	m := NewManager(time.Hour, "groq", "")
	m.now = func() time.Time { return now }

	a := m.Create()
	b := m.Create()

	now = now.Add(40 * time.Minute)
	if _, ok := m.Get(a.ID()); !ok {
		t.Fatal("session expired early")
	}

	now = now.Add(30 * time.Minute)
	// b idle 70m, a idle 30m.
	if n := m.Sweep(); n != 1 {
		t.Errorf("swept %d, want 1", n)
	}
	if _, ok := m.Get(b.ID()); ok {
		t.Error("expired session still served")
	}
	if m.Len() != 1 {
		t.Errorf("len = %d", m.Len())
	}

	now = now.Add(2 * time.Hour)
	if _, ok := m.Get(a.ID()); ok {
		t.Error("expired session served by Get")
	}
	if m.Len() != 0 {
		t.Errorf("Get did not drop the expired session")
	}
}
