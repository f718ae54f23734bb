package ttlstore

import (
	"fmt"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
)

func TestGetSetRoundtrip(t *testing.T) {
	s := New(time.Minute, 10)
	s.Set("k", []byte("v"))

	got, ok := s.Get("k")
	if !ok || string(got) != "v" {
		t.Fatalf("Get = %q, %v; want v, true", got, ok)
	}
	if _, ok := s.Get("absent"); ok {
		t.Fatal("Get(absent) reported a hit")
	}
}

func TestTTLExpiry(t *testing.T) {
	clock := clockwork.NewFakeClock()
	s := New(30*time.Minute, 10, WithClock(clock))

	s.Set("k", []byte("v"))
	clock.Advance(29 * time.Minute)
	if _, ok := s.Get("k"); !ok {
		t.Fatal("entry expired before TTL")
	}
	clock.Advance(time.Minute)
	if _, ok := s.Get("k"); ok {
		t.Fatal("entry survived past TTL")
	}
}

func TestEvictsOldestInsertedFirst(t *testing.T) {
	s := New(time.Hour, 3)
	for i := 0; i < 3; i++ {
		s.Set(fmt.Sprintf("k%d", i), []byte("v"))
	}

	// reading k0 must not protect it: eviction is insertion order, not LRU
	if _, ok := s.Get("k0"); !ok {
		t.Fatal("k0 missing before eviction")
	}
	s.Set("k3", []byte("v"))

	if _, ok := s.Get("k0"); ok {
		t.Fatal("oldest-inserted k0 survived eviction")
	}
	for _, k := range []string{"k1", "k2", "k3"} {
		if _, ok := s.Get(k); !ok {
			t.Fatalf("%s evicted out of order", k)
		}
	}
}

func TestResetSameKeyDoesNotEvictOthers(t *testing.T) {
	s := New(time.Hour, 2)
	s.Set("a", []byte("1"))
	s.Set("b", []byte("1"))
	s.Set("a", []byte("2"))

	if got, ok := s.Get("a"); !ok || string(got) != "2" {
		t.Fatalf("Get(a) = %q, %v; want 2, true", got, ok)
	}
	if _, ok := s.Get("b"); !ok {
		t.Fatal("b evicted by a same-key overwrite")
	}
	if s.Len() != 2 {
		t.Fatalf("Len = %d, want 2", s.Len())
	}
}

func TestUnboundedWhenMaxZero(t *testing.T) {
	s := New(time.Hour, 0)
	for i := 0; i < 100; i++ {
		s.Set(fmt.Sprintf("k%d", i), []byte("v"))
	}
	if s.Len() != 100 {
		t.Fatalf("Len = %d, want 100", s.Len())
	}
}
