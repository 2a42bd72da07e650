package illustration

import (
	"testing"

	"github.com/shouni/go-picture-book/pkg/domain"
)

func TestCache_Transitions(t *testing.T) {
	c := NewCache()

	if got := c.State(0); got != StateAbsent {
		t.Fatalf("State(0) = %v, want absent", got)
	}
	if !c.Claim(0) {
		t.Fatal("Claim on absent entry should succeed")
	}
	if c.Claim(0) {
		t.Fatal("Claim on pending entry should fail")
	}
	if _, ok := c.Get(0); ok {
		t.Fatal("Get should not return pending entry")
	}

	if !c.Store(0, "data:image/png;base64,AAAA") {
		t.Fatal("Store on pending entry should succeed")
	}
	if c.Store(0, "data:image/png;base64,BBBB") {
		t.Fatal("second Store should not overwrite present entry")
	}
	img, ok := c.Get(0)
	if !ok || img != "data:image/png;base64,AAAA" {
		t.Errorf("Get(0) = %q, %v", img, ok)
	}
	if c.Claim(0) {
		t.Fatal("Claim on present entry should fail")
	}
}

func TestCache_Release(t *testing.T) {
	c := NewCache()
	c.Claim(1)
	c.Release(1)
	if got := c.State(1); got != StateAbsent {
		t.Fatalf("State(1) = %v, want absent", got)
	}

	c.Claim(2)
	c.Store(2, "x")
	c.Release(2)
	if got := c.State(2); got != StatePresent {
		t.Errorf("Release must not drop present entries, got %v", got)
	}
}

func TestCache_ReplaceOnlyTouchesOneIndex(t *testing.T) {
	c := NewCache()
	for i, img := range []domain.Image{"a", "b", "c"} {
		c.Claim(i)
		c.Store(i, img)
	}

	if !c.Replace(2, "edited") {
		t.Fatal("Replace on present entry should succeed")
	}
	if c.Replace(5, "nope") {
		t.Fatal("Replace on absent entry should fail")
	}

	want := map[int]domain.Image{0: "a", 1: "b", 2: "edited"}
	got := c.Snapshot()
	if len(got) != len(want) {
		t.Fatalf("Snapshot len = %d, want %d", len(got), len(want))
	}
	for i, img := range want {
		if got[i] != img {
			t.Errorf("Snapshot[%d] = %q, want %q", i, got[i], img)
		}
	}
	if c.State(5) != StateAbsent {
		t.Error("Replace must not create entries")
	}
}

func TestCache_IndicesAndLen(t *testing.T) {
	c := NewCache()
	c.Claim(3)
	c.Store(3, "c")
	c.Claim(1)
	c.Store(1, "a")
	c.Claim(2) // pending

	if got := c.Len(); got != 3 {
		t.Errorf("Len() = %d, want 3", got)
	}
	got := c.Indices()
	if len(got) != 2 || got[0] != 1 || got[1] != 3 {
		t.Errorf("Indices() = %v, want [1 3]", got)
	}
}

func TestState_String(t *testing.T) {
	tests := map[State]string{
		StateAbsent:  "absent",
		StatePending: "pending",
		StatePresent: "present",
	}
	for s, want := range tests {
		if got := s.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", s, got, want)
		}
	}
}
