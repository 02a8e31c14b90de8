package orderedset

import (
	"testing"
)

func TestSet_InsertionOrder(t *testing.T) {
	s := New("c", "a", "b")
	got := s.Values()
	want := []string{"c", "a", "b"}
	if len(got) != len(want) {
		t.Fatalf("Values() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Values()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSet_AddDuplicateKeepsPosition(t *testing.T) {
	s := New("a", "b", "c")
	s.Add("a")
	if got := s.Values()[0]; got != "a" {
		t.Errorf("duplicate Add moved element: first = %q, want %q", got, "a")
	}
	if s.Len() != 3 {
		t.Errorf("Len() = %d, want 3", s.Len())
	}
}

func TestSet_Remove(t *testing.T) {
	s := New(1, 2, 3, 4)
	if !s.Remove(2) {
		t.Fatal("Remove(2) = false, want true")
	}
	if s.Remove(2) {
		t.Error("second Remove(2) = true, want false")
	}
	got := s.Values()
	want := []int{1, 3, 4}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Values() = %v, want %v", got, want)
			break
		}
	}

	// Removing head and tail must keep the list linked.
	s.Remove(1)
	s.Remove(4)
	if s.Len() != 1 || !s.Contains(3) {
		t.Errorf("after removing ends: Values() = %v, want [3]", s.Values())
	}
	s.Add(5)
	got = s.Values()
	if len(got) != 2 || got[0] != 3 || got[1] != 5 {
		t.Errorf("Add after Remove: Values() = %v, want [3 5]", got)
	}
}

func TestSet_DifferenceUpdate(t *testing.T) {
	s := New("a", "b", "c", "d")
	s.DifferenceUpdate([]string{"b", "d", "zz"})
	got := s.Values()
	if len(got) != 2 || got[0] != "a" || got[1] != "c" {
		t.Errorf("Values() = %v, want [a c]", got)
	}
}

func TestSet_CloneIndependent(t *testing.T) {
	s := New(1, 2, 3)
	c := s.Clone()
	c.Remove(2)
	if !s.Contains(2) {
		t.Error("Clone is not independent: removal leaked into original")
	}
	if c.Len() != 2 {
		t.Errorf("clone Len() = %d, want 2", c.Len())
	}
}

func TestSet_Clear(t *testing.T) {
	s := New(1, 2)
	s.Clear()
	if s.Len() != 0 || len(s.Values()) != 0 {
		t.Errorf("Clear left members: %v", s.Values())
	}
	s.Add(7)
	if !s.Contains(7) || s.Len() != 1 {
		t.Error("Add after Clear failed")
	}
}
