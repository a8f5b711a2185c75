package chunk

import "testing"

func TestDirtySetDedupesAndPreservesOrder(t *testing.T) {
	s := NewDirtySet(4)
	s.Insert(Pos{0, 0})
	s.Insert(Pos{1, 0})
	s.Insert(Pos{0, 0})
	s.Insert(Pos{0, 1})

	got := s.Snapshot()
	want := []Pos{{0, 0}, {1, 0}, {0, 1}}
	if len(got) != len(want) {
		t.Fatalf("Snapshot() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Snapshot()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestDirtySetClear(t *testing.T) {
	s := NewDirtySet(2)
	s.Insert(Pos{5, 5})
	s.Clear()
	if got := s.Snapshot(); len(got) != 0 {
		t.Fatalf("Snapshot() after Clear() = %v, want empty", got)
	}
	s.Insert(Pos{5, 5})
	if got := s.Snapshot(); len(got) != 1 {
		t.Fatalf("Snapshot() after reinsert = %v, want 1 entry", got)
	}
}
