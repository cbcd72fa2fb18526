package domain

import (
	"testing"
	"time"
)

func TestClampOrder(t *testing.T) {
	tests := []struct {
		name      string
		order     int
		columnLen int
		want      int
	}{
		{name: "negative becomes zero", order: -3, columnLen: 5, want: 0},
		{name: "past end appends", order: 9, columnLen: 5, want: 5},
		{name: "in range unchanged", order: 2, columnLen: 5, want: 2},
		{name: "empty column", order: 4, columnLen: 0, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClampOrder(tt.order, tt.columnLen); got != tt.want {
				t.Fatalf("ClampOrder(%d, %d) = %d, want %d", tt.order, tt.columnLen, got, tt.want)
			}
		})
	}
}

func TestCrossColumnOrdersOpensGapAtInsertion(t *testing.T) {
	// Column holds A(0), B(1); card C arrives at position 0. A and B must
	// shift to 1 and 2, leaving 0 free for C.
	got := CrossColumnOrders([]string{"A", "B"}, 0)

	want := []OrderAssignment{{ID: "A", Order: 1}, {ID: "B", Order: 2}}
	assertAssignments(t, got, want)
}

func TestCrossColumnOrdersMiddleInsertion(t *testing.T) {
	got := CrossColumnOrders([]string{"A", "B", "C"}, 1)

	want := []OrderAssignment{{ID: "A", Order: 0}, {ID: "B", Order: 2}, {ID: "C", Order: 3}}
	assertAssignments(t, got, want)
}

func TestCrossColumnOrdersAppend(t *testing.T) {
	got := CrossColumnOrders([]string{"A", "B"}, 2)

	want := []OrderAssignment{{ID: "A", Order: 0}, {ID: "B", Order: 1}}
	assertAssignments(t, got, want)
}

func TestCrossColumnOrdersEmptyColumn(t *testing.T) {
	if got := CrossColumnOrders(nil, 0); len(got) != 0 {
		t.Fatalf("expected no assignments for empty column, got %v", got)
	}
}

func TestSameColumnShiftMoveDown(t *testing.T) {
	column := []OrderAssignment{
		{ID: "A", Order: 0},
		{ID: "B", Order: 1},
		{ID: "C", Order: 2},
		{ID: "D", Order: 3},
	}

	// A moves from 0 to 2: B and C decrement, D untouched.
	got := SameColumnShift(column, "A", 2)

	want := []OrderAssignment{{ID: "B", Order: 0}, {ID: "C", Order: 1}}
	assertAssignments(t, got, want)
}

func TestSameColumnShiftMoveUp(t *testing.T) {
	column := []OrderAssignment{
		{ID: "A", Order: 0},
		{ID: "B", Order: 1},
		{ID: "C", Order: 2},
		{ID: "D", Order: 3},
	}

	// D moves from 3 to 1: B and C increment, A untouched.
	got := SameColumnShift(column, "D", 1)

	want := []OrderAssignment{{ID: "B", Order: 2}, {ID: "C", Order: 3}}
	assertAssignments(t, got, want)
}

func TestSameColumnShiftNoOp(t *testing.T) {
	column := []OrderAssignment{{ID: "A", Order: 0}, {ID: "B", Order: 1}}
	if got := SameColumnShift(column, "B", 1); got != nil {
		t.Fatalf("expected nil for no-op move, got %v", got)
	}
}

func TestSameColumnShiftUnknownItem(t *testing.T) {
	column := []OrderAssignment{{ID: "A", Order: 0}}
	if got := SameColumnShift(column, "missing", 0); got != nil {
		t.Fatalf("expected nil for unknown item, got %v", got)
	}
}

func TestSameColumnShiftKeepsColumnContiguous(t *testing.T) {
	column := []OrderAssignment{
		{ID: "A", Order: 0},
		{ID: "B", Order: 1},
		{ID: "C", Order: 2},
		{ID: "D", Order: 3},
		{ID: "E", Order: 4},
	}

	for moved := range column {
		for newOrder := 0; newOrder < len(column); newOrder++ {
			movedID := column[moved].ID
			shifts := SameColumnShift(column, movedID, newOrder)

			final := map[string]int{movedID: newOrder}
			for _, it := range column {
				if it.ID != movedID {
					final[it.ID] = it.Order
				}
			}
			for _, s := range shifts {
				final[s.ID] = s.Order
			}

			seen := make(map[int]string, len(final))
			for id, ord := range final {
				if prev, dup := seen[ord]; dup {
					t.Fatalf("move %s to %d: order %d held by both %s and %s", movedID, newOrder, ord, prev, id)
				}
				seen[ord] = id
			}
			for ord := 0; ord < len(column); ord++ {
				if _, ok := seen[ord]; !ok {
					t.Fatalf("move %s to %d: order %d missing, column not contiguous", movedID, newOrder, ord)
				}
			}
		}
	}
}

func TestStampCompletion(t *testing.T) {
	now := time.Now().UTC()
	earlier := now.Add(-time.Hour)

	t.Run("entering done stamps now", func(t *testing.T) {
		got := StampCompletion(StatusInReview, StatusDone, nil, now)
		if got == nil || !got.Equal(now) {
			t.Fatalf("expected %v, got %v", now, got)
		}
	})

	t.Run("staying in done preserves stamp", func(t *testing.T) {
		got := StampCompletion(StatusDone, StatusDone, &earlier, now)
		if got == nil || !got.Equal(earlier) {
			t.Fatalf("expected %v, got %v", earlier, got)
		}
	})

	t.Run("leaving done clears stamp", func(t *testing.T) {
		if got := StampCompletion(StatusDone, StatusTodo, &earlier, now); got != nil {
			t.Fatalf("expected nil, got %v", got)
		}
	})

	t.Run("non-done to non-done stays clear", func(t *testing.T) {
		if got := StampCompletion(StatusTodo, StatusInProgress, nil, now); got != nil {
			t.Fatalf("expected nil, got %v", got)
		}
	})
}

func TestBoardStatusValid(t *testing.T) {
	for _, s := range []BoardStatus{StatusTodo, StatusInProgress, StatusInReview, StatusDone} {
		if !s.Valid() {
			t.Errorf("%q should be valid", s)
		}
	}
	if BoardStatus("archived").Valid() {
		t.Error("archived should not be valid")
	}
}

func assertAssignments(t *testing.T, got, want []OrderAssignment) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d assignments %v, want %d %v", len(got), got, len(want), want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("assignment %d = %v, want %v", i, got[i], want[i])
		}
	}
}
