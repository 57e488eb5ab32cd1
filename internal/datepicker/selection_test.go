package datepicker

import (
	"reflect"
	"testing"
	"time"
)

func day(y int, m time.Month, d int) CalendarDay {
	return CalendarDay{Year: y, Month: m, Day: d}
}

func TestNewSelectionSet_DropsDuplicates(t *testing.T) {
	s := NewSelectionSet("2024-01-02", "2024-01-01", "2024-01-02")
	want := []string{"2024-01-02", "2024-01-01"}
	if !reflect.DeepEqual(s.Keys(), want) {
		t.Errorf("expected %v, got %v", want, s.Keys())
	}
}

func TestSelectionSet_ZeroValue(t *testing.T) {
	var s SelectionSet
	if s.Len() != 0 || s.Has("2024-01-01") {
		t.Fatal("expected empty zero value")
	}
	s = s.ToggleOne(day(2024, time.January, 1))
	if !s.Has("2024-01-01") {
		t.Error("expected toggle on zero value to add the key")
	}
}

func TestToggleOne_AddsThenRemoves(t *testing.T) {
	base := NewSelectionSet("2024-01-10")
	d := day(2024, time.January, 11)

	added := base.ToggleOne(d)
	if !added.Has("2024-01-11") {
		t.Fatal("expected day to be added")
	}
	if base.Has("2024-01-11") {
		t.Fatal("expected receiver to be unchanged")
	}
	if keys := added.Keys(); keys[len(keys)-1] != "2024-01-11" {
		t.Errorf("expected new key appended, got %v", keys)
	}

	removed := added.ToggleOne(d)
	if !removed.Equal(base) {
		t.Errorf("expected toggle to be its own inverse, got %v", removed.Keys())
	}
}

func TestToggleOne_SelfInverseOnSelectedDay(t *testing.T) {
	base := NewSelectionSet("2024-01-10", "2024-01-11")
	d := day(2024, time.January, 10)
	round := base.ToggleOne(d).ToggleOne(d)
	if !round.Equal(base) {
		t.Errorf("expected %v, got %v", base.Keys(), round.Keys())
	}
	// The re-added key goes to the end; only rendering sees the order.
	if keys := round.Keys(); keys[len(keys)-1] != "2024-01-10" {
		t.Errorf("expected re-added key last, got %v", keys)
	}
}

func TestEqual_IgnoresOrder(t *testing.T) {
	tests := []struct {
		name string
		a, b SelectionSet
		want bool
	}{
		{"same order", NewSelectionSet("2024-01-01", "2024-01-02"), NewSelectionSet("2024-01-01", "2024-01-02"), true},
		{"swapped", NewSelectionSet("2024-01-01", "2024-01-02"), NewSelectionSet("2024-01-02", "2024-01-01"), true},
		{"both empty", SelectionSet{}, NewSelectionSet(), true},
		{"different key", NewSelectionSet("2024-01-01"), NewSelectionSet("2024-01-03"), false},
		{"subset", NewSelectionSet("2024-01-01"), NewSelectionSet("2024-01-01", "2024-01-02"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Equal(tt.b); got != tt.want {
				t.Errorf("Equal = %v, want %v", got, tt.want)
			}
			if got := tt.b.Equal(tt.a); got != tt.want {
				t.Errorf("reversed Equal = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestApplyRange_Add(t *testing.T) {
	base := NewSelectionSet("2024-03-02")
	days := []CalendarDay{day(2024, time.March, 1), day(2024, time.March, 2), day(2024, time.March, 3)}

	got := base.ApplyRange(days, ModeAdd)
	want := []string{"2024-03-02", "2024-03-01", "2024-03-03"}
	if !reflect.DeepEqual(got.Keys(), want) {
		t.Errorf("expected %v, got %v", want, got.Keys())
	}
}

func TestApplyRange_Remove(t *testing.T) {
	base := NewSelectionSet("2024-03-01", "2024-03-05", "2024-03-02")
	days := []CalendarDay{day(2024, time.March, 1), day(2024, time.March, 2), day(2024, time.March, 9)}

	got := base.ApplyRange(days, ModeRemove)
	if !reflect.DeepEqual(got.Keys(), []string{"2024-03-05"}) {
		t.Errorf("expected only 2024-03-05 to remain, got %v", got.Keys())
	}
}

func TestApplyRange_Idempotent(t *testing.T) {
	base := NewSelectionSet("2024-03-02", "2024-04-01")
	days := []CalendarDay{day(2024, time.March, 1), day(2024, time.March, 2), day(2024, time.March, 3)}

	for _, mode := range []Mode{ModeAdd, ModeRemove} {
		once := base.ApplyRange(days, mode)
		twice := once.ApplyRange(days, mode)
		if !once.Equal(twice) {
			t.Errorf("%s: expected idempotence, got %v then %v", mode, once.Keys(), twice.Keys())
		}
	}
}

func TestApplyRange_EmptyRange(t *testing.T) {
	base := NewSelectionSet("2024-03-02")
	if got := base.ApplyRange(nil, ModeAdd); !got.Equal(base) {
		t.Errorf("expected no change, got %v", got.Keys())
	}
}

func TestSelectionSet_KeysIsCopy(t *testing.T) {
	s := NewSelectionSet("2024-03-02")
	keys := s.Keys()
	keys[0] = "mutated"
	if !s.Has("2024-03-02") || s.Keys()[0] != "2024-03-02" {
		t.Error("expected Keys to return a copy")
	}
}
