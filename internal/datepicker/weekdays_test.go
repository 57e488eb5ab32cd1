package datepicker

import (
	"reflect"
	"testing"
)

func TestToggleWeekday(t *testing.T) {
	tests := []struct {
		name string
		days []int
		d    int
		want []int
	}{
		{"add to empty", nil, 3, []int{3}},
		{"add keeps order", []int{5, 1}, 3, []int{1, 3, 5}},
		{"remove", []int{1, 3, 5}, 3, []int{1, 5}},
		{"out of range ignored", []int{2}, 7, []int{2}},
		{"negative ignored", []int{2}, -1, []int{2}},
		{"cleans duplicates", []int{2, 2, 9}, 4, []int{2, 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToggleWeekday(tt.days, tt.d)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestToggleWeekday_DoesNotModifyInput(t *testing.T) {
	in := []int{4, 1}
	ToggleWeekday(in, 1)
	if !reflect.DeepEqual(in, []int{4, 1}) {
		t.Errorf("expected input untouched, got %v", in)
	}
}
