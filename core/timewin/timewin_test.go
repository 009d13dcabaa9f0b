package timewin

import (
	"testing"
	"time"

	"github.com/gasotec/dispatch/core/model"
)

var day = time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)

func at(h, m int) time.Time {
	return time.Date(2025, 6, 2, h, m, 0, 0, time.UTC)
}

func TestResolveHourlyFlags(t *testing.T) {
	// Hours 08-10 and 14-16 available out of 08:00-20:00.
	flags := []bool{true, true, false, false, false, false, true, true, false, false, false, false}
	windows, err := Resolve(flags, day)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(windows) != 2 {
		t.Fatalf("expected 2 windows, got %d", len(windows))
	}
	if !windows[0].Start.Equal(at(8, 0)) || !windows[0].End.Equal(at(10, 0)) {
		t.Fatalf("first window %v-%v, want 08:00-10:00", windows[0].Start, windows[0].End)
	}
	if !windows[1].Start.Equal(at(14, 0)) || !windows[1].End.Equal(at(16, 0)) {
		t.Fatalf("second window %v-%v, want 14:00-16:00", windows[1].Start, windows[1].End)
	}
}

func TestResolveTwoHourFlags(t *testing.T) {
	// Six 2h flags: morning open, afternoon closed until the last block.
	flags := []bool{true, true, false, false, false, true}
	windows, err := Resolve(flags, day)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(windows) != 2 {
		t.Fatalf("expected 2 windows, got %d", len(windows))
	}
	if !windows[0].Start.Equal(at(8, 0)) || !windows[0].End.Equal(at(12, 0)) {
		t.Fatalf("first window %v-%v, want 08:00-12:00", windows[0].Start, windows[0].End)
	}
	if !windows[1].Start.Equal(at(18, 0)) || !windows[1].End.Equal(at(20, 0)) {
		t.Fatalf("second window %v-%v, want 18:00-20:00", windows[1].Start, windows[1].End)
	}
}

func TestResolveRejectsBadFlagCount(t *testing.T) {
	if _, err := Resolve([]bool{true, false, true, false, true}, day); err == nil {
		t.Fatalf("expected error for 5 flags")
	}
	if _, err := Resolve(nil, day); err == nil {
		t.Fatalf("expected error for empty flags")
	}
}

func TestMergeCoalescesAdjacentAndOverlapping(t *testing.T) {
	in := []model.TimeWindow{
		{Start: at(14, 0), End: at(16, 0)},
		{Start: at(8, 0), End: at(10, 0)},
		{Start: at(10, 0), End: at(11, 0)},
		{Start: at(9, 0), End: at(9, 30)},
	}
	out := Merge(in)
	if len(out) != 2 {
		t.Fatalf("expected 2 merged windows, got %d: %v", len(out), out)
	}
	if !out[0].Start.Equal(at(8, 0)) || !out[0].End.Equal(at(11, 0)) {
		t.Fatalf("merged window %v-%v, want 08:00-11:00", out[0].Start, out[0].End)
	}
}

func TestSlots(t *testing.T) {
	w := model.TimeWindow{Start: at(8, 0), End: at(10, 30)}
	slots := Slots(w, time.Hour, 2)
	if len(slots) != 2 {
		t.Fatalf("expected 2 full slots, got %d", len(slots))
	}
	for _, s := range slots {
		if s.Capacity != 2 || s.Reserved != 0 {
			t.Fatalf("unexpected slot capacity state: %+v", s)
		}
	}
	if Slots(w, 0, 2) != nil {
		t.Fatalf("non-positive duration must yield no slots")
	}
}
