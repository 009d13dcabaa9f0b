// Package timewin resolves per-hour client availability flags into absolute
// delivery windows and generates bookable time slots. The service layer uses
// Resolve when turning stored operating-hour flags into request windows.
package timewin

import (
	"fmt"
	"sort"
	"time"

	"github.com/gasotec/dispatch/core/model"
)

const (
	// dayStartHour is the first hour covered by availability flags.
	dayStartHour = 8
	// dayHours is the span covered by the flags.
	dayHours = 12
)

// Resolve turns availability flags into merged absolute windows on the given
// date. Flags cover 08:00-20:00 local to the date's location; a slice of 12
// means one flag per hour, a slice of 6 one flag per two hours. Maximal runs
// of set flags become single windows.
func Resolve(flags []bool, date time.Time) ([]model.TimeWindow, error) {
	if len(flags) == 0 {
		return nil, fmt.Errorf("no availability flags supplied")
	}
	if dayHours%len(flags) != 0 {
		return nil, fmt.Errorf("unsupported flag count %d: must divide %d hours", len(flags), dayHours)
	}
	span := time.Duration(dayHours/len(flags)) * time.Hour
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), dayStartHour, 0, 0, 0, date.Location())

	var windows []model.TimeWindow
	for i := 0; i < len(flags); {
		if !flags[i] {
			i++
			continue
		}
		j := i
		for j < len(flags) && flags[j] {
			j++
		}
		windows = append(windows, model.TimeWindow{
			Start: dayStart.Add(time.Duration(i) * span),
			End:   dayStart.Add(time.Duration(j) * span),
		})
		i = j
	}
	return windows, nil
}

// Merge sorts windows by start and coalesces adjacent or overlapping ones.
func Merge(windows []model.TimeWindow) []model.TimeWindow {
	if len(windows) < 2 {
		return windows
	}
	sorted := append([]model.TimeWindow(nil), windows...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start.Before(sorted[j].Start) })

	out := sorted[:1]
	for _, w := range sorted[1:] {
		last := &out[len(out)-1]
		if !last.End.Before(w.Start) {
			if w.End.After(last.End) {
				last.End = w.End
			}
			continue
		}
		out = append(out, w)
	}
	return out
}

// Slots splits a window into consecutive slots of the given duration and
// capacity. A trailing remainder shorter than the duration is dropped.
func Slots(w model.TimeWindow, d time.Duration, capacity int) []model.TimeSlot {
	if d <= 0 || capacity <= 0 {
		return nil
	}
	var slots []model.TimeSlot
	for start := w.Start; !start.Add(d).After(w.End); start = start.Add(d) {
		slots = append(slots, model.TimeSlot{Start: start, End: start.Add(d), Capacity: capacity})
	}
	return slots
}
