// Package schedule holds the pure helpers shared by the algorithms, the
// conflict resolver and the engine: conflict detection over a set of
// schedule entries, and aggregate schedule metrics.
package schedule

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/gasotec/dispatch/core/geo"
	"github.com/gasotec/dispatch/core/model"
)

// Severity levels used by the detector.
const (
	severityOverlap = 5
	severityTravel  = 4
)

// ByDriver groups entries per driver, each group sorted by slot start.
func ByDriver(entries []model.ScheduleEntry) map[string][]model.ScheduleEntry {
	grouped := make(map[string][]model.ScheduleEntry)
	for _, e := range entries {
		grouped[e.DriverID] = append(grouped[e.DriverID], e)
	}
	for id := range grouped {
		g := grouped[id]
		sort.Slice(g, func(i, j int) bool { return g[i].Slot.Start.Before(g[j].Slot.Start) })
	}
	return grouped
}

// conflictID derives a stable identifier so repeated detection runs over an
// unmodified schedule produce an identical conflict set.
func conflictID(c model.SchedulingConflict) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(c.Key())).String()
}

// Detect scans a schedule for time overlaps and insufficient travel gaps
// between consecutive entries of the same driver. speedKmh feeds the travel
// estimate; non-positive values fall back to the default speed.
func Detect(entries []model.ScheduleEntry, speedKmh float64) []model.SchedulingConflict {
	var conflicts []model.SchedulingConflict

	grouped := ByDriver(entries)
	drivers := make([]string, 0, len(grouped))
	for id := range grouped {
		drivers = append(drivers, id)
	}
	sort.Strings(drivers)

	for _, id := range drivers {
		g := grouped[id]
		for i := 0; i+1 < len(g); i++ {
			prev, next := g[i], g[i+1]
			if prev.ConflictsWith(next) {
				c := model.SchedulingConflict{
					Type:        model.ConflictTimeOverlap,
					Entries:     []model.ScheduleEntry{prev, next},
					Description: fmt.Sprintf("driver %s: deliveries %s and %s overlap", id, prev.DeliveryID, next.DeliveryID),
					Severity:    severityOverlap,
					Suggestions: []string{
						fmt.Sprintf("shift delivery %s to %s", next.DeliveryID, prev.EndTime().Format(time.Kitchen)),
						"reassign one delivery to another driver",
					},
				}
				c.ID = conflictID(c)
				conflicts = append(conflicts, c)
				continue
			}
			if prev.Location == nil || next.Location == nil {
				continue
			}
			gap := next.Slot.Start.Sub(prev.EndTime())
			travel := geo.TravelTime(*prev.Location, *next.Location, speedKmh)
			if gap < travel {
				c := model.SchedulingConflict{
					Type:    model.ConflictTravelTime,
					Entries: []model.ScheduleEntry{prev, next},
					Description: fmt.Sprintf("driver %s: %v gap before delivery %s, travel needs %v",
						id, gap.Round(time.Minute), next.DeliveryID, travel.Round(time.Minute)),
					Severity: severityTravel,
					Suggestions: []string{
						fmt.Sprintf("delay delivery %s by %v", next.DeliveryID, (travel - gap).Round(time.Minute)),
					},
				}
				c.ID = conflictID(c)
				conflicts = append(conflicts, c)
			}
		}
	}
	return conflicts
}
