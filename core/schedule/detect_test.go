package schedule

import (
	"testing"
	"time"

	"github.com/gasotec/dispatch/core/model"
)

func at(h, m int) time.Time {
	return time.Date(2025, 6, 2, h, m, 0, 0, time.UTC)
}

func entry(id, driver string, start time.Time, service time.Duration, loc *model.Location) model.ScheduleEntry {
	return model.ScheduleEntry{
		DeliveryID:      id,
		DriverID:        driver,
		Slot:            model.TimeSlot{Start: start, End: start.Add(service), Capacity: 1, Reserved: 1},
		ServiceDuration: service,
		Status:          model.StatusScheduled,
		Location:        loc,
	}
}

func TestDetectTimeOverlap(t *testing.T) {
	entries := []model.ScheduleEntry{
		entry("d1", "drv1", at(8, 0), time.Hour, nil),
		entry("d2", "drv1", at(8, 30), time.Hour, nil),
	}
	conflicts := Detect(entries, 40)
	if len(conflicts) != 1 {
		t.Fatalf("expected 1 conflict, got %d", len(conflicts))
	}
	c := conflicts[0]
	if c.Type != model.ConflictTimeOverlap || c.Severity != 5 {
		t.Fatalf("unexpected conflict %+v", c)
	}
	if len(c.Entries) != 2 {
		t.Fatalf("conflict must reference both entries")
	}
}

func TestDetectNoConflictAcrossDrivers(t *testing.T) {
	entries := []model.ScheduleEntry{
		entry("d1", "drv1", at(8, 0), time.Hour, nil),
		entry("d2", "drv2", at(8, 30), time.Hour, nil),
	}
	if got := Detect(entries, 40); len(got) != 0 {
		t.Fatalf("expected no conflicts, got %v", got)
	}
}

func TestDetectTravelTimeInsufficient(t *testing.T) {
	near := model.Location{Lat: 48.8566, Lng: 2.3522}
	far := model.Location{Lat: 48.95, Lng: 2.55} // ~18 km away, >30 min at 40 km/h
	entries := []model.ScheduleEntry{
		entry("d1", "drv1", at(8, 0), 30*time.Minute, &near),
		entry("d2", "drv1", at(8, 35), 30*time.Minute, &far),
	}
	conflicts := Detect(entries, 40)
	if len(conflicts) != 1 {
		t.Fatalf("expected 1 conflict, got %d", len(conflicts))
	}
	if conflicts[0].Type != model.ConflictTravelTime || conflicts[0].Severity != 4 {
		t.Fatalf("unexpected conflict %+v", conflicts[0])
	}
}

func TestDetectIdempotent(t *testing.T) {
	loc := model.Location{Lat: 48.8566, Lng: 2.3522}
	entries := []model.ScheduleEntry{
		entry("d1", "drv1", at(8, 0), time.Hour, &loc),
		entry("d2", "drv1", at(8, 15), time.Hour, &loc),
		entry("d3", "drv2", at(9, 0), time.Hour, &loc),
	}
	first := Detect(entries, 40)
	second := Detect(entries, 40)
	if len(first) != len(second) {
		t.Fatalf("conflict count changed between runs: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].ID != second[i].ID || first[i].Key() != second[i].Key() {
			t.Fatalf("conflict %d not stable across runs", i)
		}
	}
}

func TestMetrics(t *testing.T) {
	a := model.Location{Lat: 48.8566, Lng: 2.3522}
	b := model.Location{Lat: 48.8666, Lng: 2.3622}
	entries := []model.ScheduleEntry{
		entry("d1", "drv1", at(8, 0), 30*time.Minute, &a),
		entry("d2", "drv1", at(10, 0), 30*time.Minute, &b),
		entry("d3", "drv2", at(9, 0), time.Hour, &a),
	}
	m := Metrics(entries, 40)
	if m[MetricTotalDeliveries] != 3 {
		t.Fatalf("total deliveries = %v", m[MetricTotalDeliveries])
	}
	if m[MetricDriversUsed] != 2 {
		t.Fatalf("drivers used = %v", m[MetricDriversUsed])
	}
	if m[MetricServiceMinutes] != 120 {
		t.Fatalf("service minutes = %v", m[MetricServiceMinutes])
	}
	if m[MetricDistanceKm] <= 0 {
		t.Fatalf("expected positive travel distance")
	}
	if m[MetricUtilization] <= 0 || m[MetricUtilization] > 1 {
		t.Fatalf("utilization out of range: %v", m[MetricUtilization])
	}
}

func TestMetricsEmptySchedule(t *testing.T) {
	m := Metrics(nil, 40)
	if m[MetricTotalDeliveries] != 0 || m[MetricUtilization] != 0 {
		t.Fatalf("empty schedule metrics should be zero: %v", m)
	}
}

func TestMetricsStableAcrossCalls(t *testing.T) {
	// Travel and distance sums accumulate per driver in sorted order, so
	// repeated calls must return bit-identical floats.
	locs := []model.Location{
		{Lat: 48.85, Lng: 2.35}, {Lat: 48.91, Lng: 2.27}, {Lat: 48.79, Lng: 2.41},
		{Lat: 48.99, Lng: 2.19}, {Lat: 48.73, Lng: 2.53},
	}
	var entries []model.ScheduleEntry
	for i := 0; i < 20; i++ {
		driver := "drv" + string(rune('a'+i%5))
		entries = append(entries, entry("d"+string(rune('a'+i)), driver, at(8+i%8, 7*i%60), 25*time.Minute, &locs[i%len(locs)]))
	}

	first := Metrics(entries, 40)
	for i := 0; i < 30; i++ {
		again := Metrics(entries, 40)
		for k, v := range first {
			if again[k] != v {
				t.Fatalf("metric %s drifted between calls: %v vs %v", k, v, again[k])
			}
		}
	}
}
