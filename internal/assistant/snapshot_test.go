package assistant

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/raizapp/fleetops-backend/internal/clients/directory"
)

const testScope = "matriz"

func newTestBuilder(t *testing.T, store *directory.MemoryStore, now time.Time) *SnapshotBuilder {
	t.Helper()
	b, err := NewSnapshotBuilder(testLogger(), store)
	if err != nil {
		t.Fatalf("NewSnapshotBuilder: %v", err)
	}
	b.now = func() time.Time { return now }
	return b
}

func TestSnapshotRosterSkipsInactive(t *testing.T) {
	store := directory.NewMemoryStore()
	store.Seed(testScope, directory.CollectionDrivers, "d1", map[string]any{
		"name": "Michell", "role": "driver", "active": true, "modality": "fixed",
	})
	store.Seed(testScope, directory.CollectionDrivers, "d2", map[string]any{
		"name": "Carlos", "role": "driver", "active": false,
	})

	b := newTestBuilder(t, store, time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC))
	snap, err := b.Build(context.Background(), testScope)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !strings.Contains(snap.Text, "Michell — driver, fixed") {
		t.Fatalf("active driver missing:\n%s", snap.Text)
	}
	if strings.Contains(snap.Text, "Carlos") {
		t.Fatalf("inactive driver must be excluded:\n%s", snap.Text)
	}
}

func TestSnapshotShiftRendering(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	units := 142
	store := directory.NewMemoryStore()
	store.Seed(testScope, directory.CollectionShifts, "2026-03-02_AM", map[string]any{
		"date": "2026-03-02", "daypart": "AM",
		"waves": []any{
			map[string]any{
				"name": "Wave 1", "time": "07:30",
				"items": []any{
					map[string]any{"driverName": "Sam", "slot": "3", "route": "g9", "unitCount": units},
				},
			},
		},
	})

	b := newTestBuilder(t, store, now)
	snap, err := b.Build(context.Background(), testScope)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	want := `2026-03-02 AM — wave 0 "Wave 1" at 07:30`
	if !strings.Contains(snap.Text, want) {
		t.Fatalf("wave header missing %q:\n%s", want, snap.Text)
	}
	if !strings.Contains(snap.Text, "Sam — slot 03, route G9, 142 units") {
		t.Fatalf("wave item rendering wrong:\n%s", snap.Text)
	}
}

func TestSnapshotEtaReadyOnly(t *testing.T) {
	store := directory.NewMemoryStore()
	store.Seed(testScope, directory.CollectionLocationResponses, "sam", map[string]any{
		"driverName": "Sam", "status": "ready", "distanceKm": 12.3, "etaMinutes": 25,
	})
	store.Seed(testScope, directory.CollectionLocationResponses, "leo", map[string]any{
		"driverName": "Leo", "status": "pending",
	})
	store.Seed(testScope, directory.CollectionLocationResponses, "ana", map[string]any{
		"driverName": "Ana", "status": "error",
	})

	b := newTestBuilder(t, store, time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC))
	snap, err := b.Build(context.Background(), testScope)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !strings.Contains(snap.Text, "Sam — 12.3 km, ~25 min") {
		t.Fatalf("ready ETA missing:\n%s", snap.Text)
	}
	if strings.Contains(snap.Text, "Leo") || strings.Contains(snap.Text, "Ana") {
		t.Fatalf("pending/error ETAs must be excluded:\n%s", snap.Text)
	}
}

func TestSnapshotAttendanceCurrentMonthOnly(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	store := directory.NewMemoryStore()
	store.Seed(testScope, directory.CollectionAttendance, "sam-2026-03", map[string]any{
		"driverName": "Sam", "month": 3, "year": 2026, "firstHalfDays": 11, "secondHalfDays": 0,
	})
	store.Seed(testScope, directory.CollectionAttendance, "sam-2026-02", map[string]any{
		"driverName": "Sam", "month": 2, "year": 2026, "firstHalfDays": 15, "secondHalfDays": 13,
	})

	b := newTestBuilder(t, store, now)
	snap, err := b.Build(context.Background(), testScope)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !strings.Contains(snap.Text, "PAYROLL PERIOD 2026-03") {
		t.Fatalf("payroll header missing:\n%s", snap.Text)
	}
	if !strings.Contains(snap.Text, "Sam — first half: 11, second half: 0") {
		t.Fatalf("current month row missing:\n%s", snap.Text)
	}
	if strings.Contains(snap.Text, "first half: 15") {
		t.Fatalf("prior month must be excluded:\n%s", snap.Text)
	}
}

func TestSnapshotReturnsGroupingAndTotals(t *testing.T) {
	store := directory.NewMemoryStore()
	store.Seed(testScope, directory.CollectionReturns, "r1", map[string]any{
		"driverName": "Sam", "date": "2026-03-01", "time": "18:10",
		"parcelIds": []any{"BR123", "BR456"},
	})
	store.Seed(testScope, directory.CollectionReturns, "r2", map[string]any{
		"driverName": "Sam", "date": "2026-03-02", "time": "17:05",
		"parcelCount": 3,
	})

	b := newTestBuilder(t, store, time.Date(2026, 3, 2, 19, 0, 0, 0, time.UTC))
	snap, err := b.Build(context.Background(), testScope)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !strings.Contains(snap.Text, "Total per day: 2026-03-02 1 return(s); 2026-03-01 1 return(s)") {
		t.Fatalf("daily totals wrong:\n%s", snap.Text)
	}
	// Newest event first, raw count without IDs renders "(none)".
	newest := strings.Index(snap.Text, "2026-03-02 17:05 — 3 item(s). IDs: (none)")
	oldest := strings.Index(snap.Text, "2026-03-01 18:10 — 2 item(s). IDs: BR123, BR456")
	if newest == -1 || oldest == -1 {
		t.Fatalf("return events missing:\n%s", snap.Text)
	}
	if newest > oldest {
		t.Fatalf("events must render newest first:\n%s", snap.Text)
	}
}

func TestSnapshotReturnsBounded(t *testing.T) {
	store := directory.NewMemoryStore()
	for i := 0; i < maxReturnEvents+10; i++ {
		store.Seed(testScope, directory.CollectionReturns, fmt.Sprintf("r%02d", i), map[string]any{
			"driverName":  "Sam",
			"date":        "2026-03-01",
			"time":        fmt.Sprintf("%02d:00", i%24),
			"parcelCount": 1,
		})
	}

	b := newTestBuilder(t, store, time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC))
	snap, err := b.Build(context.Background(), testScope)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if got := strings.Count(snap.Text, "item(s)."); got != maxReturnEvents {
		t.Fatalf("return events: want %d got %d", maxReturnEvents, got)
	}
}

func TestSnapshotSectionFailureIsolated(t *testing.T) {
	store := directory.NewMemoryStore()
	store.Seed(testScope, directory.CollectionDrivers, "d1", map[string]any{
		"name": "Michell", "role": "driver", "active": true,
	})
	store.Fail = map[string]error{
		testScope + "/" + directory.CollectionReturns: fmt.Errorf("backend unavailable"),
	}

	b := newTestBuilder(t, store, time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC))
	snap, err := b.Build(context.Background(), testScope)
	if err != nil {
		t.Fatalf("Build must succeed despite a failed section: %v", err)
	}
	if !strings.Contains(snap.Text, "Michell") {
		t.Fatalf("surviving sections must still render:\n%s", snap.Text)
	}
	if strings.Contains(snap.Text, "PARCEL RETURNS") {
		t.Fatalf("failed section must be omitted:\n%s", snap.Text)
	}
}

func TestSnapshotEmptyScope(t *testing.T) {
	b := newTestBuilder(t, directory.NewMemoryStore(), time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC))
	snap, err := b.Build(context.Background(), testScope)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if snap.Text != "" {
		t.Fatalf("empty scope must yield empty text, got:\n%s", snap.Text)
	}
	if snap.Scope != testScope || snap.BuiltAt.IsZero() {
		t.Fatalf("snapshot metadata missing: %+v", snap)
	}
}
