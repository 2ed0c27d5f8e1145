package assistant

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/raizapp/fleetops-backend/internal/clients/directory"
	"github.com/raizapp/fleetops-backend/internal/domain"
	"github.com/raizapp/fleetops-backend/internal/pkg/ctxutil"
	"github.com/raizapp/fleetops-backend/internal/pkg/logger"
)

// Snapshot is the rendered natural-language aggregate of one scope's
// operational data. Immutable once produced; the cache replaces it wholesale
// on refresh.
type Snapshot struct {
	Scope   string
	Text    string
	BuiltAt time.Time
}

const (
	maxReturnEvents       = 20
	maxNotificationLogged = 20
)

var dayparts = []string{"AM", "PM"}

// SnapshotBuilder renders the scope's roster, shifts, ETAs, availability,
// attendance, returns and notification history into one bounded text block.
// Every sub-fetch is independently fallible: a failed section is logged and
// omitted, never aborting the build.
type SnapshotBuilder struct {
	log   *logger.Logger
	store directory.Store
	now   func() time.Time
}

func NewSnapshotBuilder(log *logger.Logger, store directory.Store) (*SnapshotBuilder, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if store == nil {
		return nil, fmt.Errorf("directory store required")
	}
	return &SnapshotBuilder{
		log:   log.With("service", "SnapshotBuilder"),
		store: store,
		now:   time.Now,
	}, nil
}

func (b *SnapshotBuilder) Build(ctx context.Context, scope string) (Snapshot, error) {
	ctx = ctxutil.Default(ctx)
	now := b.now()
	today := now.Format("2006-01-02")
	tomorrow := now.AddDate(0, 0, 1).Format("2006-01-02")

	sections := make([]string, 7)
	fetch := []struct {
		name string
		fn   func(context.Context) (string, error)
	}{
		{"roster", func(ctx context.Context) (string, error) { return b.rosterSection(ctx, scope) }},
		{"shifts", func(ctx context.Context) (string, error) { return b.shiftsSection(ctx, scope, today, tomorrow) }},
		{"eta", func(ctx context.Context) (string, error) { return b.etaSection(ctx, scope) }},
		{"availability", func(ctx context.Context) (string, error) { return b.availabilitySection(ctx, scope, today, tomorrow) }},
		{"attendance", func(ctx context.Context) (string, error) { return b.attendanceSection(ctx, scope, now) }},
		{"returns", func(ctx context.Context) (string, error) { return b.returnsSection(ctx, scope) }},
		{"notifications", func(ctx context.Context) (string, error) { return b.notificationsSection(ctx, scope) }},
	}

	g, gctx := errgroup.WithContext(ctx)
	for i := range fetch {
		i := i
		g.Go(func() error {
			// Section failures never abort the build; they are logged and
			// the section is omitted.
			text, err := fetch[i].fn(gctx)
			if err != nil {
				b.log.Warn("Snapshot section failed, omitting", "scope", scope, "section", fetch[i].name, "error", err)
				return nil
			}
			sections[i] = text
			return nil
		})
	}
	_ = g.Wait()

	var nonEmpty []string
	for _, s := range sections {
		if strings.TrimSpace(s) != "" {
			nonEmpty = append(nonEmpty, s)
		}
	}

	return Snapshot{
		Scope:   scope,
		Text:    strings.Join(nonEmpty, "\n\n"),
		BuiltAt: now,
	}, nil
}

func (b *SnapshotBuilder) rosterSection(ctx context.Context, scope string) (string, error) {
	docs, err := b.store.List(ctx, scope, directory.CollectionDrivers)
	if err != nil {
		return "", err
	}
	var drivers []domain.Driver
	for _, doc := range docs {
		var d domain.Driver
		if err := doc.DataTo(&d); err != nil {
			b.log.Warn("Skipping undecodable roster doc", "scope", scope, "doc", doc.ID, "error", err)
			continue
		}
		if !d.Active {
			continue
		}
		d.ID = doc.ID
		drivers = append(drivers, d)
	}
	if len(drivers) == 0 {
		return "", nil
	}
	sort.Slice(drivers, func(i, j int) bool { return drivers[i].Name < drivers[j].Name })

	var sb strings.Builder
	sb.WriteString("ACTIVE ROSTER (name — role, modality):")
	for _, d := range drivers {
		sb.WriteString("\n- " + d.Name + " — " + d.Role)
		if d.Modality != "" {
			sb.WriteString(", " + d.Modality)
		}
	}
	return sb.String(), nil
}

func (b *SnapshotBuilder) shiftsSection(ctx context.Context, scope, today, tomorrow string) (string, error) {
	var sb strings.Builder
	sb.WriteString("SHIFT DETAIL — drivers already scheduled (waves are zero-indexed):")
	found := false
	for _, date := range []string{today, tomorrow} {
		for _, daypart := range dayparts {
			doc, ok, err := b.store.Get(ctx, scope, directory.CollectionShifts, date+"_"+daypart)
			if err != nil {
				return "", err
			}
			if !ok {
				continue
			}
			var shift domain.ShiftDoc
			if err := doc.DataTo(&shift); err != nil {
				b.log.Warn("Skipping undecodable shift doc", "scope", scope, "doc", doc.ID, "error", err)
				continue
			}
			for waveIdx, wave := range shift.Waves {
				found = true
				sb.WriteString(fmt.Sprintf("\n%s %s — wave %d %q", date, daypart, waveIdx, wave.Name))
				if wave.Time != "" {
					sb.WriteString(" at " + wave.Time)
				}
				sb.WriteString(":")
				for _, item := range wave.Items {
					sb.WriteString("\n  - " + renderWaveItem(item))
				}
			}
		}
	}
	if !found {
		return "", nil
	}
	return sb.String(), nil
}

// renderWaveItem applies the exact rendering rules: slot codes zero-padded to
// two characters, route codes upper-cased, unit counts as plain integers.
func renderWaveItem(item domain.WaveItem) string {
	var sb strings.Builder
	sb.WriteString(item.DriverName)
	sb.WriteString(" — slot " + PadSlot(item.Slot))
	sb.WriteString(", route " + strings.ToUpper(item.Route))
	if item.UnitCount != nil {
		sb.WriteString(fmt.Sprintf(", %d units", *item.UnitCount))
	}
	if item.Time != "" {
		sb.WriteString(", " + item.Time)
	}
	return sb.String()
}

// PadSlot zero-pads purely numeric slot codes to two characters.
func PadSlot(slot string) string {
	slot = strings.TrimSpace(slot)
	if len(slot) == 1 && slot[0] >= '0' && slot[0] <= '9' {
		return "0" + slot
	}
	return slot
}

func (b *SnapshotBuilder) etaSection(ctx context.Context, scope string) (string, error) {
	docs, err := b.store.List(ctx, scope, directory.CollectionLocationResponses)
	if err != nil {
		return "", err
	}
	var ready []domain.EtaRecord
	for _, doc := range docs {
		var rec domain.EtaRecord
		if err := doc.DataTo(&rec); err != nil {
			continue
		}
		// Stale, pending and error records never enter the snapshot.
		if rec.Status != domain.EtaStatusReady {
			continue
		}
		ready = append(ready, rec)
	}
	if len(ready) == 0 {
		return "", nil
	}
	sort.Slice(ready, func(i, j int) bool { return ready[i].DriverName < ready[j].DriverName })

	var sb strings.Builder
	sb.WriteString("ESTIMATED TIME TO WAREHOUSE (per driver):")
	for _, rec := range ready {
		sb.WriteString(fmt.Sprintf("\n- %s — %.1f km, ~%d min", rec.DriverName, rec.DistanceKm, rec.EtaMinutes))
	}
	return sb.String(), nil
}

func (b *SnapshotBuilder) availabilitySection(ctx context.Context, scope, today, tomorrow string) (string, error) {
	var records []domain.AvailabilityRecord
	for _, date := range []string{today, tomorrow} {
		docs, err := b.store.Query(ctx, scope, directory.CollectionAvailability, directory.Filter{Field: "date", Value: date})
		if err != nil {
			return "", err
		}
		for _, doc := range docs {
			var rec domain.AvailabilityRecord
			if err := doc.DataTo(&rec); err != nil {
				continue
			}
			records = append(records, rec)
		}
	}
	if len(records) == 0 {
		return "", nil
	}

	var sb strings.Builder
	sb.WriteString("AVAILABILITY (today and tomorrow; available / unavailable / no response):")
	for _, rec := range records {
		sb.WriteString(fmt.Sprintf("\n- %s — %s: %s", rec.Date, rec.DriverName, availabilityLabel(rec.Status)))
	}
	return sb.String(), nil
}

func availabilityLabel(status string) string {
	switch status {
	case domain.AvailabilityAvailable:
		return "available"
	case domain.AvailabilityUnavailable:
		return "unavailable"
	default:
		return "no response"
	}
}

func (b *SnapshotBuilder) attendanceSection(ctx context.Context, scope string, now time.Time) (string, error) {
	docs, err := b.store.Query(ctx, scope, directory.CollectionAttendance,
		directory.Filter{Field: "month", Value: int(now.Month())},
		directory.Filter{Field: "year", Value: now.Year()},
	)
	if err != nil {
		return "", err
	}
	var records []domain.AttendanceRecord
	for _, doc := range docs {
		var rec domain.AttendanceRecord
		if err := doc.DataTo(&rec); err != nil {
			continue
		}
		records = append(records, rec)
	}
	if len(records) == 0 {
		return "", nil
	}
	sort.Slice(records, func(i, j int) bool { return records[i].DriverName < records[j].DriverName })

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("PAYROLL PERIOD %04d-%02d (days worked per driver):", now.Year(), int(now.Month())))
	for _, rec := range records {
		sb.WriteString(fmt.Sprintf("\n- %s — first half: %d, second half: %d", rec.DriverName, rec.FirstHalfDays, rec.SecondHalfDays))
	}
	return sb.String(), nil
}

func (b *SnapshotBuilder) returnsSection(ctx context.Context, scope string) (string, error) {
	docs, err := b.store.List(ctx, scope, directory.CollectionReturns)
	if err != nil {
		return "", err
	}
	var records []domain.ReturnRecord
	for _, doc := range docs {
		var rec domain.ReturnRecord
		if err := doc.DataTo(&rec); err != nil {
			continue
		}
		records = append(records, rec)
	}
	if len(records) == 0 {
		return "", nil
	}

	// Newest first, bounded.
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Date != records[j].Date {
			return records[i].Date > records[j].Date
		}
		return records[i].Time > records[j].Time
	})
	if len(records) > maxReturnEvents {
		records = records[:maxReturnEvents]
	}

	// Group per driver preserving newest-first order of each driver's events.
	byDriver := map[string][]domain.ReturnRecord{}
	var driverOrder []string
	for _, rec := range records {
		if _, seen := byDriver[rec.DriverName]; !seen {
			driverOrder = append(driverOrder, rec.DriverName)
		}
		byDriver[rec.DriverName] = append(byDriver[rec.DriverName], rec)
	}

	var sb strings.Builder
	sb.WriteString("PARCEL RETURNS (per driver, newest first):")
	for _, name := range driverOrder {
		events := byDriver[name]
		sb.WriteString("\n" + name)
		sb.WriteString("\nTotal per day: " + renderDailyTotals(events))
		for _, ev := range events {
			sb.WriteString(fmt.Sprintf("\n%s %s — %d item(s). IDs: %s", ev.Date, ev.Time, ev.Count(), renderParcelIDs(ev.ParcelIDs)))
		}
	}
	return sb.String(), nil
}

// renderDailyTotals renders "date N return(s)" pairs joined by "; ",
// preserving the newest-first order of the events.
func renderDailyTotals(events []domain.ReturnRecord) string {
	counts := map[string]int{}
	var dateOrder []string
	for _, ev := range events {
		if _, seen := counts[ev.Date]; !seen {
			dateOrder = append(dateOrder, ev.Date)
		}
		counts[ev.Date]++
	}
	parts := make([]string, 0, len(dateOrder))
	for _, date := range dateOrder {
		parts = append(parts, fmt.Sprintf("%s %d return(s)", date, counts[date]))
	}
	return strings.Join(parts, "; ")
}

func renderParcelIDs(ids []string) string {
	if len(ids) == 0 {
		return "(none)"
	}
	return strings.Join(ids, ", ")
}

func (b *SnapshotBuilder) notificationsSection(ctx context.Context, scope string) (string, error) {
	docs, err := b.store.List(ctx, scope, directory.CollectionNotificationsLog)
	if err != nil {
		return "", err
	}
	var entries []domain.NotificationLogEntry
	for _, doc := range docs {
		var entry domain.NotificationLogEntry
		if err := doc.DataTo(&entry); err != nil {
			continue
		}
		entries = append(entries, entry)
	}
	if len(entries) == 0 {
		return "", nil
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].SentAt > entries[j].SentAt })
	if len(entries) > maxNotificationLogged {
		entries = entries[:maxNotificationLogged]
	}

	var sb strings.Builder
	sb.WriteString("NOTIFICATION HISTORY (newest first):")
	for _, entry := range entries {
		sb.WriteString(fmt.Sprintf("\n- %s -> %s: %s (%s)", entry.Sender, entry.Recipient, entry.Body, entry.SentAt))
	}
	return sb.String(), nil
}
