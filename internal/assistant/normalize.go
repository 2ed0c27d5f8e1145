package assistant

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/raizapp/fleetops-backend/internal/pkg/errors"
)

// Kind tags the closed set of command variants the model may emit.
type Kind string

const (
	KindUpdateAssignment Kind = "update_in_scale"
	KindAddAssignment    Kind = "add_to_scale"
	KindSendNotification Kind = "send_notification"
)

// Command is a validated instruction parsed out of a model reply. It is only
// ever a data value here; execution belongs to the caller.
type Command struct {
	Kind       Kind   `json:"type"`
	DriverName string `json:"driverName,omitempty"`
	WaveIndex  *int   `json:"waveIndex,omitempty"`
	Slot       string `json:"slot,omitempty"`
	Route      string `json:"route,omitempty"`
	UnitCount  *int   `json:"unitCount,omitempty"`
	Body       string `json:"body,omitempty"`
}

// ErrUnknownCommandType marks a block whose declared type is not one of the
// known variants. Callers drop the block with a warning, never fail the
// whole reply.
var ErrUnknownCommandType = fmt.Errorf("unknown command type: %w", errors.ErrInvalidArgument)

// waveIndexVariants maps the misspelled and alternate key names the model
// emits for the wave-index field to the canonical one.
var waveIndexVariants = []string{"ondalndex", "ondaIndex", "onda_index", "wavelndex", "wave_index"}

const waveIndexKey = "waveIndex"

// CanonicalizeKeys renames known wave-index key variants in place to
// waveIndex. Idempotent; an existing canonical key is never overwritten.
func CanonicalizeKeys(raw map[string]any) map[string]any {
	if raw == nil {
		return raw
	}
	for _, variant := range waveIndexVariants {
		v, ok := raw[variant]
		if !ok {
			continue
		}
		delete(raw, variant)
		if _, exists := raw[waveIndexKey]; !exists {
			raw[waveIndexKey] = v
		}
	}
	return raw
}

// Normalize canonicalizes field names and coerces one raw command map into a
// Command, or reports a validation failure. It does no semantic validation
// (driver existence, wave bounds); that belongs to the execution layer.
func Normalize(raw map[string]any) (Command, error) {
	raw = CanonicalizeKeys(raw)

	t, _ := raw["type"].(string)
	kind := Kind(strings.TrimSpace(t))
	switch kind {
	case KindUpdateAssignment, KindAddAssignment, KindSendNotification:
	default:
		return Command{}, fmt.Errorf("%w: %q", ErrUnknownCommandType, t)
	}

	cmd := Command{Kind: kind}
	cmd.DriverName = strings.TrimSpace(stringField(raw, "driverName"))

	if v, ok := raw[waveIndexKey]; ok && v != nil {
		idx, err := toInt(v)
		if err != nil {
			return Command{}, fmt.Errorf("waveIndex: %w: %v", errors.ErrInvalidArgument, v)
		}
		if idx < 0 {
			return Command{}, fmt.Errorf("waveIndex: %w: negative index %d", errors.ErrInvalidArgument, idx)
		}
		cmd.WaveIndex = &idx
	}

	if slot := strings.TrimSpace(stringField(raw, "slot")); slot != "" {
		cmd.Slot = PadSlot(slot)
	}
	if route := strings.TrimSpace(stringField(raw, "route")); route != "" {
		cmd.Route = strings.ToUpper(route)
	}
	if v, ok := raw["unitCount"]; ok && v != nil {
		n, err := toInt(v)
		if err != nil {
			return Command{}, fmt.Errorf("unitCount: %w: %v", errors.ErrInvalidArgument, v)
		}
		cmd.UnitCount = &n
	}
	cmd.Body = strings.TrimSpace(stringField(raw, "body"))

	switch kind {
	case KindUpdateAssignment:
		if cmd.DriverName == "" || cmd.WaveIndex == nil {
			return Command{}, fmt.Errorf("update requires driverName and waveIndex: %w", errors.ErrInvalidArgument)
		}
	case KindAddAssignment:
		if cmd.DriverName == "" || cmd.WaveIndex == nil || cmd.Slot == "" || cmd.Route == "" {
			return Command{}, fmt.Errorf("add requires driverName, waveIndex, slot and route: %w", errors.ErrInvalidArgument)
		}
	case KindSendNotification:
		if cmd.Body == "" {
			return Command{}, fmt.Errorf("notification requires body: %w", errors.ErrInvalidArgument)
		}
		if (cmd.DriverName == "") == (cmd.WaveIndex == nil) {
			return Command{}, fmt.Errorf("notification requires exactly one of driverName/waveIndex: %w", errors.ErrInvalidArgument)
		}
	}

	return cmd, nil
}

func stringField(raw map[string]any, key string) string {
	s, _ := raw[key].(string)
	return s
}

func toInt(v any) (int, error) {
	switch n := v.(type) {
	case float64:
		return int(n), nil
	case int:
		return n, nil
	case json.Number:
		i, err := n.Int64()
		return int(i), err
	case string:
		return strconv.Atoi(strings.TrimSpace(n))
	default:
		return 0, fmt.Errorf("not a number: %T", v)
	}
}
