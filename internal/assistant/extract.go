package assistant

import (
	"encoding/json"
	"strings"
)

// ActionMarker is the fixed literal the model is instructed to place before
// each embedded command object.
const ActionMarker = "ACTION_JSON:"

// fallbackConfirmation replaces the display text when the whole reply was a
// bare command object with no human-readable sentence around it.
const fallbackConfirmation = "Change applied."

const cutset = " \t\r\n"

// ExtractActions scans a raw model reply for marker-delimited command blocks,
// removes them from the user-visible text, and returns the parsed blocks in
// the order they appeared. Malformed blocks are skipped; unbalanced braces
// stop the scan with the remaining text untouched. It never fails: worst case
// the original text comes back with no commands.
func ExtractActions(reply string) (string, []map[string]any) {
	text := reply
	var blocks []map[string]any

	searchFrom := 0
	for searchFrom < len(text) {
		rel := strings.Index(text[searchFrom:], ActionMarker)
		if rel < 0 {
			break
		}
		markerIdx := searchFrom + rel

		start := strings.Index(text[markerIdx:], "{")
		if start < 0 {
			break
		}
		start += markerIdx

		end, ok := matchBrace(text, start)
		if !ok {
			// Unbalanced braces: nothing after this point can be a
			// well-formed block.
			break
		}

		var obj map[string]any
		if err := json.Unmarshal([]byte(text[start:end+1]), &obj); err != nil {
			// Malformed block: leave the text as-is and keep scanning after it.
			searchFrom = end + 1
			continue
		}

		blocks = append(blocks, obj)
		// Right-trimming the prefix can move the rest of the text left of
		// markerIdx, so resume at the kept prefix's end, not at markerIdx.
		prefix := strings.TrimRight(text[:markerIdx], cutset)
		text = prefix + "\n" + strings.TrimLeft(text[end+1:], cutset)
		searchFrom = len(prefix)
	}

	if len(blocks) > 0 {
		return strings.TrimSpace(text), blocks
	}

	// Fallback: the model sometimes forgets the marker and answers with a
	// bare object. Accept it only for the two schedule command kinds, and
	// substitute a generic confirmation since no readable sentence came with
	// it.
	trimmed := strings.TrimSpace(reply)
	if strings.HasPrefix(trimmed, "{") {
		if endBrace := strings.LastIndex(trimmed, "}"); endBrace > 0 {
			var obj map[string]any
			if err := json.Unmarshal([]byte(trimmed[:endBrace+1]), &obj); err == nil {
				if t, _ := obj["type"].(string); t == string(KindUpdateAssignment) || t == string(KindAddAssignment) {
					return fallbackConfirmation, []map[string]any{obj}
				}
			}
		}
	}

	return reply, nil
}

// matchBrace returns the index of the brace closing the one at start,
// scanning with a depth counter.
func matchBrace(s string, start int) (int, bool) {
	depth := 0
	for i := start; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
		}
		if depth == 0 {
			return i, true
		}
	}
	return 0, false
}
