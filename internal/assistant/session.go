package assistant

import (
	"strings"

	"github.com/raizapp/fleetops-backend/internal/clients/hf"
	"github.com/raizapp/fleetops-backend/internal/pkg/errors"
)

const (
	// MaxHistoryTurns bounds the rolling history included in a request.
	MaxHistoryTurns = 20
	// maxImageChars bounds the base64 image payload (~5 MB of JPEG) so one
	// oversized upload cannot blow up model latency and cost.
	maxImageChars = 6_700_000
)

// Turn is one prior exchange supplied by the caller. Never persisted here.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Compose assembles the ordered message list for one model call: the fixed
// system instruction with the snapshot appended, then the bounded rolling
// history, then the new user turn (text and/or inlined image).
func Compose(snapshotText string, history []Turn, userText, imageBase64 string) (hf.Request, error) {
	if len(imageBase64) > maxImageChars {
		return hf.Request{}, errors.ErrPayloadTooLarge
	}

	system := systemInstruction
	if strings.TrimSpace(snapshotText) != "" {
		system += "\n\nBASE DATA (use to answer):\n" + strings.TrimSpace(snapshotText)
	}

	messages := []hf.Message{{Role: "system", Content: system}}

	if len(history) > MaxHistoryTurns {
		history = history[len(history)-MaxHistoryTurns:]
	}
	for _, turn := range history {
		role := strings.ToLower(strings.TrimSpace(turn.Role))
		if role != "user" && role != "assistant" {
			continue
		}
		content := strings.TrimSpace(turn.Content)
		if content == "" {
			continue
		}
		messages = append(messages, hf.Message{Role: role, Content: content})
	}

	prompt := strings.TrimSpace(userText)
	hasImage := imageBase64 != ""
	if hasImage {
		if prompt == "" {
			prompt = defaultImagePrompt
		}
		messages = append(messages, hf.Message{Role: "user", Content: []hf.ContentPart{
			{Type: "text", Text: prompt},
			{Type: "image_url", ImageURL: &hf.ImageURL{URL: "data:image/jpeg;base64," + imageBase64}},
		}})
	} else {
		messages = append(messages, hf.Message{Role: "user", Content: prompt})
	}

	return hf.Request{Messages: messages, HasImage: hasImage}, nil
}
