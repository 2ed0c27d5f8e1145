package assistant

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/raizapp/fleetops-backend/internal/clients/directory"
	"github.com/raizapp/fleetops-backend/internal/clients/hf"
	pkgerrors "github.com/raizapp/fleetops-backend/internal/pkg/errors"
)

type fakeModel struct {
	reply   string
	err     error
	lastReq hf.Request
	calls   int
}

func (m *fakeModel) Complete(_ context.Context, req hf.Request) (string, error) {
	m.calls++
	m.lastReq = req
	return m.reply, m.err
}

func newTestService(t *testing.T, store *directory.MemoryStore, model hf.Client) Service {
	t.Helper()
	builder := newTestBuilder(t, store, time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC))
	cache, err := NewSnapshotCache(testLogger(), builder, DefaultSnapshotTTL)
	if err != nil {
		t.Fatalf("NewSnapshotCache: %v", err)
	}
	svc, err := NewService(testLogger(), cache, model)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestChatFullPipeline(t *testing.T) {
	store := directory.NewMemoryStore()
	store.Seed(testScope, directory.CollectionDrivers, "d1", map[string]any{
		"name": "Michell", "role": "driver", "active": true,
	})
	model := &fakeModel{reply: "Updated. ACTION_JSON:{\"type\":\"update_in_scale\",\"driverName\":\"Michell\",\"ondalndex\":1}"}
	svc := newTestService(t, store, model)

	res, err := svc.Chat(context.Background(), ChatInput{Scope: testScope, Text: "move Michell to wave 2"})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if res.Text != "Updated." {
		t.Fatalf("display text: want %q got %q", "Updated.", res.Text)
	}
	if len(res.Commands) != 1 {
		t.Fatalf("commands: want 1 got %d", len(res.Commands))
	}
	cmd := res.Commands[0]
	if cmd.Kind != KindUpdateAssignment || cmd.DriverName != "Michell" || cmd.WaveIndex == nil || *cmd.WaveIndex != 1 {
		t.Fatalf("command not normalized: %+v", cmd)
	}

	// The composed system message carries the scope snapshot.
	system := model.lastReq.Messages[0].Content.(string)
	if !strings.Contains(system, "Michell") {
		t.Fatalf("snapshot missing from system message:\n%s", system)
	}
}

func TestChatRequiresScopeAndContent(t *testing.T) {
	svc := newTestService(t, directory.NewMemoryStore(), &fakeModel{reply: "ok"})

	if _, err := svc.Chat(context.Background(), ChatInput{Text: "hi"}); !errors.Is(err, pkgerrors.ErrInvalidArgument) {
		t.Fatalf("missing scope: want ErrInvalidArgument, got %v", err)
	}
	if _, err := svc.Chat(context.Background(), ChatInput{Scope: testScope}); !errors.Is(err, pkgerrors.ErrInvalidArgument) {
		t.Fatalf("missing text and image: want ErrInvalidArgument, got %v", err)
	}
}

func TestChatModelFailureWrapped(t *testing.T) {
	svc := newTestService(t, directory.NewMemoryStore(), &fakeModel{err: errors.New("upstream 500")})

	_, err := svc.Chat(context.Background(), ChatInput{Scope: testScope, Text: "hi"})
	if !errors.Is(err, pkgerrors.ErrAssistantUnavailable) {
		t.Fatalf("want ErrAssistantUnavailable, got %v", err)
	}
}

func TestChatEndpointErrorsWrapped(t *testing.T) {
	cases := []struct {
		name string
		err  *hf.APIError
	}{
		{name: "auth rejected", err: &hf.APIError{StatusCode: 401, Body: "invalid token"}},
		{name: "rate limited", err: &hf.APIError{StatusCode: 429, Body: "slow down"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := newTestService(t, directory.NewMemoryStore(), &fakeModel{err: tc.err})

			_, err := svc.Chat(context.Background(), ChatInput{Scope: testScope, Text: "hi"})
			if !errors.Is(err, pkgerrors.ErrAssistantUnavailable) {
				t.Fatalf("want ErrAssistantUnavailable, got %v", err)
			}
			var apiErr *hf.APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("endpoint error lost from chain: %v", err)
			}
			if apiErr.HTTPStatusCode() != tc.err.StatusCode {
				t.Fatalf("status: want %d got %d", tc.err.StatusCode, apiErr.HTTPStatusCode())
			}
		})
	}
}

func TestChatNotConfiguredPassesThrough(t *testing.T) {
	svc := newTestService(t, directory.NewMemoryStore(), &fakeModel{err: pkgerrors.ErrNotConfigured})

	_, err := svc.Chat(context.Background(), ChatInput{Scope: testScope, Text: "hi"})
	if !errors.Is(err, pkgerrors.ErrNotConfigured) {
		t.Fatalf("want ErrNotConfigured, got %v", err)
	}
	if errors.Is(err, pkgerrors.ErrAssistantUnavailable) {
		t.Fatalf("configuration error must not be wrapped as unavailability")
	}
}

func TestChatEmptyReplyIsUnavailable(t *testing.T) {
	svc := newTestService(t, directory.NewMemoryStore(), &fakeModel{reply: "   "})

	_, err := svc.Chat(context.Background(), ChatInput{Scope: testScope, Text: "hi"})
	if !errors.Is(err, pkgerrors.ErrAssistantUnavailable) {
		t.Fatalf("want ErrAssistantUnavailable, got %v", err)
	}
}

func TestChatDropsMalformedBlocksKeepsRest(t *testing.T) {
	reply := "Both done. " +
		"ACTION_JSON:{\"type\":\"update_in_scale\"} " + // missing required fields
		"ACTION_JSON:{\"type\":\"send_notification\",\"driverName\":\"Sam\",\"body\":\"go up\"}"
	svc := newTestService(t, directory.NewMemoryStore(), &fakeModel{reply: reply})

	res, err := svc.Chat(context.Background(), ChatInput{Scope: testScope, Text: "do it"})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if len(res.Commands) != 1 {
		t.Fatalf("commands: want 1 got %d", len(res.Commands))
	}
	if res.Commands[0].Kind != KindSendNotification {
		t.Fatalf("surviving command: got %+v", res.Commands[0])
	}
}

func TestChatDefaultDisplayText(t *testing.T) {
	reply := "ACTION_JSON:{\"type\":\"update_in_scale\",\"driverName\":\"Sam\",\"waveIndex\":0}"
	svc := newTestService(t, directory.NewMemoryStore(), &fakeModel{reply: reply})

	res, err := svc.Chat(context.Background(), ChatInput{Scope: testScope, Text: "move Sam"})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if res.Text != "Done." {
		t.Fatalf("empty display must fall back to %q, got %q", "Done.", res.Text)
	}
}

func TestChatAnswersWithoutSnapshotOnStoreOutage(t *testing.T) {
	store := directory.NewMemoryStore()
	// Every collection fails; the builder still returns an empty snapshot,
	// so this exercises the degraded path end to end.
	store.Fail = map[string]error{}
	for _, col := range []string{
		directory.CollectionDrivers, directory.CollectionShifts,
		directory.CollectionLocationResponses, directory.CollectionAvailability,
		directory.CollectionAttendance, directory.CollectionReturns,
		directory.CollectionNotificationsLog,
	} {
		store.Fail[testScope+"/"+col] = errors.New("store down")
	}
	model := &fakeModel{reply: "I cannot see the schedule right now."}
	svc := newTestService(t, store, model)

	res, err := svc.Chat(context.Background(), ChatInput{Scope: testScope, Text: "who works today?"})
	if err != nil {
		t.Fatalf("Chat must degrade, not fail: %v", err)
	}
	if res.Text == "" {
		t.Fatalf("reply must pass through")
	}
	system := model.lastReq.Messages[0].Content.(string)
	if strings.Contains(system, "BASE DATA (use to answer):") {
		t.Fatalf("degraded call must not claim base data:\n%s", system)
	}
}

func TestInvalidateSnapshotForcesRebuild(t *testing.T) {
	store := directory.NewMemoryStore()
	model := &fakeModel{reply: "ok"}
	svc := newTestService(t, store, model)

	if _, err := svc.Chat(context.Background(), ChatInput{Scope: testScope, Text: "hi"}); err != nil {
		t.Fatalf("Chat: %v", err)
	}

	store.Seed(testScope, directory.CollectionDrivers, "d1", map[string]any{
		"name": "Nova", "role": "driver", "active": true,
	})
	svc.InvalidateSnapshot(testScope)

	if _, err := svc.Chat(context.Background(), ChatInput{Scope: testScope, Text: "hi again"}); err != nil {
		t.Fatalf("Chat: %v", err)
	}
	system := model.lastReq.Messages[0].Content.(string)
	if !strings.Contains(system, "Nova") {
		t.Fatalf("invalidation must surface newly written data:\n%s", system)
	}
}
