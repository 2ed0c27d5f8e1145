package assistant

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/raizapp/fleetops-backend/internal/clients/hf"
	"github.com/raizapp/fleetops-backend/internal/pkg/ctxutil"
	"github.com/raizapp/fleetops-backend/internal/pkg/errors"
	"github.com/raizapp/fleetops-backend/internal/pkg/logger"
)

// ChatInput is one inbound conversational request.
type ChatInput struct {
	Scope       string
	Text        string
	ImageBase64 string
	History     []Turn
}

// ChatResult is the cleaned reply text plus zero or more normalized commands
// for the caller to execute.
type ChatResult struct {
	Text     string
	Commands []Command
}

// Service drives the full pipeline: snapshot (via cache) -> compose ->
// model call -> extraction -> normalization.
type Service interface {
	Chat(ctx context.Context, in ChatInput) (ChatResult, error)
	// InvalidateSnapshot forces the next chat for the scope to rebuild its
	// context. Callers that mutate shift/roster data invoke it.
	InvalidateSnapshot(scope string)
}

type service struct {
	log   *logger.Logger
	cache *SnapshotCache
	model hf.Client
}

func NewService(log *logger.Logger, cache *SnapshotCache, model hf.Client) (Service, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if cache == nil {
		return nil, fmt.Errorf("snapshot cache required")
	}
	if model == nil {
		return nil, fmt.Errorf("model client required")
	}
	return &service{
		log:   log.With("service", "AssistantService"),
		cache: cache,
		model: model,
	}, nil
}

func (s *service) Chat(ctx context.Context, in ChatInput) (ChatResult, error) {
	ctx = ctxutil.Default(ctx)
	if strings.TrimSpace(in.Scope) == "" {
		return ChatResult{}, fmt.Errorf("scope required: %w", errors.ErrInvalidArgument)
	}
	if strings.TrimSpace(in.Text) == "" && in.ImageBase64 == "" {
		return ChatResult{}, fmt.Errorf("text or image required: %w", errors.ErrInvalidArgument)
	}

	snapshotText := ""
	snap, err := s.cache.GetOrBuild(ctx, in.Scope)
	if err != nil {
		// The builder isolates per-section failures, so this is a
		// store-wide outage. The assistant still answers, just without
		// base data.
		s.log.Warn("Snapshot unavailable, answering without base data", "scope", in.Scope, "error", err)
	} else {
		snapshotText = snap.Text
	}

	req, err := Compose(snapshotText, in.History, in.Text, in.ImageBase64)
	if err != nil {
		return ChatResult{}, err
	}

	reply, err := s.model.Complete(ctx, req)
	if err != nil {
		if stderrors.Is(err, errors.ErrNotConfigured) {
			return ChatResult{}, err
		}
		var apiErr *hf.APIError
		switch {
		case stderrors.As(err, &apiErr) && apiErr.AuthRejected():
			s.log.Error("Model credential rejected", "scope", in.Scope, "status", apiErr.HTTPStatusCode(), "error", err)
		case stderrors.As(err, &apiErr) && apiErr.RateLimited():
			s.log.Warn("Model rate limited", "scope", in.Scope, "error", err)
		default:
			s.log.Warn("Model call failed", "scope", in.Scope, "error", err)
		}
		return ChatResult{}, fmt.Errorf("%w: %w", errors.ErrAssistantUnavailable, err)
	}
	if strings.TrimSpace(reply) == "" {
		return ChatResult{}, errors.ErrAssistantUnavailable
	}

	display, blocks := ExtractActions(reply)

	var commands []Command
	for _, block := range blocks {
		cmd, err := Normalize(block)
		if err != nil {
			// One malformed block never corrupts the rest of the reply.
			s.log.Warn("Dropping command block", "scope", in.Scope, "error", err)
			continue
		}
		commands = append(commands, cmd)
	}

	display = strings.TrimSpace(display)
	if display == "" {
		display = "Done."
	}

	return ChatResult{Text: display, Commands: commands}, nil
}

func (s *service) InvalidateSnapshot(scope string) {
	s.cache.Invalidate(scope)
}
