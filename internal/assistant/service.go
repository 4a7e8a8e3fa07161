package assistant

import (
	"context"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/abramau/gavrila/internal/history"
	"github.com/abramau/gavrila/internal/llm"
)

// DefaultWindow is the number of prior turns fed to the model.
const DefaultWindow = 30

// Service assembles model context from the epoch-scoped transcript and
// records completed exchanges. It holds no state of its own; every call
// resolves the chat's current epoch first, so a concurrent /reset takes
// effect on the very next message.
type Service struct {
	epochs   *history.EpochRegistry
	store    *history.Store
	provider llm.Provider
	persona  string
	window   int
}

func NewService(epochs *history.EpochRegistry, store *history.Store, provider llm.Provider, persona string, window int) *Service {
	if window <= 0 || window > 100 {
		window = DefaultWindow
	}
	return &Service{epochs: epochs, store: store, provider: provider, persona: persona, window: window}
}

// ReplyRequest describes one inbound query routed to the model.
type ReplyRequest struct {
	ChatID     int64
	AuthorID   int64
	MessageRef string
	Query      string
	// RepliedTo carries the text of the bot message the user replied to,
	// when that is how the query arrived. Empty otherwise.
	RepliedTo string
	// Track controls whether the exchange is persisted. Only the home chat
	// is tracked.
	Track bool
}

// Reply builds the bounded context window for the chat's current epoch,
// calls the model, and (for tracked chats) appends both sides of the
// exchange under that epoch.
//
// When the model call succeeds but persisting the exchange fails, the reply
// is returned together with the error: delivery and durability are
// decoupled, and the caller must not re-send the reply over a storage
// hiccup.
func (s *Service) Reply(ctx context.Context, req ReplyRequest) (string, error) {
	epoch, err := s.epochs.Current(ctx, req.ChatID)
	if err != nil {
		return "", fmt.Errorf("resolve epoch: %w", err)
	}

	window, err := s.store.RecentWindow(ctx, req.ChatID, epoch, s.window)
	if err != nil {
		return "", fmt.Errorf("load context window: %w", err)
	}

	msgs := make([]llm.Message, 0, len(window)+3)
	msgs = append(msgs, llm.Message{Role: "system", Content: SystemPrompt(s.persona, time.Now())})
	for _, t := range window {
		msgs = append(msgs, llm.Message{Role: t.Role, Content: t.Content})
	}
	// A reply-to-bot action references text the platform does not resend;
	// splice it in unless it is already the window tail.
	if req.RepliedTo != "" {
		if len(window) == 0 || window[len(window)-1].Content != req.RepliedTo {
			msgs = append(msgs, llm.Message{Role: history.RoleAssistant, Content: req.RepliedTo})
		}
	}
	msgs = append(msgs, llm.Message{Role: history.RoleUser, Content: req.Query})

	reply, err := s.provider.Chat(ctx, msgs)
	if err != nil {
		return "", fmt.Errorf("model call: %w", err)
	}

	if !req.Track {
		return reply, nil
	}

	if err := s.store.Append(ctx, req.ChatID, epoch, history.RoleUser, req.AuthorID, req.MessageRef, req.Query); err != nil {
		return reply, fmt.Errorf("record user turn: %w", err)
	}
	if err := s.store.Append(ctx, req.ChatID, epoch, history.RoleAssistant, 0, ulid.Make().String(), reply); err != nil {
		return reply, fmt.Errorf("record assistant turn: %w", err)
	}
	return reply, nil
}

// Observe appends one tracked message that did not go through the model
// (plain chatter, command replies) under the chat's current epoch.
func (s *Service) Observe(ctx context.Context, chatID, authorID int64, messageRef, role, content string) error {
	epoch, err := s.epochs.Current(ctx, chatID)
	if err != nil {
		return fmt.Errorf("resolve epoch: %w", err)
	}
	return s.store.Append(ctx, chatID, epoch, role, authorID, messageRef, content)
}

// Reset advances the chat's epoch, orphaning all prior context from future
// windows without touching the stored rows.
func (s *Service) Reset(ctx context.Context, chatID int64) (int64, error) {
	return s.epochs.Advance(ctx, chatID)
}
