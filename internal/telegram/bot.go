// Package telegram is the inbound dispatcher: long-polls the Bot API, routes
// commands, keyword triggers, and model queries, and mirrors every tracked
// exchange into the transcript store. It owns no history semantics itself.
package telegram

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/abramau/gavrila/internal/assistant"
	"github.com/abramau/gavrila/internal/config"
	"github.com/abramau/gavrila/internal/feeds"
	"github.com/abramau/gavrila/internal/history"
)

const handleTimeout = 2 * time.Minute

type Bot struct {
	api       *tgbotapi.BotAPI
	self      tgbotapi.User
	assistant *assistant.Service
	feeds     *feeds.Client
	cfg       config.Config
}

func New(cfg config.Config, svc *assistant.Service, fc *feeds.Client) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		return nil, fmt.Errorf("telegram: %w", err)
	}
	return &Bot{api: api, self: api.Self, assistant: svc, feeds: fc, cfg: cfg}, nil
}

// Run long-polls updates and fans them out to a bounded worker pool, so one
// slow model call never blocks unrelated chats. Blocks until ctx cancels.
func (b *Bot) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	u.AllowedUpdates = []string{"message"}
	updates := b.api.GetUpdatesChan(u)

	concurrency := b.cfg.WorkerConcurrency
	if concurrency <= 0 {
		concurrency = 4
	}

	log.Printf("telegram: dispatcher started as @%s concurrency=%d", b.self.UserName, concurrency)

	jobs := make(chan tgbotapi.Update, concurrency*2)

	var wg sync.WaitGroup
	wg.Add(concurrency)
	for i := 0; i < concurrency; i++ {
		go func() {
			defer wg.Done()
			for upd := range jobs {
				if upd.Message == nil {
					continue
				}
				hctx, cancel := context.WithTimeout(ctx, handleTimeout)
				b.safeHandle(hctx, upd.Message)
				cancel()
			}
		}()
	}

	for {
		select {
		case <-ctx.Done():
			log.Printf("telegram: dispatcher shutting down")
			b.api.StopReceivingUpdates()
			close(jobs)
			wg.Wait()
			return
		case upd, ok := <-updates:
			if !ok {
				log.Printf("telegram: update channel closed")
				close(jobs)
				wg.Wait()
				return
			}
			jobs <- upd
		}
	}
}

// safeHandle confines a panic to the one update that caused it, keeping the
// rest of the pool alive.
func (b *Bot) safeHandle(ctx context.Context, msg *tgbotapi.Message) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("telegram: handler panic chat=%d msg=%d: %v", msg.Chat.ID, msg.MessageID, r)
		}
	}()
	b.handleMessage(ctx, msg)
}

// tracked reports whether a chat's transcript is recorded.
func (b *Bot) tracked(chatID int64) bool {
	return chatID == b.cfg.HomeChatID
}

// reply sends text as a reply to msg. When record is set, the outbound
// message is appended to the tracked transcript; append failures are logged
// only, the reply has already been delivered.
func (b *Bot) reply(ctx context.Context, msg *tgbotapi.Message, text string, record bool) {
	m := tgbotapi.NewMessage(msg.Chat.ID, text)
	m.ReplyToMessageID = msg.MessageID
	sent, err := b.api.Send(m)
	if err != nil {
		log.Printf("telegram: send chat=%d: %v", msg.Chat.ID, err)
		return
	}
	if record && b.tracked(msg.Chat.ID) {
		ref := strconv.Itoa(sent.MessageID)
		if err := b.assistant.Observe(ctx, msg.Chat.ID, b.self.ID, ref, history.RoleAssistant, text); err != nil {
			log.Printf("telegram: record reply chat=%d: %v", msg.Chat.ID, err)
		}
	}
}

// PostDigest sends the morning digest to the home chat and records it.
func (b *Bot) PostDigest(ctx context.Context, text string) error {
	m := tgbotapi.NewMessage(b.cfg.HomeChatID, text)
	m.ParseMode = tgbotapi.ModeMarkdown
	sent, err := b.api.Send(m)
	if err != nil {
		return fmt.Errorf("telegram: post digest: %w", err)
	}
	ref := strconv.Itoa(sent.MessageID)
	if err := b.assistant.Observe(ctx, b.cfg.HomeChatID, b.self.ID, ref, history.RoleAssistant, text); err != nil {
		log.Printf("telegram: record digest: %v", err)
	}
	return nil
}

// react puts the configured emoji reaction on a message. The endpoint
// postdates the client library, so this goes through the raw API.
func (b *Bot) react(msg *tgbotapi.Message) {
	params := tgbotapi.Params{}
	params.AddNonZero64("chat_id", msg.Chat.ID)
	params.AddNonZero("message_id", msg.MessageID)
	params["reaction"] = fmt.Sprintf(`[{"type":"emoji","emoji":%q}]`, b.cfg.TargetReaction)
	if _, err := b.api.MakeRequest("setMessageReaction", params); err != nil {
		log.Printf("telegram: react chat=%d msg=%d: %v", msg.Chat.ID, msg.MessageID, err)
	}
}
