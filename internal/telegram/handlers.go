package telegram

import (
	"context"
	"fmt"
	"log"
	"math/rand/v2"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/abramau/gavrila/internal/assistant"
	"github.com/abramau/gavrila/internal/config"
	"github.com/abramau/gavrila/internal/feeds"
	"github.com/abramau/gavrila/internal/history"
)

const (
	fallbackText      = "Something went sideways, try again later."
	resetOKText       = "AI context wiped. Clean slate!"
	resetFailText     = "Could not confirm the reset, the counter is untouched. Try again."
	fixturesFailText  = "Could not fetch match data."
	fixturesEmptyText = "No recent matches found."
)

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil || msg.Text == "" {
		return
	}

	if b.cfg.TargetUserID != 0 && msg.From.ID == b.cfg.TargetUserID && b.cfg.TargetReaction != "" {
		b.react(msg)
	}

	if msg.IsCommand() {
		b.handleCommand(ctx, msg)
		return
	}

	lower := strings.ToLower(strings.TrimSpace(msg.Text))

	if resp, ok := b.triggerResponse(lower); ok {
		b.observeInbound(ctx, msg)
		b.reply(ctx, msg, resp, true)
		return
	}

	mention := "@" + strings.ToLower(b.self.UserName)
	isTagged := b.self.UserName != "" && strings.Contains(lower, mention)
	isReplyToBot := msg.ReplyToMessage != nil &&
		msg.ReplyToMessage.From != nil &&
		msg.ReplyToMessage.From.ID == b.self.ID

	if isTagged || isReplyToBot {
		// The assistant records both sides of the exchange itself; no
		// separate observe here or the query would be stored twice.
		b.answerQuery(ctx, msg, isTagged, isReplyToBot)
		return
	}

	b.observeInbound(ctx, msg)
}

// observeInbound appends a tracked user message that is not going through
// the model.
func (b *Bot) observeInbound(ctx context.Context, msg *tgbotapi.Message) {
	if !b.tracked(msg.Chat.ID) {
		return
	}
	ref := strconv.Itoa(msg.MessageID)
	if err := b.assistant.Observe(ctx, msg.Chat.ID, msg.From.ID, ref, history.RoleUser, msg.Text); err != nil {
		log.Printf("telegram: record message chat=%d: %v", msg.Chat.ID, err)
	}
}

func (b *Bot) answerQuery(ctx context.Context, msg *tgbotapi.Message, tagged, replyToBot bool) {
	query := msg.Text
	if tagged {
		query = stripMention(query, b.self.UserName)
	}

	repliedTo := ""
	if replyToBot {
		repliedTo = msg.ReplyToMessage.Text
	}

	reply, err := b.assistant.Reply(ctx, assistant.ReplyRequest{
		ChatID:     msg.Chat.ID,
		AuthorID:   msg.From.ID,
		MessageRef: strconv.Itoa(msg.MessageID),
		Query:      query,
		RepliedTo:  repliedTo,
		Track:      b.tracked(msg.Chat.ID),
	})
	if err != nil {
		log.Printf("telegram: assistant chat=%d: %v", msg.Chat.ID, err)
	}
	if reply == "" {
		// Model never produced an answer; history was left untouched.
		b.reply(ctx, msg, fallbackText, false)
		return
	}
	// A non-empty reply with an error means only persistence failed; the
	// answer still goes out once, and is not re-recorded here.
	b.reply(ctx, msg, reply, false)
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	cmd := msg.Command()
	switch cmd {
	case "start":
		b.reply(ctx, msg, fmt.Sprintf("Hi, I'm gavrila v%s", config.Version), true)
	case "version":
		b.reply(ctx, msg, fmt.Sprintf("Bot version: %s", config.Version), true)
	case "reset":
		if _, err := b.assistant.Reset(ctx, msg.Chat.ID); err != nil {
			log.Printf("telegram: reset chat=%d: %v", msg.Chat.ID, err)
			b.reply(ctx, msg, resetFailText, false)
			return
		}
		b.reply(ctx, msg, resetOKText, true)
	default:
		if teamID, ok := b.cfg.TeamIDs[cmd]; ok {
			b.handleFixtures(ctx, msg, cmd, teamID)
		}
	}
}

func (b *Bot) handleFixtures(ctx context.Context, msg *tgbotapi.Message, teamName string, teamID int64) {
	fixtures, err := b.feeds.LastFixtures(ctx, teamID, 5)
	if err != nil {
		log.Printf("telegram: fixtures team=%d: %v", teamID, err)
		b.reply(ctx, msg, fixturesFailText, true)
		return
	}
	if len(fixtures) == 0 {
		b.reply(ctx, msg, fixturesEmptyText, true)
		return
	}

	goals := make(map[int64][]feeds.GoalEvent, len(fixtures))
	for _, f := range fixtures {
		evs, err := b.feeds.GoalEvents(ctx, f.ID)
		if err != nil {
			log.Printf("telegram: events fixture=%d: %v", f.ID, err)
			continue
		}
		goals[f.ID] = evs
	}

	b.reply(ctx, msg, feeds.FormatFixtures(teamName, teamID, fixtures, goals), true)
}

// triggerResponse resolves an exact-match keyword trigger. A configured rare
// response preempts the weighted pick with the configured chance.
func (b *Bot) triggerResponse(lower string) (string, bool) {
	opts, ok := b.cfg.Triggers[lower]
	if !ok || len(opts) == 0 {
		return "", false
	}
	if rare, ok := b.cfg.RareResponses[lower]; ok && rare != "" && rand.Float64() < b.cfg.RareChance {
		return rare, true
	}
	return opts[rand.IntN(len(opts))], true
}

// stripMention removes the bot's @username from the query, case-insensitively.
// Matching walks the original text rune by rune: lowercasing the whole string
// first would shift byte offsets for case pairs of unequal length.
func stripMention(text, username string) string {
	if username == "" {
		return strings.TrimSpace(text)
	}
	mention := "@" + username
	var b strings.Builder
	for i := 0; i < len(text); {
		if n := mentionLen(text[i:], mention); n > 0 {
			i += n
			continue
		}
		_, size := utf8.DecodeRuneInString(text[i:])
		b.WriteString(text[i : i+size])
		i += size
	}
	return strings.TrimSpace(b.String())
}

// mentionLen reports the byte length of a case-insensitive match of mention
// at the start of s, or -1 when s does not start with one.
func mentionLen(s, mention string) int {
	n := 0
	for _, mr := range mention {
		r, size := utf8.DecodeRuneInString(s[n:])
		if size == 0 || unicode.ToLower(r) != unicode.ToLower(mr) {
			return -1
		}
		n += size
	}
	return n
}
