package approval

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/jonathan/outreach-agent/internal/drafts"
	"github.com/jonathan/outreach-agent/internal/types"
)

// Notifier tells the human a draft needs review and hands off approved messages.
type Notifier interface {
	RequestApproval(ctx context.Context, sess *drafts.Session) error
	Handoff(ctx context.Context, h *types.Handoff) error
}

// sender is the part of tgbotapi.BotAPI the notifier uses.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramNotifier sends review requests to a single chat.
type TelegramNotifier struct {
	bot    sender
	chatID int64
}

// NewTelegramNotifier connects to the bot API with token.
func NewTelegramNotifier(token string, chatID int64) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram bot: %w", err)
	}
	return &TelegramNotifier{bot: bot, chatID: chatID}, nil
}

func (t *TelegramNotifier) RequestApproval(_ context.Context, sess *drafts.Session) error {
	return t.send(formatApproval(sess))
}

func (t *TelegramNotifier) Handoff(_ context.Context, h *types.Handoff) error {
	return t.send(formatHandoff(h))
}

func (t *TelegramNotifier) send(text string) error {
	msg := tgbotapi.NewMessage(t.chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	_, err := t.bot.Send(msg)
	return err
}

func formatApproval(sess *drafts.Session) string {
	d := sess.Draft
	var b strings.Builder
	fmt.Fprintf(&b, "<b>Draft for %s</b>", html.EscapeString(sess.ContactName))
	if sess.Company != "" {
		fmt.Fprintf(&b, " (%s)", html.EscapeString(sess.Company))
	}
	b.WriteString("\n")
	if sess.Role != "" {
		fmt.Fprintf(&b, "Role: %s\n", html.EscapeString(sess.Role))
	}
	limit := "no limit"
	if d.MaxAllowed != nil {
		limit = fmt.Sprintf("%d max", *d.MaxAllowed)
	}
	fmt.Fprintf(&b, "Pipeline: %s | %d chars (%s) | revision %d\n", d.Pipeline, d.CharCount, limit, d.Revision)
	if d.HasEpicGap {
		b.WriteString("Skill gap flagged\n")
	}
	fmt.Fprintf(&b, "\n<pre>%s</pre>\n\n", html.EscapeString(d.Message))
	fmt.Fprintf(&b, "Contact ID: <code>%s</code>", html.EscapeString(d.ContactID))
	return b.String()
}

func formatHandoff(h *types.Handoff) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<b>Approved: %s</b>\n", html.EscapeString(h.ContactName))
	if h.ProfileURL != "" {
		fmt.Fprintf(&b, "<a href=\"%s\">Open profile</a>\n", html.EscapeString(h.ProfileURL))
	}
	fmt.Fprintf(&b, "%s\n\n<pre>%s</pre>", html.EscapeString(h.Instruction), html.EscapeString(h.Message))
	return b.String()
}

// LogNotifier writes approval requests to the log, for runs without a bot.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a LogNotifier. A nil logger means slog.Default().
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger}
}

func (l *LogNotifier) RequestApproval(ctx context.Context, sess *drafts.Session) error {
	l.logger.InfoContext(ctx, "draft awaiting approval",
		slog.String("contact_id", sess.Draft.ContactID),
		slog.String("contact_name", sess.ContactName),
		slog.String("pipeline", string(sess.Draft.Pipeline)),
		slog.Int("char_count", sess.Draft.CharCount),
		slog.Int("revision", sess.Draft.Revision),
		slog.String("message", sess.Draft.Message))
	return nil
}

func (l *LogNotifier) Handoff(ctx context.Context, h *types.Handoff) error {
	l.logger.InfoContext(ctx, "message approved for manual send",
		slog.String("contact_id", h.ContactID),
		slog.String("linkedin_url", h.ProfileURL),
		slog.String("instruction", h.Instruction))
	return nil
}
