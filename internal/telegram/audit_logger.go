package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-telegram/bot"
	"github.com/kvant-lab/vpnbot/internal/config"
)

const maxAuditMessageLen = 4096

// AuditLogger mirrors high-visibility business events into a Telegram log
// chat with per-type topics. Delivery is best-effort.
type AuditLogger struct {
	bot *bot.Bot
	cfg *config.Config
}

func NewAuditLogger(cfg *config.Config) *AuditLogger {
	return &AuditLogger{cfg: cfg}
}

// Attach binds the bot instance. Until it is called the logger drops
// everything silently.
func (l *AuditLogger) Attach(b *bot.Bot) {
	l.bot = b
}

type AuditType string

const (
	AuditTypeError        AuditType = "error"
	AuditTypePayment      AuditType = "payment"
	AuditTypeExpiry       AuditType = "expiry"
	AuditTypeRegistration AuditType = "registration"
)

func (l *AuditLogger) Log(auditType AuditType, message string) {
	if l == nil || l.bot == nil || l.cfg.LogTelegramChatID == 0 {
		return
	}

	topicID := l.getTopicID(auditType)
	if topicID == 0 {
		return
	}

	if len([]rune(message)) > maxAuditMessageLen {
		message = string([]rune(message)[:maxAuditMessageLen-20]) + "\n\n... (truncated)"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := l.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:          l.cfg.LogTelegramChatID,
		Text:            message,
		ParseMode:       "Markdown",
		MessageThreadID: topicID,
	})
	if err != nil {
		slog.Error("failed to send telegram audit log", "type", auditType, "error", err)
	}
}

func (l *AuditLogger) LogError(err error, context string) {
	msg := fmt.Sprintf("❌ *Error*\n\n*Context:* %s\n*Error:* `%s`\n*Time:* %s",
		context, err.Error(), time.Now().Format("2006-01-02 15:04:05"))
	l.Log(AuditTypeError, msg)
}

func (l *AuditLogger) LogRegistration(telegramID int64, username string) {
	msg := fmt.Sprintf("👤 *New User*\n\n*ID:* `%d`\n*Username:* @%s", telegramID, username)
	l.Log(AuditTypeRegistration, msg)
}

func (l *AuditLogger) LogPayment(telegramID int64, stars int64, payload string) {
	msg := fmt.Sprintf("💰 *Payment Completed*\n\n*User:* `%d`\n*Stars:* %d ⭐\n*Payload:* `%s`",
		telegramID, stars, payload)
	l.Log(AuditTypePayment, msg)
}

func (l *AuditLogger) LogExpirySweep(processed, found int) {
	msg := fmt.Sprintf("⏰ *Expiry Sweep*\n\n*Deactivated:* %d of %d", processed, found)
	l.Log(AuditTypeExpiry, msg)
}

func (l *AuditLogger) getTopicID(auditType AuditType) int {
	switch auditType {
	case AuditTypeError:
		return l.cfg.LogTopicError
	case AuditTypePayment:
		return l.cfg.LogTopicPayment
	case AuditTypeExpiry:
		return l.cfg.LogTopicExpiry
	case AuditTypeRegistration:
		return l.cfg.LogTopicRegistration
	default:
		return 0
	}
}
