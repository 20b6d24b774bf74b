package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-telegram/bot"

	"github.com/set-night/orderboard/internal/config"
	"github.com/set-night/orderboard/internal/domain"
)

type TelegramLogger struct {
	bot *bot.Bot
	cfg *config.Config
}

func NewTelegramLogger(b *bot.Bot, cfg *config.Config) *TelegramLogger {
	return &TelegramLogger{bot: b, cfg: cfg}
}

type LogType string

const (
	LogTypeError   LogType = "error"
	LogTypeClaim   LogType = "claim"
	LogTypeReview  LogType = "review"
	LogTypeCatalog LogType = "catalog"
	LogTypeReset   LogType = "reset"
)

func (l *TelegramLogger) Log(logType LogType, message string) {
	if l.cfg.LogTelegramChatID == 0 {
		return
	}

	topicID := l.getTopicID(logType)
	if topicID == 0 {
		return
	}

	// Truncate if too long
	if len([]rune(message)) > MaxMessageLen {
		message = string([]rune(message)[:MaxMessageLen-20]) + "\n\n... (truncated)"
	}

	ctx, cancel := context.WithTimeout(context.Background(), config.NotifyTimeout)
	defer cancel()

	_, err := l.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:          l.cfg.LogTelegramChatID,
		Text:            message,
		ParseMode:       "Markdown",
		MessageThreadID: topicID,
	})
	if err != nil {
		slog.Error("failed to send telegram log", "type", logType, "error", err)
	}
}

func (l *TelegramLogger) LogError(err error, context string) {
	msg := fmt.Sprintf("❌ *Error*\n\n*Context:* %s\n*Error:* `%s`\n*Time:* %s",
		EscapeMarkdown(context), err.Error(), time.Now().Format("2006-01-02 15:04:05"))
	l.Log(LogTypeError, msg)
}

func (l *TelegramLogger) LogClaim(view domain.SubmissionView) {
	sub := view.Submission
	msg := fmt.Sprintf("📝 *New Claim*\n\n*Member:* %s (`%s`)\n*Task:* %s\n*Amount:* %dx\n*Points:* %d\n*ID:* `%s`",
		EscapeMarkdown(view.MemberName), sub.MemberID, EscapeMarkdown(sub.Task.Name), sub.Amount, sub.EarnedPoints, sub.ID)
	l.Log(LogTypeClaim, msg)
}

func (l *TelegramLogger) LogReview(view domain.SubmissionView) {
	sub := view.Submission
	msg := fmt.Sprintf("⚖️ *Claim %s*\n\n*Member:* %s (`%s`)\n*Task:* %s\n*Points:* %d\n*Reviewer:* %s\n*ID:* `%s`",
		sub.Status, EscapeMarkdown(view.MemberName), sub.MemberID, EscapeMarkdown(sub.Task.Name), sub.EarnedPoints,
		EscapeMarkdown(view.ReviewerName), sub.ID)
	l.Log(LogTypeReview, msg)
}

func (l *TelegramLogger) LogCatalog(action string, task domain.Task, actor domain.Actor) {
	msg := fmt.Sprintf("📋 *Order %s*\n\n*Name:* %s\n*Points:* %d\n*Max:* %s\n*By:* %s (`%s`)",
		action, EscapeMarkdown(task.Name), task.Points, MaxDisplay(task.MaxCompletions), EscapeMarkdown(actor.DisplayName), actor.ID)
	l.Log(LogTypeCatalog, msg)
}

func (l *TelegramLogger) LogReset(archive domain.LeaderboardArchive) {
	var total int64
	for _, rec := range archive.Snapshot {
		total += rec.TotalPoints
	}
	msg := fmt.Sprintf("🔄 *%s reset*\n\n*Archive:* `%s`\n*Members:* %d\n*Points:* %d",
		archive.Period, archive.ID, len(archive.Snapshot), total)
	l.Log(LogTypeReset, msg)
}

func (l *TelegramLogger) getTopicID(logType LogType) int {
	switch logType {
	case LogTypeError:
		return l.cfg.LogTopicError
	case LogTypeClaim:
		return l.cfg.LogTopicClaim
	case LogTypeReview:
		return l.cfg.LogTopicReview
	case LogTypeCatalog:
		return l.cfg.LogTopicCatalog
	case LogTypeReset:
		return l.cfg.LogTopicReset
	default:
		return 0
	}
}
