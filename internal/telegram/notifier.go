package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/set-night/orderboard/internal/config"
	"github.com/set-night/orderboard/internal/domain"
)

// Live board slots, one message each.
const (
	boardCatalog   = "catalog"
	boardOpenTasks = "open_tasks"
)

// Notifier renders boards and submission cards into the configured chats.
// Chats with id 0 are skipped. Live boards are edited in place while the
// process runs; after a restart they are posted anew.
type Notifier struct {
	bot *bot.Bot
	cfg *config.Config

	mu   sync.Mutex
	live map[string]int
}

func NewNotifier(b *bot.Bot, cfg *config.Config) *Notifier {
	return &Notifier{bot: b, cfg: cfg, live: make(map[string]int)}
}

func (n *Notifier) RenderCatalog(ctx context.Context, tasks []domain.Task) error {
	return n.upsertLive(ctx, boardCatalog, n.cfg.TaskChatID, RenderCatalogText(tasks))
}

func (n *Notifier) RenderOpenTasks(ctx context.Context, tasks []domain.Task) error {
	return n.upsertLive(ctx, boardOpenTasks, n.cfg.OpenTasksChatID, RenderOpenTasksText(tasks))
}

// RenderSubmission posts the claim notice and the approval card on first
// render and edits both afterwards. The returned handle is "claimID:approvalID".
func (n *Notifier) RenderSubmission(ctx context.Context, view domain.SubmissionView) (string, error) {
	text := RenderSubmissionText(view)
	sub := view.Submission

	var ref ClaimRef
	if sub.ClaimMessageID != nil {
		parsed, err := ParseClaimRef(*sub.ClaimMessageID)
		if err != nil {
			return "", err
		}
		ref = parsed
	}

	var errs []error
	if n.cfg.ClaimChatID != 0 {
		id, err := n.upsert(ctx, n.cfg.ClaimChatID, ref.ClaimMessageID, text, nil)
		if err != nil {
			errs = append(errs, fmt.Errorf("claim notice: %w", err))
		} else {
			ref.ClaimMessageID = id
		}
	}

	if n.cfg.ApprovalChatID != 0 {
		var markup *models.InlineKeyboardMarkup
		if sub.IsPending() {
			markup = ReviewKeyboard(sub.ID)
		}
		id, err := n.upsert(ctx, n.cfg.ApprovalChatID, ref.ApprovalMessageID, text, markup)
		if err != nil {
			errs = append(errs, fmt.Errorf("approval card: %w", err))
		} else {
			ref.ApprovalMessageID = id
		}
	}

	if ref.IsZero() {
		return "", errors.Join(errs...)
	}
	return ref.String(), errors.Join(errs...)
}

// RenderLeaderboard edits the live board of the period, or posts archives
// as new messages.
func (n *Notifier) RenderLeaderboard(ctx context.Context, board domain.Leaderboard) error {
	chatID := n.cfg.WeeklyChatID
	if board.Period == domain.PeriodMonthly {
		chatID = n.cfg.MonthlyChatID
	}
	if chatID == 0 {
		return nil
	}

	text := RenderLeaderboardText(board)
	if board.Archived {
		_, err := SendCard(ctx, n.bot, chatID, text, nil)
		if err != nil {
			return err
		}
		// Keep the live board below the archive.
		n.mu.Lock()
		delete(n.live, string(board.Period))
		n.mu.Unlock()
		return nil
	}
	return n.upsertLive(ctx, string(board.Period), chatID, text)
}

func (n *Notifier) upsertLive(ctx context.Context, slot string, chatID int64, text string) error {
	if chatID == 0 {
		return nil
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	id, err := n.upsert(ctx, chatID, n.live[slot], text, nil)
	if id != 0 {
		n.live[slot] = id
	}
	return err
}

// upsert edits messageID when set and falls back to sending a new message
// when the edit fails, e.g. because the message was deleted.
func (n *Notifier) upsert(ctx context.Context, chatID int64, messageID int, text string, markup *models.InlineKeyboardMarkup) (int, error) {
	if messageID != 0 {
		err := EditCard(ctx, n.bot, chatID, messageID, text, markup)
		if err == nil {
			return messageID, nil
		}
		slog.Warn("edit message failed, sending a new one", "error", err, "chat_id", chatID, "message_id", messageID)
	}
	return SendCard(ctx, n.bot, chatID, text, markup)
}

// ClaimRef locates the two messages of a submission.
type ClaimRef struct {
	ClaimMessageID    int
	ApprovalMessageID int
}

func (r ClaimRef) IsZero() bool {
	return r.ClaimMessageID == 0 && r.ApprovalMessageID == 0
}

func (r ClaimRef) String() string {
	return strconv.Itoa(r.ClaimMessageID) + ":" + strconv.Itoa(r.ApprovalMessageID)
}

func ParseClaimRef(s string) (ClaimRef, error) {
	claim, approval, ok := strings.Cut(s, ":")
	if !ok {
		return ClaimRef{}, fmt.Errorf("malformed claim ref %q", s)
	}
	c, err := strconv.Atoi(claim)
	if err != nil {
		return ClaimRef{}, fmt.Errorf("malformed claim ref %q: %w", s, err)
	}
	a, err := strconv.Atoi(approval)
	if err != nil {
		return ClaimRef{}, fmt.Errorf("malformed claim ref %q: %w", s, err)
	}
	return ClaimRef{ClaimMessageID: c, ApprovalMessageID: a}, nil
}
