package telegram

import (
	"fmt"
	"strings"

	"github.com/set-night/orderboard/internal/domain"
)

const noPointsYet = "_No points have been awarded yet._"

// MaxDisplay formats a completion cap the way boards show it.
func MaxDisplay(maxCompletions int) string {
	if maxCompletions == 0 {
		return "Unlimited"
	}
	return fmt.Sprintf("%dx", maxCompletions)
}

func taskLines(b *strings.Builder, tasks []domain.Task) {
	for _, t := range tasks {
		fmt.Fprintf(b, "\n*%s*\n⭐ %d pts · 🔁 %s\n", EscapeMarkdown(t.Name), t.Points, MaxDisplay(t.MaxCompletions))
	}
}

// RenderCatalogText is the admin facing order management board.
func RenderCatalogText(tasks []domain.Task) string {
	var b strings.Builder
	b.WriteString("📋 *Order Management*\n")
	if len(tasks) == 0 {
		b.WriteString("\n_No orders yet. Create one with /taskcreate._")
		return b.String()
	}
	taskLines(&b, tasks)
	fmt.Fprintf(&b, "\n%d order(s) · /taskcreate · /taskdelete", len(tasks))
	return b.String()
}

// RenderOpenTasksText is the member facing list of claimable orders.
func RenderOpenTasksText(tasks []domain.Task) string {
	var b strings.Builder
	b.WriteString("📋 *Open Orders*\n")
	if len(tasks) == 0 {
		b.WriteString("\n_No open orders right now._")
		return b.String()
	}
	taskLines(&b, tasks)
	b.WriteString("\nUse /claim to submit completed orders.")
	return b.String()
}

func statusLine(status domain.SubmissionStatus) string {
	switch status {
	case domain.SubmissionApproved:
		return "✅ *APPROVED*"
	case domain.SubmissionRejected:
		return "❌ *NOT APPROVED*"
	default:
		return "🕐 *PENDING*"
	}
}

// RenderSubmissionText is the card shown in the claim and approval chats.
func RenderSubmissionText(view domain.SubmissionView) string {
	sub := view.Submission
	name := view.MemberName
	if name == "" {
		name = "User " + sub.MemberID
	}

	var b strings.Builder
	b.WriteString("🏆 *Task Submission*\n\n")
	fmt.Fprintf(&b, "👤 Member: %s\n", EscapeMarkdown(name))
	fmt.Fprintf(&b, "📌 Task: %s\n", EscapeMarkdown(sub.Task.Name))
	fmt.Fprintf(&b, "🔄 Submissions: %dx\n", sub.Amount)
	fmt.Fprintf(&b, "⭐ Points per Completion: %d pts\n", sub.Task.Points)
	fmt.Fprintf(&b, "💰 Points Earned: *%d pts*\n\n", sub.EarnedPoints)
	fmt.Fprintf(&b, "📅 Weekly Total: *%d pts*\n", view.Totals.Weekly)
	fmt.Fprintf(&b, "🗓️ Monthly Total: *%d pts*\n\n", view.Totals.Monthly)
	fmt.Fprintf(&b, "📋 Status: %s\n\n", statusLine(sub.Status))
	fmt.Fprintf(&b, "_Max completions for this task: %s_", MaxDisplay(sub.Task.MaxCompletions))
	if !sub.IsPending() && view.ReviewerName != "" {
		fmt.Fprintf(&b, "\n_Reviewed by %s_", EscapeMarkdown(view.ReviewerName))
	}
	return b.String()
}

var medals = map[int]string{1: "🥇", 2: "🥈", 3: "🥉"}

// RenderLeaderboardText renders a live or archived standing.
func RenderLeaderboardText(board domain.Leaderboard) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*%s*\n\n", EscapeMarkdown(board.Title))

	if len(board.Entries) == 0 {
		b.WriteString(noPointsYet)
	}
	for _, e := range board.Entries {
		icon, ok := medals[e.Rank]
		if !ok {
			icon = fmt.Sprintf("*#%d*", e.Rank)
		}
		fmt.Fprintf(&b, "%s %s - *%d pts* (%s%%)\n", icon, EscapeMarkdown(e.DisplayName), e.Points, e.Share.String())
	}

	if board.Footer != "" {
		fmt.Fprintf(&b, "\n_%s_", EscapeMarkdown(board.Footer))
	}
	return strings.TrimRight(b.String(), "\n")
}
