package telegram

import (
	"fmt"

	"github.com/go-telegram/bot/models"

	"github.com/set-night/orderboard/internal/domain"
)

// Callback data prefixes.
const (
	CallbackClaim      = "claim_"
	CallbackAmount     = "amt_"
	CallbackApprove    = "approve_"
	CallbackReject     = "reject_"
	CallbackDelete     = "del_"
	CallbackDeletePage = "delpage"
	CallbackNoop       = "cur"
)

// InlineButton creates a single inline keyboard button.
func InlineButton(text, callbackData string) models.InlineKeyboardButton {
	return models.InlineKeyboardButton{
		Text:         text,
		CallbackData: callbackData,
	}
}

// InlineKeyboard creates an inline keyboard from rows of buttons.
func InlineKeyboard(rows ...[]models.InlineKeyboardButton) *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: rows,
	}
}

// ButtonRow creates a row of inline buttons.
func ButtonRow(buttons ...models.InlineKeyboardButton) []models.InlineKeyboardButton {
	return buttons
}

// PaginationRow creates a pagination row with prev/next buttons.
func PaginationRow(currentPage, totalPages int, callbackPrefix string) []models.InlineKeyboardButton {
	var row []models.InlineKeyboardButton

	if currentPage > 0 {
		row = append(row, InlineButton("⬅️", fmt.Sprintf("%s_%d", callbackPrefix, currentPage-1)))
	}

	row = append(row, InlineButton(
		fmt.Sprintf("%d/%d", currentPage+1, totalPages),
		CallbackNoop,
	))

	if currentPage < totalPages-1 {
		row = append(row, InlineButton("➡️", fmt.Sprintf("%s_%d", callbackPrefix, currentPage+1)))
	}

	return row
}

// ReviewKeyboard carries the approve and reject buttons of a pending submission.
func ReviewKeyboard(submissionID string) *models.InlineKeyboardMarkup {
	return InlineKeyboard(ButtonRow(
		InlineButton("✅ Approved", CallbackApprove+submissionID),
		InlineButton("❌ Not Approved", CallbackReject+submissionID),
	))
}

// TaskPickerKeyboard lists every task, two per row.
func TaskPickerKeyboard(tasks []domain.Task) *models.InlineKeyboardMarkup {
	var rows [][]models.InlineKeyboardButton
	for i := 0; i < len(tasks); i += 2 {
		row := []models.InlineKeyboardButton{InlineButton(tasks[i].Name, CallbackClaim+tasks[i].Key)}
		if i+1 < len(tasks) {
			row = append(row, InlineButton(tasks[i+1].Name, CallbackClaim+tasks[i+1].Key))
		}
		rows = append(rows, row)
	}
	return InlineKeyboard(rows...)
}

// AmountKeyboard offers the amounts that still fit into remaining. A negative
// remaining means the task is unlimited.
func AmountKeyboard(taskKey string, options []int, remaining int) *models.InlineKeyboardMarkup {
	var row []models.InlineKeyboardButton
	for _, n := range options {
		if remaining >= 0 && n > remaining {
			continue
		}
		row = append(row, InlineButton(fmt.Sprintf("%dx", n), fmt.Sprintf("%s%d_%s", CallbackAmount, n, taskKey)))
	}
	if len(row) == 0 {
		return nil
	}
	return InlineKeyboard(row)
}

// DeleteListKeyboard shows one delete button per task on the given page.
func DeleteListKeyboard(tasks []domain.Task, page, perPage int) *models.InlineKeyboardMarkup {
	totalPages := TotalPages(len(tasks), perPage)
	page = ClampPage(page, totalPages)

	start := page * perPage
	end := min(start+perPage, len(tasks))

	var rows [][]models.InlineKeyboardButton
	for _, task := range tasks[start:end] {
		rows = append(rows, ButtonRow(InlineButton("🗑 "+task.Name, CallbackDelete+task.Key)))
	}
	if totalPages > 1 {
		rows = append(rows, PaginationRow(page, totalPages, CallbackDeletePage))
	}
	return InlineKeyboard(rows...)
}

func TotalPages(items, perPage int) int {
	if items == 0 {
		return 1
	}
	return (items + perPage - 1) / perPage
}

func ClampPage(page, totalPages int) int {
	return max(0, min(page, totalPages-1))
}
