package telegram

import (
	"fmt"
	"strings"
	"testing"

	"github.com/set-night/orderboard/internal/domain"
)

func tasks(n int) []domain.Task {
	out := make([]domain.Task, n)
	for i := range out {
		out[i] = domain.Task{Key: fmt.Sprintf("task_%d", i), Name: fmt.Sprintf("Task %d", i), Points: 1}
	}
	return out
}

func TestAmountKeyboardRespectsRemaining(t *testing.T) {
	kb := AmountKeyboard("hunt", []int{1, 2, 3, 5, 10}, 3)
	row := kb.InlineKeyboard[0]
	if len(row) != 3 {
		t.Fatalf("expected 3 options, got %d", len(row))
	}
	if row[2].CallbackData != "amt_3_hunt" {
		t.Fatalf("unexpected callback %q", row[2].CallbackData)
	}

	if unlimited := AmountKeyboard("hunt", []int{1, 2, 3, 5, 10}, -1); len(unlimited.InlineKeyboard[0]) != 5 {
		t.Fatalf("unlimited task should offer every option")
	}
	if none := AmountKeyboard("hunt", []int{1, 2}, 0); none != nil {
		t.Fatalf("expected no keyboard at cap")
	}
}

func TestDeleteListKeyboardPages(t *testing.T) {
	list := tasks(12)

	kb := DeleteListKeyboard(list, 1, 5)
	if len(kb.InlineKeyboard) != 6 {
		t.Fatalf("expected 5 tasks and a pagination row, got %d rows", len(kb.InlineKeyboard))
	}
	if got := kb.InlineKeyboard[0][0].CallbackData; got != "del_task_5" {
		t.Fatalf("unexpected first button %q", got)
	}
	nav := kb.InlineKeyboard[5]
	if nav[0].CallbackData != "delpage_0" || nav[1].Text != "2/3" || nav[2].CallbackData != "delpage_2" {
		t.Fatalf("unexpected pagination row %+v", nav)
	}

	last := DeleteListKeyboard(list, 9, 5)
	if len(last.InlineKeyboard) != 3 {
		t.Fatalf("out of range page should clamp to the last page, got %d rows", len(last.InlineKeyboard))
	}

	single := DeleteListKeyboard(tasks(2), 0, 5)
	if len(single.InlineKeyboard) != 2 {
		t.Fatalf("single page must not paginate")
	}
}

func TestCallbackDataFitsLimit(t *testing.T) {
	key := strings.Repeat("k", domain.MaxTaskKeyLen)
	for _, data := range []string{
		CallbackClaim + key,
		fmt.Sprintf("%s%d_%s", CallbackAmount, 10, key),
		CallbackDelete + key,
	} {
		if len(data) > 64 {
			t.Fatalf("callback data too long: %d bytes", len(data))
		}
	}
}

func TestTaskPickerKeyboard(t *testing.T) {
	kb := TaskPickerKeyboard(tasks(3))
	if len(kb.InlineKeyboard) != 2 || len(kb.InlineKeyboard[1]) != 1 {
		t.Fatalf("expected rows of two, got %+v", kb.InlineKeyboard)
	}
	if kb.InlineKeyboard[0][1].CallbackData != "claim_task_1" {
		t.Fatalf("unexpected callback %q", kb.InlineKeyboard[0][1].CallbackData)
	}
}
