package handler

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/set-night/orderboard/internal/config"
	"github.com/set-night/orderboard/internal/domain"
	"github.com/set-night/orderboard/internal/middleware"
	tg "github.com/set-night/orderboard/internal/telegram"
)

func (h *Handler) handleTasks(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	tasks, err := h.catalog.ListTasks(ctx)
	if err != nil {
		h.reply(ctx, b, chatID, h.reportError(err, "list tasks"))
		return
	}
	h.reply(ctx, b, chatID, tg.RenderOpenTasksText(tasks))
}

// handleTaskCreate handles "/taskcreate Name | points | max".
func (h *Handler) handleTaskCreate(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	actor, ok := middleware.GetActor(ctx)
	if !ok {
		return
	}

	name, points, maxCompletions, err := parseTaskCreate(commandArgs(update.Message.Text))
	if err != nil {
		h.reply(ctx, b, chatID, h.reportError(err, "parse task"))
		return
	}

	task, err := h.community.OnTaskCreateRequested(ctx, actor, name, points, maxCompletions)
	if err != nil {
		h.reply(ctx, b, chatID, h.reportError(err, "create task"))
		return
	}

	h.reply(ctx, b, chatID, fmt.Sprintf("✅ *Order Created*\n\n📌 %s\n⭐ %d pts\n🔁 Max per week: %s",
		tg.EscapeMarkdown(task.Name), task.Points, tg.MaxDisplay(task.MaxCompletions)))
}

func (h *Handler) handleTaskDelete(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	actor, ok := middleware.GetActor(ctx)
	if !ok || !actor.Privileged {
		h.reply(ctx, b, chatID, h.reportError(domain.ErrPermission, "delete task"))
		return
	}

	tasks, err := h.catalog.ListTasks(ctx)
	if err != nil {
		h.reply(ctx, b, chatID, h.reportError(err, "list tasks"))
		return
	}
	if len(tasks) == 0 {
		h.reply(ctx, b, chatID, "📋 There are no orders to delete.")
		return
	}

	tg.SendCard(ctx, b, chatID, deleteListText(len(tasks)), tg.DeleteListKeyboard(tasks, 0, config.TasksPerPage))
}

func (h *Handler) handleDeleteTask(ctx context.Context, b *bot.Bot, update *models.Update) {
	key := strings.TrimPrefix(update.CallbackQuery.Data, tg.CallbackDelete)

	actor, ok := middleware.GetActor(ctx)
	if !ok {
		h.answer(ctx, b, update, "", false)
		return
	}

	task, err := h.community.OnTaskDeleteRequested(ctx, actor, key)
	switch {
	case errors.Is(err, domain.ErrTaskNotFound):
		h.answer(ctx, b, update, "Already deleted", false)
	case err != nil:
		h.answer(ctx, b, update, h.reportError(err, "delete task"), true)
		return
	default:
		h.answer(ctx, b, update, "🗑 Deleted: "+task.Name, false)
	}

	h.showDeletePage(ctx, b, update, 0)
}

func (h *Handler) handleDeletePage(ctx context.Context, b *bot.Bot, update *models.Update) {
	page, err := strconv.Atoi(strings.TrimPrefix(update.CallbackQuery.Data, tg.CallbackDeletePage+"_"))
	if err != nil {
		h.answer(ctx, b, update, "", false)
		return
	}

	actor, ok := middleware.GetActor(ctx)
	if !ok || !actor.Privileged {
		h.answer(ctx, b, update, h.reportError(domain.ErrPermission, "delete page"), true)
		return
	}

	h.answer(ctx, b, update, "", false)
	h.showDeletePage(ctx, b, update, page)
}

// showDeletePage redraws the delete list in place.
func (h *Handler) showDeletePage(ctx context.Context, b *bot.Bot, update *models.Update, page int) {
	chatID, messageID, ok := callbackChat(update)
	if !ok {
		return
	}

	tasks, err := h.catalog.ListTasks(ctx)
	if err != nil {
		h.reportError(err, "list tasks")
		return
	}
	if len(tasks) == 0 {
		tg.EditCard(ctx, b, chatID, messageID, "📋 There are no orders left.", nil)
		return
	}

	tg.EditCard(ctx, b, chatID, messageID, deleteListText(len(tasks)), tg.DeleteListKeyboard(tasks, page, config.TasksPerPage))
}

func deleteListText(n int) string {
	return fmt.Sprintf("🗑 *Delete an Order*\n\n%d order(s) in the catalog. Tap one to delete it.", n)
}
