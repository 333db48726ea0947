package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"taskflow/internal/model"
	"taskflow/internal/service"
)

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) error {
	chatID := msg.Chat.ID
	args := strings.TrimSpace(msg.CommandArguments())

	switch msg.Command() {
	case "start", "help":
		return b.sendText(chatID, helpText)
	case "add", "newtask":
		if args == "" {
			return b.startAddConversation(chatID)
		}
		title, description := splitTitle(args)
		return b.addTask(ctx, chatID, service.TaskInput{Title: title, Description: description})
	case "tasks":
		return b.handleList(ctx, chatID, args, "")
	case "search":
		if args == "" {
			return b.sendText(chatID, "Tell me what to look for: /search milk")
		}
		return b.handleList(ctx, chatID, "", args)
	case "done":
		return b.withTask(ctx, chatID, args, func(id string) (service.Notice, error) {
			task, err := b.svc.Tasks.ToggleCompletion(ctx, id)
			return service.NoticeCompletion(task), err
		})
	case "today":
		return b.withTask(ctx, chatID, args, func(id string) (service.Notice, error) {
			task, err := b.svc.Tasks.ToggleToday(ctx, id)
			return service.NoticeToday(task), err
		})
	case "archive":
		return b.withTask(ctx, chatID, args, func(id string) (service.Notice, error) {
			task, err := b.svc.Tasks.Archive(ctx, id)
			return service.NoticeArchived(task), err
		})
	case "unarchive":
		return b.withTask(ctx, chatID, args, func(id string) (service.Notice, error) {
			task, err := b.svc.Tasks.Unarchive(ctx, id)
			return service.NoticeUnarchived(task), err
		})
	case "delete":
		return b.withTask(ctx, chatID, args, func(id string) (service.Notice, error) {
			task, err := b.svc.Tasks.Get(ctx, id)
			if err != nil {
				return service.Notice{}, err
			}
			return service.NoticeDeleted(task), b.svc.Tasks.Delete(ctx, id)
		})
	case "edit":
		return b.handleEdit(ctx, chatID, args)
	case "reset":
		if err := b.svc.Tasks.ResetToday(ctx); err != nil {
			return b.sendText(chatID, errorText(err))
		}
		return b.sendNotice(chatID, service.NoticeReset())
	case "stats":
		return b.handleStats(ctx, chatID)
	case "history":
		return b.handleHistory(ctx, chatID, args)
	case "categories":
		return b.handleCategories(ctx, chatID)
	case "theme":
		dark, err := b.svc.Theme.Toggle(ctx)
		if err != nil {
			return b.sendText(chatID, errorText(err))
		}
		if dark {
			return b.sendText(chatID, "🌙 Dark mode on.")
		}
		return b.sendText(chatID, "☀️ Dark mode off.")
	case "report":
		text, err := b.svc.Reminders.DailySummary(ctx, time.Now())
		if err != nil {
			return b.sendText(chatID, errorText(err))
		}
		return b.sendText(chatID, text)
	case "cancel":
		b.clearConversation(chatID)
		return b.sendText(chatID, "⏪ Input cancelled.")
	default:
		return b.sendText(chatID, "Unknown command. See /help.")
	}
}

func (b *Bot) handleMenuAlias(ctx context.Context, msg *tgbotapi.Message) (bool, error) {
	text := strings.TrimSpace(strings.ToLower(msg.Text))
	switch text {
	case strings.ToLower(menuLabelNewTask):
		return true, b.startAddConversation(msg.Chat.ID)
	case strings.ToLower(menuLabelAll):
		return true, b.handleList(ctx, msg.Chat.ID, string(model.FilterAll), "")
	case strings.ToLower(menuLabelToday):
		return true, b.handleList(ctx, msg.Chat.ID, string(model.FilterToday), "")
	case strings.ToLower(menuLabelStats):
		return true, b.handleStats(ctx, msg.Chat.ID)
	default:
		return false, nil
	}
}

func (b *Bot) startAddConversation(chatID int64) error {
	b.logger.Info("start add conversation", zap.Int64("chat", chatID))
	b.setConversation(chatID, &conversationState{stage: stageTitle})
	return b.sendWithReplyMarkup(chatID, "🆕 New task.\n<b>Step 1:</b> what is it called?", cancelKeyboard())
}

func (b *Bot) handleConversation(ctx context.Context, msg *tgbotapi.Message) error {
	chatID := msg.Chat.ID
	state := b.getConversation(chatID)
	if state == nil {
		return nil
	}

	text := strings.TrimSpace(msg.Text)
	switch state.stage {
	case stageTitle:
		if text == "" {
			return b.sendWithReplyMarkup(chatID, "The title cannot be empty. Try again.", cancelKeyboard())
		}
		state.input.Title = text
		state.stage = stageDescription
		return b.sendWithReplyMarkup(chatID, "✏️ Add a short description (or press «Skip»).", skipKeyboard())
	case stageDescription:
		if !isSkipInput(text) {
			state.input.Description = text
		}
		state.stage = stageCategory
		return b.sendWithReplyMarkup(chatID, "🏷 Pick a category or type your own (or «Skip»).", categoryKeyboard())
	case stageCategory:
		if !isSkipInput(text) {
			state.input.Category = text
		}
		b.clearConversation(chatID)
		return b.addTask(ctx, chatID, state.input)
	default:
		b.clearConversation(chatID)
		return b.sendText(chatID, "Conversation reset. Start again with /add.")
	}
}

func (b *Bot) addTask(ctx context.Context, chatID int64, input service.TaskInput) error {
	task, err := b.svc.Tasks.Add(ctx, input)
	if err != nil {
		return b.sendText(chatID, errorText(err))
	}
	return b.sendNotice(chatID, service.NoticeAdded(task))
}

func (b *Bot) handleList(ctx context.Context, chatID int64, rawFilter, term string) error {
	filter, err := model.ParseFilter(rawFilter)
	if err != nil {
		return b.sendText(chatID, "Unknown view. Use one of: all, today, completed, archived, history.")
	}
	if filter == model.FilterHistory {
		return b.handleHistory(ctx, chatID, "")
	}

	tasks, err := b.svc.Tasks.Search(ctx, filter, term)
	if err != nil {
		return b.sendText(chatID, errorText(err))
	}
	b.rememberList(chatID, tasks)

	if len(tasks) == 0 {
		if term != "" {
			return b.sendText(chatID, "No task found. Try other words.")
		}
		return b.sendText(chatID, emptyViewText(filter))
	}

	var buttons [][]tgbotapi.InlineKeyboardButton
	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("%s <b>%s</b>\n\n", filterIcon(filter), filterLabel(filter)))
	for i, task := range tasks {
		builder.WriteString(formatTask(i+1, task))
		if task.IsArchived {
			continue
		}
		doneLabel := fmt.Sprintf("✅ %d · %s", i+1, shortTitle(task.Title, 20))
		if task.IsCompleted {
			doneLabel = fmt.Sprintf("↩️ %d · reopen", i+1)
		}
		todayLabel := "📅 today"
		if task.IsSelectedForToday {
			todayLabel = "➖ today"
		}
		buttons = append(buttons, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(doneLabel, cbDonePrefix+task.ID),
			tgbotapi.NewInlineKeyboardButtonData(todayLabel, cbTodayPrefix+task.ID),
		))
	}

	msg := tgbotapi.NewMessage(chatID, strings.TrimSpace(builder.String()))
	msg.ParseMode = tgbotapi.ModeHTML
	if len(buttons) > 0 {
		msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(buttons...)
	}
	_, err = b.api.Send(msg)
	return err
}

func (b *Bot) handleEdit(ctx context.Context, chatID int64, args string) error {
	ref, rest, _ := strings.Cut(args, " ")
	rest = strings.TrimSpace(rest)
	if ref == "" || rest == "" {
		return b.sendText(chatID, "Usage: /edit &lt;n&gt; new title | new description")
	}
	title, description := splitTitle(rest)
	patch := model.Patch{Title: &title}
	if strings.Contains(rest, "|") {
		patch.Description = &description
	}
	return b.withTask(ctx, chatID, ref, func(id string) (service.Notice, error) {
		_, err := b.svc.Tasks.Update(ctx, id, patch)
		return service.NoticeUpdated(), err
	})
}

func (b *Bot) handleStats(ctx context.Context, chatID int64) error {
	stats, err := b.svc.Tasks.Stats(ctx)
	if err != nil {
		return b.sendText(chatID, errorText(err))
	}
	text := fmt.Sprintf("📊 <b>Stats</b>\n• Active: %d\n• Today: %d\n• Completed: %d\n• Archived: %d",
		stats.Total, stats.Today, stats.Completed, stats.Archived)
	return b.sendText(chatID, text)
}

func (b *Bot) handleHistory(ctx context.Context, chatID int64, args string) error {
	day := time.Now()
	if args != "" {
		parsed, err := time.ParseInLocation("2006-01-02", args, time.Local)
		if err != nil {
			return b.sendText(chatID, "I cannot read that date. Use <code>2025-11-30</code>.")
		}
		day = parsed
	}

	month, err := b.svc.History.Month(ctx, day)
	if err != nil {
		return b.sendText(chatID, errorText(err))
	}
	tasks, err := b.svc.History.CompletedOn(ctx, day)
	if err != nil {
		return b.sendText(chatID, errorText(err))
	}
	return b.sendText(chatID, formatHistory(day, month, tasks))
}

func (b *Bot) handleCategories(ctx context.Context, chatID int64) error {
	names, err := b.svc.Tasks.Categories(ctx)
	if err != nil {
		return b.sendText(chatID, errorText(err))
	}
	if len(names) == 0 {
		return b.sendText(chatID, "No categories yet. Add one while creating a task.")
	}
	var builder strings.Builder
	builder.WriteString("📂 <b>Categories</b>\n")
	for _, name := range names {
		builder.WriteString(fmt.Sprintf("• %s\n", escape(name)))
	}
	return b.sendText(chatID, strings.TrimSpace(builder.String()))
}

// withTask resolves ref and runs action, replying with its notice or error.
func (b *Bot) withTask(ctx context.Context, chatID int64, ref string, action func(id string) (service.Notice, error)) error {
	id, err := b.resolve(ctx, chatID, ref)
	if err != nil {
		return b.sendText(chatID, errorText(err))
	}
	notice, err := action(id)
	if err != nil {
		return b.sendText(chatID, errorText(err))
	}
	return b.sendNotice(chatID, notice)
}

// resolve accepts a position from the last list shown in the chat or an id prefix.
func (b *Bot) resolve(ctx context.Context, chatID int64, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", model.NewError(model.ErrCodeInvalid, "tell me which task: a number from /tasks or an id")
	}
	if position, err := strconv.Atoi(ref); err == nil {
		if id, ok := b.listedID(chatID, position); ok {
			return id, nil
		}
		return "", model.NewError(model.ErrCodeInvalid, fmt.Sprintf("no task #%d in the last list, run /tasks first", position))
	}
	task, err := b.svc.Tasks.Find(ctx, ref)
	if err != nil {
		return "", err
	}
	return task.ID, nil
}

func splitTitle(raw string) (string, string) {
	title, description, _ := strings.Cut(raw, "|")
	return strings.TrimSpace(title), strings.TrimSpace(description)
}
