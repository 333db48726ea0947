package bot

import (
	"fmt"
	"html"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"taskflow/internal/model"
	"taskflow/internal/service"
)

const (
	btnSkip          = "⏭️ Skip"
	btnCancelDialog  = "⏪ Cancel input"
	menuLabelNewTask = "➕ New task"
	menuLabelAll     = "📋 All"
	menuLabelToday   = "📅 Today"
	menuLabelStats   = "📊 Stats"
)

const helpText = "ℹ️ <b>Commands</b>\n" +
	"• /add [title | description] — add a task (step by step without arguments)\n" +
	"• /tasks [all|today|completed|archived|history] — show a view\n" +
	"• /search &lt;words&gt; — search titles and descriptions\n" +
	"• /done &lt;n&gt; — complete or reopen task n of the last list\n" +
	"• /today &lt;n&gt; — add to or remove from today\n" +
	"• /edit &lt;n&gt; title | description — change a task\n" +
	"• /archive &lt;n&gt;, /unarchive &lt;n&gt; — hide or restore\n" +
	"• /delete &lt;n&gt; — delete a task (fixed tasks cannot be deleted)\n" +
	"• /reset — clear today and completion marks\n" +
	"• /stats, /history [YYYY-MM-DD], /categories, /report, /theme\n" +
	"• /cancel — cancel the current input"

func formatNotice(notice service.Notice) string {
	return fmt.Sprintf("<b>%s</b>\n%s", escape(notice.Title), escape(notice.Description))
}

func formatTask(position int, task model.Task) string {
	var b strings.Builder
	icon := "⬜"
	switch {
	case task.IsArchived:
		icon = "🗄"
	case task.IsCompleted:
		icon = "✅"
	}
	b.WriteString(fmt.Sprintf("%s <b>%d.</b> %s", icon, position, escape(task.Title)))
	if task.IsSelectedForToday {
		b.WriteString(" 📅")
	}
	if task.IsFixed {
		b.WriteString(" <i>(fixed)</i>")
	}
	b.WriteByte('\n')
	if task.Description != "" {
		b.WriteString(fmt.Sprintf("   📝 %s\n", escape(task.Description)))
	}
	if task.Category != "" {
		b.WriteString(fmt.Sprintf("   🏷 %s\n", escape(task.Category)))
	}
	return b.String()
}

func formatHistory(day time.Time, month model.MonthHistory, tasks []model.Task) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🗓 <b>%s</b>\n", month.Month.Format("January 2006")))
	b.WriteString(fmt.Sprintf("• Completed: %d\n", month.TotalCompleted))
	b.WriteString(fmt.Sprintf("• Active days: %d\n", month.ActiveDays))
	b.WriteString(fmt.Sprintf("• Daily average: %.1f\n", month.DailyAverage))
	if len(month.HighlightedDays) > 0 {
		days := make([]string, len(month.HighlightedDays))
		for i, d := range month.HighlightedDays {
			days[i] = fmt.Sprintf("%d", d.Day())
		}
		b.WriteString(fmt.Sprintf("• Days with activity: %s\n", strings.Join(days, ", ")))
	}

	b.WriteString(fmt.Sprintf("\n<b>%s</b>\n", day.Format("2 January 2006")))
	if len(tasks) == 0 {
		b.WriteString("No task was completed on this day.")
		return b.String()
	}
	for _, task := range tasks {
		line := fmt.Sprintf("✅ %s · %s", escape(task.Title), task.CompletedAt.In(day.Location()).Format("15:04"))
		if task.IsFixed {
			line += " <i>(fixed)</i>"
		}
		b.WriteString(line + "\n")
	}
	return strings.TrimSpace(b.String())
}

func errorText(err error) string {
	switch {
	case model.IsCode(err, model.ErrCodeNotFound):
		return "Task not found."
	case model.IsCode(err, model.ErrCodeForbidden):
		return "🔒 Fixed tasks cannot be deleted. Archive it instead."
	case model.IsCode(err, model.ErrCodeInvalid):
		return escape(err.Error())
	default:
		return fmt.Sprintf("Error: %s", escape(err.Error()))
	}
}

func emptyViewText(filter model.Filter) string {
	switch filter {
	case model.FilterToday:
		return "Nothing selected for today. Use /today &lt;n&gt; to pick tasks."
	case model.FilterCompleted:
		return "No completed tasks yet."
	case model.FilterArchived:
		return "No archived tasks."
	default:
		return "No tasks. Start by adding one with /add."
	}
}

func filterLabel(filter model.Filter) string {
	switch filter {
	case model.FilterToday:
		return "Today"
	case model.FilterCompleted:
		return "Completed"
	case model.FilterArchived:
		return "Archived"
	case model.FilterHistory:
		return "History"
	default:
		return "All tasks"
	}
}

func filterIcon(filter model.Filter) string {
	switch filter {
	case model.FilterToday:
		return "📅"
	case model.FilterCompleted:
		return "✅"
	case model.FilterArchived:
		return "🗄"
	default:
		return "📋"
	}
}

func mainMenuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(menuLabelNewTask),
			tgbotapi.NewKeyboardButton(menuLabelToday),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(menuLabelAll),
			tgbotapi.NewKeyboardButton(menuLabelStats),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = false
	return kb
}

func cancelKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnCancelDialog),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

func skipKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnSkip),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnCancelDialog),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

func categoryKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("Study"),
			tgbotapi.NewKeyboardButton("Work"),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("Health"),
			tgbotapi.NewKeyboardButton("Bills"),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnSkip),
			tgbotapi.NewKeyboardButton(btnCancelDialog),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

func isSkipInput(text string) bool {
	value := strings.TrimSpace(strings.ToLower(text))
	return value == "-" || value == strings.ToLower(btnSkip) || value == "skip"
}

func isCancelInput(text string) bool {
	value := strings.TrimSpace(strings.ToLower(text))
	return value == strings.ToLower(btnCancelDialog) || value == "cancel"
}

func shortTitle(title string, maxLen int) string {
	clean := strings.TrimSpace(strings.ReplaceAll(title, "\n", " "))
	runes := []rune(clean)
	if len(runes) <= maxLen {
		return clean
	}
	if maxLen <= 1 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-1]) + "…"
}

func escape(s string) string {
	return html.EscapeString(s)
}
