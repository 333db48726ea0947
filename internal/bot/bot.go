package bot

import (
	"context"
	"fmt"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"taskflow/internal/model"
	"taskflow/internal/service"
)

type conversationStage int

const (
	stageNone conversationStage = iota
	stageTitle
	stageDescription
	stageCategory
)

const (
	cbDonePrefix  = "done:"
	cbTodayPrefix = "today:"
)

type conversationState struct {
	stage conversationStage
	input service.TaskInput
}

// sender is the part of the Telegram API the bot writes through.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

type updater interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Services bundles what the bot needs from the service layer.
type Services struct {
	Tasks     *service.TaskService
	History   *service.HistoryService
	Theme     *service.ThemeService
	Reminders *service.ReminderService
}

// Bot is the Telegram front end of the planner. It also acts as the
// notification collaborator for scheduled jobs.
type Bot struct {
	api     sender
	updates updater
	svc     Services
	ownerID int64
	logger  *zap.Logger

	mu            sync.Mutex
	lastChat      int64
	conversations map[int64]*conversationState
	lastList      map[int64][]string
}

// New connects to Telegram. ownerID restricts the bot to one chat when non-zero.
func New(token string, ownerID int64, svc Services, logger *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Info("bot authorized", zap.String("account", api.Self.UserName))

	b := newBot(api, ownerID, svc, logger)
	b.updates = api
	return b, nil
}

func newBot(api sender, ownerID int64, svc Services, logger *zap.Logger) *Bot {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bot{
		api:           api,
		svc:           svc,
		ownerID:       ownerID,
		logger:        logger,
		lastChat:      ownerID,
		conversations: make(map[int64]*conversationState),
		lastList:      make(map[int64][]string),
	}
}

// Start begins polling updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	if b.updates == nil {
		return fmt.Errorf("bot has no update source")
	}
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.updates.GetUpdatesChan(updateConfig)

	b.logger.Info("start polling updates")

	go func() {
		<-ctx.Done()
		b.updates.StopReceivingUpdates()
	}()

	for update := range updates {
		switch {
		case update.CallbackQuery != nil:
			if err := b.handleCallback(ctx, update.CallbackQuery); err != nil {
				b.logger.Error("handle callback", zap.Error(err))
			}
		case update.Message != nil:
			if err := b.handleMessage(ctx, update.Message); err != nil {
				b.logger.Error("handle message", zap.Error(err))
			}
		}
	}

	return nil
}

// Notify sends a notice to the owner chat, or to the last chat seen.
func (b *Bot) Notify(_ context.Context, title, description string) {
	b.mu.Lock()
	chatID := b.lastChat
	b.mu.Unlock()
	if chatID == 0 {
		b.logger.Debug("notice dropped, no chat yet", zap.String("title", title))
		return
	}
	if err := b.sendText(chatID, formatNotice(service.Notice{Title: title, Description: description})); err != nil {
		b.logger.Error("send notice", zap.Error(err))
	}
}

// SendReport delivers a summary produced by a scheduled job.
func (b *Bot) SendReport(ctx context.Context, text string) error {
	b.mu.Lock()
	chatID := b.lastChat
	b.mu.Unlock()
	if chatID == 0 {
		return nil
	}
	return b.sendText(chatID, text)
}

func (b *Bot) allowed(chat *tgbotapi.Chat) bool {
	if chat == nil || !chat.IsPrivate() {
		return false
	}
	return b.ownerID == 0 || chat.ID == b.ownerID
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	if msg.From == nil || !b.allowed(msg.Chat) {
		return nil
	}
	b.touchChat(msg.Chat.ID)

	if !msg.IsCommand() && isCancelInput(msg.Text) {
		b.clearConversation(msg.Chat.ID)
		return b.sendText(msg.Chat.ID, "⏪ Input cancelled.")
	}

	if !msg.IsCommand() {
		if handled, err := b.handleMenuAlias(ctx, msg); handled {
			return err
		}
	}

	if msg.IsCommand() {
		b.logger.Info("command", zap.Int64("chat", msg.Chat.ID), zap.String("command", msg.Command()), zap.String("args", msg.CommandArguments()))
		return b.handleCommand(ctx, msg)
	}

	if b.hasConversation(msg.Chat.ID) {
		return b.handleConversation(ctx, msg)
	}

	return b.sendText(msg.Chat.ID, "I did not get that. Send /add to create a task or /help for the command list.")
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	if cb == nil || cb.From == nil || cb.Message == nil || !b.allowed(cb.Message.Chat) {
		return nil
	}
	if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		b.logger.Warn("callback ack", zap.Error(err))
	}

	chatID := cb.Message.Chat.ID
	b.touchChat(chatID)

	switch {
	case strings.HasPrefix(cb.Data, cbDonePrefix):
		task, err := b.svc.Tasks.ToggleCompletion(ctx, strings.TrimPrefix(cb.Data, cbDonePrefix))
		if err != nil {
			return b.sendText(chatID, errorText(err))
		}
		return b.sendNotice(chatID, service.NoticeCompletion(task))
	case strings.HasPrefix(cb.Data, cbTodayPrefix):
		task, err := b.svc.Tasks.ToggleToday(ctx, strings.TrimPrefix(cb.Data, cbTodayPrefix))
		if err != nil {
			return b.sendText(chatID, errorText(err))
		}
		return b.sendNotice(chatID, service.NoticeToday(task))
	default:
		return nil
	}
}

func (b *Bot) sendText(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = mainMenuKeyboard()
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) sendWithReplyMarkup(chatID int64, text string, markup interface{}) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = markup
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) sendNotice(chatID int64, notice service.Notice) error {
	return b.sendText(chatID, formatNotice(notice))
}

func (b *Bot) touchChat(chatID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lastChat = chatID
}

func (b *Bot) setConversation(chatID int64, state *conversationState) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.conversations[chatID] = state
}

func (b *Bot) getConversation(chatID int64) *conversationState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.conversations[chatID]
}

func (b *Bot) hasConversation(chatID int64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.conversations[chatID]
	return ok
}

func (b *Bot) clearConversation(chatID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.conversations, chatID)
}

func (b *Bot) rememberList(chatID int64, tasks []model.Task) {
	ids := make([]string, len(tasks))
	for i, task := range tasks {
		ids[i] = task.ID
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lastList[chatID] = ids
}

func (b *Bot) listedID(chatID int64, position int) (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	ids := b.lastList[chatID]
	if position < 1 || position > len(ids) {
		return "", false
	}
	return ids[position-1], true
}
