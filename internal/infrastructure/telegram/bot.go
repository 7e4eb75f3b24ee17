package telegram

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"TopicCurator/internal/review"
)

// Bot polls Telegram updates and drives the review lifecycle from
// inline button callbacks. Rejections ask for a free-text reason,
// tracked per chat until the reviewer replies.
type Bot struct {
	api     *tgbotapi.BotAPI
	manager *review.Manager
	logger  *slog.Logger

	// chat id → pending id awaiting a rejection reason
	awaitingReason map[int64]string
}

// NewBot wires the bot client with the lifecycle manager.
func NewBot(api *tgbotapi.BotAPI, manager *review.Manager, logger *slog.Logger) *Bot {
	return &Bot{
		api:            api,
		manager:        manager,
		logger:         logger,
		awaitingReason: map[int64]string{},
	}
}

// Run blocks, handling updates until the context is done.
func (b *Bot) Run(ctx context.Context) error {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = 30
	updates := b.api.GetUpdatesChan(cfg)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return ctx.Err()
		case update := <-updates:
			b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil && update.Message.Text != "":
		b.handleReason(ctx, update.Message)
	}
}

func (b *Bot) handleCallback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	if query.Message == nil {
		return
	}
	chatID := query.Message.Chat.ID

	if query.Data == actionResolved {
		b.answer(query.ID, "This proposal has already been resolved.")
		return
	}

	action, pendingID, ok := strings.Cut(query.Data, ":")
	if !ok {
		b.answer(query.ID, "Invalid button data.")
		return
	}
	b.answer(query.ID, "")

	switch action {
	case actionApprove:
		if err := b.manager.Resolve(ctx, pendingID, review.DecisionApprove, ""); err != nil {
			b.reportError(chatID, err)
			return
		}
		b.editKeyboard(query, resolvedKeyboard(review.DecisionApprove))
		b.send(chatID, "✅ Proposal approved and applied.")
	case actionReject:
		b.awaitingReason[chatID] = pendingID
		b.editKeyboard(query, resolvedKeyboard(review.DecisionReject))
		b.send(chatID,
			"❌ Proposal rejected.\n\n"+
				"Please reply with a short reason.\n\n"+
				"Examples:\n"+
				"- wrong schema section\n"+
				"- weak source\n"+
				"- already known\n"+
				"- speculative")
	default:
		b.send(chatID, "Unknown action: "+action)
	}
}

func (b *Bot) handleReason(ctx context.Context, msg *tgbotapi.Message) {
	pendingID, ok := b.awaitingReason[msg.Chat.ID]
	if !ok {
		return
	}
	delete(b.awaitingReason, msg.Chat.ID)

	if err := b.manager.Resolve(ctx, pendingID, review.DecisionReject, strings.TrimSpace(msg.Text)); err != nil {
		b.reportError(msg.Chat.ID, err)
		return
	}
	b.send(msg.Chat.ID, "📝 Rejection reason recorded. Proposal closed.")
}

func (b *Bot) answer(callbackID, text string) {
	if _, err := b.api.Request(tgbotapi.NewCallback(callbackID, text)); err != nil {
		b.warn("answer callback failed", err)
	}
}

func (b *Bot) send(chatID int64, text string) {
	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		b.warn("send message failed", err)
	}
}

func (b *Bot) editKeyboard(query *tgbotapi.CallbackQuery, markup tgbotapi.InlineKeyboardMarkup) {
	edit := tgbotapi.NewEditMessageReplyMarkup(query.Message.Chat.ID, query.Message.MessageID, markup)
	if _, err := b.api.Send(edit); err != nil {
		b.warn("edit keyboard failed", err)
	}
}

func (b *Bot) reportError(chatID int64, err error) {
	if errors.Is(err, review.ErrNotPending) {
		b.send(chatID, "⚠️ Proposal not found or already resolved.")
		return
	}
	b.warn("review decision failed", err)
	b.send(chatID, "⚠️ Error applying decision: "+err.Error())
}

func (b *Bot) warn(msg string, err error) {
	if b.logger != nil {
		b.logger.Warn(msg, "error", err)
	}
}
