package telegram

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"TopicCurator/internal/domain"
	"TopicCurator/internal/ports"
	"TopicCurator/internal/review"
)

// Callback data understood by the review bot. Action callbacks carry
// the pending id after the colon.
const (
	actionApprove  = "approve"
	actionReject   = "reject"
	actionResolved = "resolved"
)

// Notifier pushes proposals to the operator chat with approve/reject
// inline buttons keyed by pending id.
type Notifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

var _ ports.Notifier = (*Notifier)(nil)

// NewNotifier registers the bot client and target chat.
func NewNotifier(bot *tgbotapi.BotAPI, chatID int64) *Notifier {
	return &Notifier{bot: bot, chatID: chatID}
}

// NotifyProposal posts the proposal summary with an action keyboard.
func (n *Notifier) NotifyProposal(_ context.Context, p domain.Proposal, pendingID string) error {
	if n == nil || n.bot == nil || n.chatID == 0 {
		return fmt.Errorf("telegram notifier misconfigured")
	}

	msg := tgbotapi.NewMessage(n.chatID, formatProposal(p))
	msg.ReplyMarkup = actionKeyboard(pendingID)

	if _, err := n.bot.Send(msg); err != nil {
		return fmt.Errorf("send proposal notification: %w", err)
	}
	return nil
}

// formatProposal keeps the rendering short and mobile-friendly.
func formatProposal(p domain.Proposal) string {
	return "🧠 PROPOSAL\n━━━━━━━━━━━━━━━━━━━━━━\n\n" + p.Summary()
}

func actionKeyboard(pendingID string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Approve", actionApprove+":"+pendingID),
			tgbotapi.NewInlineKeyboardButtonData("❌ Reject", actionReject+":"+pendingID),
		),
	)
}

func resolvedKeyboard(decision review.Decision) tgbotapi.InlineKeyboardMarkup {
	label := "☑️ Approved"
	if decision == review.DecisionReject {
		label = "❌ Rejected"
	}
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, actionResolved),
		),
	)
}
