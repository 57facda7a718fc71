package bot

import (
	"context"
	"log"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/dkazmin/pvzbot/internal/workflow/engine"
)

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.Message != nil {
		b.handleMessage(ctx, update.Message)
	} else if update.CallbackQuery != nil {
		b.handleCallback(ctx, update.CallbackQuery)
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	userID := msg.From.ID
	chatID := msg.Chat.ID

	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return
	}

	if msg.IsCommand() {
		b.handleCommand(ctx, msg)
		return
	}

	// Plain text only makes sense as a workflow step.
	res := b.engine.HandleText(ctx, userID, text)
	if res.Status == engine.StatusNone {
		b.SendMessage(chatID, "Нет активной операции. /help — список команд")
		return
	}
	b.sendResult(chatID, res)
}

func (b *Bot) handleCallback(ctx context.Context, callback *tgbotapi.CallbackQuery) {
	userID := callback.From.ID
	chatID := callback.Message.Chat.ID
	msgID := callback.Message.MessageID

	res := b.engine.HandleCallback(ctx, userID, callback.Data)
	b.api.Request(tgbotapi.NewCallback(callback.ID, ""))

	if res.Status == engine.StatusNone {
		return
	}

	// Edit the prompt message in place, as the picker rounds expect.
	edit := tgbotapi.NewEditMessageText(chatID, msgID, res.Text)
	if kb := choicesKeyboard(res.Choices); kb != nil {
		edit.ReplyMarkup = kb
	}
	if _, err := b.api.Send(edit); err != nil {
		log.Printf("edit message for %d: %v", chatID, err)
	}
}

// sendResult renders one engine result as exactly one reply.
func (b *Bot) sendResult(chatID int64, res engine.Result) {
	if kb := choicesKeyboard(res.Choices); kb != nil {
		if err := b.SendMessageWithKeyboard(chatID, res.Text, *kb); err != nil {
			log.Printf("send message for %d: %v", chatID, err)
		}
		return
	}
	if err := b.SendMessage(chatID, res.Text); err != nil {
		log.Printf("send message for %d: %v", chatID, err)
	}
}
