package bot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/dkazmin/pvzbot/internal/workflow"
)

// choicesKeyboard renders the engine's choice rows as an inline
// keyboard, nil when the prompt expects free text.
func choicesKeyboard(choices [][]workflow.Choice) *tgbotapi.InlineKeyboardMarkup {
	if len(choices) == 0 {
		return nil
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, choiceRow := range choices {
		var row []tgbotapi.InlineKeyboardButton
		for _, c := range choiceRow {
			row = append(row, tgbotapi.NewInlineKeyboardButtonData(c.Label, c.Data))
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(row...))
	}

	keyboard := tgbotapi.NewInlineKeyboardMarkup(rows...)
	return &keyboard
}
