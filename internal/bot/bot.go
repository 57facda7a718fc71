package bot

import (
	"context"
	"fmt"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/dkazmin/pvzbot/config"
	"github.com/dkazmin/pvzbot/internal/service"
	"github.com/dkazmin/pvzbot/internal/workflow/engine"
)

type Bot struct {
	api             *tgbotapi.BotAPI
	cfg             *config.Config
	engine          *engine.Engine
	userService     *service.UserService
	pointService    *service.PointService
	shiftService    *service.ShiftService
	reviewService   *service.ReviewService
	calendarService *service.CalendarService
}

func New(cfg *config.Config, eng *engine.Engine, userSvc *service.UserService, pointSvc *service.PointService, shiftSvc *service.ShiftService, reviewSvc *service.ReviewService, calendarSvc *service.CalendarService) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	log.Printf("Authorized as @%s", api.Self.UserName)

	bot := &Bot{
		api:             api,
		cfg:             cfg,
		engine:          eng,
		userService:     userSvc,
		pointService:    pointSvc,
		shiftService:    shiftSvc,
		reviewService:   reviewSvc,
		calendarService: calendarSvc,
	}

	// Set bot commands (menu button)
	bot.setCommands()

	return bot, nil
}

func (b *Bot) setCommands() {
	commands := []tgbotapi.BotCommand{
		{Command: "register", Description: "Регистрация"},
		{Command: "mypoints", Description: "Список пунктов выдачи"},
		{Command: "addpoint", Description: "Добавить пункт выдачи"},
		{Command: "schedule", Description: "Список смен"},
		{Command: "addshift", Description: "Добавить смену"},
		{Command: "cancel", Description: "Отменить текущую операцию"},
		{Command: "help", Description: "Справка по командам"},
	}

	cfg := tgbotapi.NewSetMyCommands(commands...)
	if _, err := b.api.Request(cfg); err != nil {
		log.Printf("Failed to set commands: %v", err)
	}
}

func (b *Bot) Start(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return nil
		case update := <-updates:
			go b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) SendMessage(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = "HTML"
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) SendMessageWithKeyboard(chatID int64, text string, keyboard tgbotapi.InlineKeyboardMarkup) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = "HTML"
	msg.ReplyMarkup = keyboard
	_, err := b.api.Send(msg)
	return err
}
