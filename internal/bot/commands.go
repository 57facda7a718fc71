package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/dkazmin/pvzbot/internal/auth"
	"github.com/dkazmin/pvzbot/internal/service"
	"github.com/dkazmin/pvzbot/internal/storage"
	"github.com/dkazmin/pvzbot/internal/workflow"
)

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	userID := msg.From.ID
	cmd := msg.Command()
	args := strings.TrimSpace(msg.CommandArguments())

	// Multi-step commands go through the workflow engine; everything
	// else is answered in one message.
	switch cmd {
	case "start", "help":
		b.cmdHelp(chatID)
	case "register":
		b.sendResult(chatID, b.engine.Start(ctx, userID, workflow.KindRegister))
	case "addpoint":
		b.sendResult(chatID, b.engine.Start(ctx, userID, workflow.KindAddPoint))
	case "editpoint":
		b.sendResult(chatID, b.engine.Start(ctx, userID, workflow.KindEditPoint))
	case "deletepoint":
		b.sendResult(chatID, b.engine.Start(ctx, userID, workflow.KindDeletePoint))
	case "addshift":
		b.sendResult(chatID, b.engine.Start(ctx, userID, workflow.KindAddShift))
	case "editshift":
		b.sendResult(chatID, b.engine.Start(ctx, userID, workflow.KindEditShift))
	case "deleteshift":
		b.sendResult(chatID, b.engine.Start(ctx, userID, workflow.KindDeleteShift))
	case "cancel":
		b.sendResult(chatID, b.engine.Cancel(userID))
	case "mypoints":
		b.cmdMyPoints(ctx, chatID, userID)
	case "schedule":
		b.cmdSchedule(ctx, chatID)
	case "ratepoint":
		b.cmdRatePoint(ctx, chatID, userID, args)
	case "rateworker":
		b.cmdRateWorker(ctx, chatID, userID, args)
	case "viewratings":
		b.cmdViewRatings(ctx, chatID, args)
	case "exportshifts":
		b.cmdExportShifts(ctx, chatID)
	default:
		b.SendMessage(chatID, "Неизвестная команда. /help для списка команд")
	}
}

func (b *Bot) cmdHelp(chatID int64) {
	text := `<b>Команды:</b>

<b>Пользователи</b>
/register — регистрация

<b>Пункты выдачи</b>
/mypoints — список пунктов выдачи
/addpoint — добавить пункт выдачи
/editpoint — редактировать пункт выдачи
/deletepoint — удалить пункт выдачи

<b>Смены</b>
/schedule — список смен
/addshift — добавить смену
/editshift — перенести смену
/deleteshift — удалить смену
/exportshifts — выгрузить смены в календарь (.ics)

<b>Рейтинги</b>
/ratepoint id рейтинг отзыв — оценить пункт выдачи
/rateworker id рейтинг отзыв — оценить работника
/viewratings id — отзывы о пункте выдачи или работнике

<b>Другое</b>
/cancel — отменить текущую операцию
/help — эта справка`

	b.SendMessage(chatID, text)
}

func (b *Bot) cmdMyPoints(ctx context.Context, chatID, userID int64) {
	points, err := b.pointService.List(ctx, userID)
	if err != nil {
		b.replyError(chatID, err)
		return
	}
	if len(points) == 0 {
		b.SendMessage(chatID, "Список пунктов выдачи пуст.")
		return
	}
	b.SendMessage(chatID, formatPointsTable(points))
}

func (b *Bot) cmdSchedule(ctx context.Context, chatID int64) {
	shifts, err := b.shiftService.List(ctx)
	if err != nil {
		b.replyError(chatID, err)
		return
	}
	if len(shifts) == 0 {
		b.SendMessage(chatID, "Смен нет.")
		return
	}
	b.SendMessage(chatID, formatShiftsTable(shifts))
}

func (b *Bot) cmdRatePoint(ctx context.Context, chatID, userID int64, args string) {
	targetID, rating, comment, err := parseRateArgs(args)
	if err != nil {
		b.SendMessage(chatID, "Укажите id пункта выдачи, рейтинг и отзыв: /ratepoint 1 4.5 отличный пункт")
		return
	}
	if _, err := b.reviewService.RatePoint(ctx, userID, targetID, rating, comment); err != nil {
		b.replyError(chatID, err)
		return
	}
	b.SendMessage(chatID, "Пункт выдачи оценен.")
}

func (b *Bot) cmdRateWorker(ctx context.Context, chatID, userID int64, args string) {
	targetID, rating, comment, err := parseRateArgs(args)
	if err != nil {
		b.SendMessage(chatID, "Укажите id работника, рейтинг и отзыв: /rateworker 1 4.5 отличный работник")
		return
	}
	if _, err := b.reviewService.RateWorker(ctx, userID, targetID, rating, comment); err != nil {
		b.replyError(chatID, err)
		return
	}
	b.SendMessage(chatID, "Работник оценен.")
}

func (b *Bot) cmdViewRatings(ctx context.Context, chatID int64, args string) {
	id, err := strconv.ParseInt(args, 10, 64)
	if err != nil || id <= 0 {
		b.SendMessage(chatID, "Укажите id пункта выдачи или работника: /viewratings 1")
		return
	}
	reviews, err := b.reviewService.ListForID(ctx, id)
	if err != nil {
		b.replyError(chatID, err)
		return
	}
	if len(reviews) == 0 {
		b.SendMessage(chatID, "Отзывов нет.")
		return
	}

	var sb strings.Builder
	for _, r := range reviews {
		sb.WriteString(fmt.Sprintf("Рейтинг: %.1f, Отзыв: %s\n", r.Rating, r.Comment))
	}
	b.SendMessage(chatID, sb.String())
}

func (b *Bot) cmdExportShifts(ctx context.Context, chatID int64) {
	data, err := b.calendarService.ExportSchedule(ctx)
	if err != nil {
		b.replyError(chatID, err)
		return
	}
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: "shifts.ics", Bytes: data})
	if _, err := b.api.Send(doc); err != nil {
		log.Printf("send ics for %d: %v", chatID, err)
	}
}

func parseRateArgs(args string) (targetID int64, rating float64, comment string, err error) {
	parts := strings.Fields(args)
	if len(parts) < 2 {
		return 0, 0, "", errors.New("not enough arguments")
	}
	targetID, err = strconv.ParseInt(parts[0], 10, 64)
	if err != nil || targetID <= 0 {
		return 0, 0, "", errors.New("bad id")
	}
	rating, err = strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return 0, 0, "", errors.New("bad rating")
	}
	comment = strings.Join(parts[2:], " ")
	return targetID, rating, comment, nil
}

// replyError maps service errors to a single user-visible reply.
func (b *Bot) replyError(chatID int64, err error) {
	switch {
	case errors.Is(err, auth.ErrDenied):
		b.SendMessage(chatID, "У вас нет прав на эту операцию.")
	case errors.Is(err, service.ErrNotRegistered):
		b.SendMessage(chatID, "Сначала зарегистрируйтесь: /register")
	case errors.Is(err, service.ErrRatingRange):
		b.SendMessage(chatID, "Рейтинг должен быть от 0 до 5.")
	case errors.Is(err, storage.ErrNotFound):
		b.SendMessage(chatID, "Запись с таким id не найдена.")
	case errors.Is(err, storage.ErrConflict):
		b.SendMessage(chatID, "Запись используется и не может быть удалена.")
	default:
		log.Printf("command failed for chat %d: %v", chatID, err)
		b.SendMessage(chatID, "Не удалось выполнить запрос, попробуйте позже.")
	}
}
