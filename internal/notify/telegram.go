package notify

import (
	"encoding/json"
	"fmt"

	"shareit/internal/domain"
	"shareit/internal/events"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

const timeLayout = "02.01.2006 15:04"

// TelegramNotifier отправляет в чат менеджеров одну строку на каждое
// событие бронирования. Ошибки отправки только логируются: уведомления
// не должны ломать основной поток запроса.
type TelegramNotifier struct {
	bot    domain.TelegramSender
	chatID int64
	logger zerolog.Logger
}

func NewTelegramNotifier(bot domain.TelegramSender, chatID int64, logger zerolog.Logger) *TelegramNotifier {
	return &TelegramNotifier{
		bot:    bot,
		chatID: chatID,
		logger: logger.With().Str("component", "notify").Logger(),
	}
}

// Subscribe регистрирует обработчики на события бронирований.
func (n *TelegramNotifier) Subscribe(bus *events.EventBus) {
	bus.Subscribe(events.EventBookingCreated, n.handleEvent)
	bus.Subscribe(events.EventBookingApproved, n.handleEvent)
	bus.Subscribe(events.EventBookingRejected, n.handleEvent)
}

func (n *TelegramNotifier) handleEvent(event *events.Event) error {
	var payload events.BookingEventPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		n.logger.Error().Err(err).Str("event", event.Type).Msg("failed to decode booking event")
		return err
	}

	msg := tgbotapi.NewMessage(n.chatID, formatBookingMessage(event.Type, payload))
	if _, err := n.bot.Send(msg); err != nil {
		n.logger.Error().Err(err).
			Str("event", event.Type).
			Int64("booking_id", payload.BookingID).
			Msg("failed to send telegram notification")
		return err
	}

	n.logger.Debug().
		Str("event", event.Type).
		Int64("booking_id", payload.BookingID).
		Msg("telegram notification sent")
	return nil
}

func formatBookingMessage(eventType string, p events.BookingEventPayload) string {
	var action string
	switch eventType {
	case events.EventBookingCreated:
		action = "Новое бронирование"
	case events.EventBookingApproved:
		action = "Бронирование подтверждено"
	case events.EventBookingRejected:
		action = "Бронирование отклонено"
	default:
		action = "Бронирование обновлено"
	}

	return fmt.Sprintf("%s #%d: вещь %d, пользователь %d, %s — %s",
		action,
		p.BookingID,
		p.ItemID,
		p.BookerID,
		p.Start.Format(timeLayout),
		p.End.Format(timeLayout),
	)
}
