package telegram

import (
	"context"
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/memohai/bucketlink/internal/bot"
	"golang.org/x/time/rate"
)

// maxKeyboardButtons is the number of inline buttons Telegram accepts per message.
const maxKeyboardButtons = 100

// botClient is the part of *tgbotapi.BotAPI the sender uses.
type botClient interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Sender implements bot.Replier over the Bot API.
type Sender struct {
	client  botClient
	limiter *rate.Limiter
	logger  *slog.Logger
}

var _ bot.Replier = (*Sender)(nil)

// NewSender returns a Sender allowing perSecond API calls per second; zero or
// less disables limiting.
func NewSender(log *slog.Logger, client botClient, perSecond float64) *Sender {
	if log == nil {
		log = slog.Default()
	}
	s := &Sender{
		client: client,
		logger: log.With(slog.String("component", "telegram_sender")),
	}
	if perSecond > 0 {
		burst := int(perSecond)
		if burst < 1 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
	return s
}

func (s *Sender) wait(ctx context.Context) error {
	if s.limiter == nil {
		return nil
	}
	return s.limiter.Wait(ctx)
}

// SendText sends a plain text message.
func (s *Sender) SendText(ctx context.Context, chatID int64, text string) error {
	if err := s.wait(ctx); err != nil {
		return err
	}
	_, err := s.client.Send(tgbotapi.NewMessage(chatID, text))
	if err != nil {
		return fmt.Errorf("telegram: send message: %w", err)
	}
	return nil
}

// SendMenu sends menu as one or more messages with inline keyboards, splitting
// the rows so no message exceeds the button limit.
func (s *Sender) SendMenu(ctx context.Context, chatID int64, menu bot.Menu) error {
	chunks := splitRows(menu.Rows, maxKeyboardButtons)
	for i, rows := range chunks {
		if err := s.wait(ctx); err != nil {
			return err
		}
		text := menu.Text
		if len(chunks) > 1 {
			text = fmt.Sprintf("%s (%d/%d)", menu.Text, i+1, len(chunks))
		}
		msg := tgbotapi.NewMessage(chatID, text)
		msg.ReplyMarkup = keyboard(rows)
		if _, err := s.client.Send(msg); err != nil {
			return fmt.Errorf("telegram: send menu part %d/%d: %w", i+1, len(chunks), err)
		}
	}
	if len(chunks) > 1 {
		s.logger.Debug("menu split",
			slog.Int64("chat_id", chatID),
			slog.Int("buttons", menu.Buttons()),
			slog.Int("parts", len(chunks)),
		)
	}
	return nil
}

// AckCallback answers a callback query without showing a notification.
func (s *Sender) AckCallback(ctx context.Context, callbackID string) error {
	if err := s.wait(ctx); err != nil {
		return err
	}
	if _, err := s.client.Request(tgbotapi.NewCallback(callbackID, "")); err != nil {
		return fmt.Errorf("telegram: answer callback: %w", err)
	}
	return nil
}

func keyboard(rows [][]bot.Button) tgbotapi.InlineKeyboardMarkup {
	out := make([][]tgbotapi.InlineKeyboardButton, 0, len(rows))
	for _, row := range rows {
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, b := range row {
			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(b.Label, b.Payload))
		}
		out = append(out, tgbotapi.NewInlineKeyboardRow(buttons...))
	}
	return tgbotapi.NewInlineKeyboardMarkup(out...)
}

// splitRows groups rows into chunks holding at most limit buttons. A single
// row is never split. An empty menu yields one empty chunk.
func splitRows(rows [][]bot.Button, limit int) [][][]bot.Button {
	chunks := make([][][]bot.Button, 0, 1)
	var current [][]bot.Button
	count := 0
	for _, row := range rows {
		if count > 0 && count+len(row) > limit {
			chunks = append(chunks, current)
			current, count = nil, 0
		}
		current = append(current, row)
		count += len(row)
	}
	return append(chunks, current)
}
