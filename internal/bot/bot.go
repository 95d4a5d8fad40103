package bot

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/example/revocab/internal/database"
	"github.com/example/revocab/internal/quiz"
	"github.com/example/revocab/internal/session"
	"github.com/example/revocab/pkg/models"
)

// Bot is the Telegram front-end: it walks review and learn sessions
// through the session composer and delivers due-review reminders. The
// Telegram user id doubles as the application user id.
type Bot struct {
	api     *tgbotapi.BotAPI
	records *database.ReviewRecordRepository
	lists   *database.WordListRepository
	builder *quiz.Builder

	mu       sync.Mutex
	sessions map[int64]*session.Composer // keyed by chat id
}

// MenuButton represents a button in an inline keyboard
type MenuButton struct {
	Text         string
	CallbackData string
}

// NewBot creates a new bot instance
func NewBot(token string) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot API: %w", err)
	}

	records := database.NewReviewRecordRepository()
	words := database.NewWordRepository()
	return &Bot{
		api:      api,
		records:  records,
		lists:    database.NewWordListRepository(),
		builder:  quiz.NewBuilder(records, words),
		sessions: make(map[int64]*session.Composer),
	}, nil
}

// Start begins processing updates until the context is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := b.api.GetUpdatesChan(u)

	log.Printf("Bot authorized as @%s", b.api.Self.UserName)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message != nil && update.Message.IsCommand() {
				if err := b.HandleCommand(ctx, update.Message); err != nil {
					log.Printf("Error handling command %q: %v", update.Message.Command(), err)
				}
			} else if update.CallbackQuery != nil {
				if err := b.handleCallbackQuery(ctx, update.CallbackQuery); err != nil {
					log.Printf("Error handling callback %q: %v", update.CallbackQuery.Data, err)
				}
			}
		}
	}
}

// Stop terminates the update loop.
func (b *Bot) Stop(ctx context.Context) error {
	b.api.StopReceivingUpdates()
	return nil
}

// SendReminder implements scheduler.Notifier: it nudges a user about
// their due reviews.
func (b *Bot) SendReminder(userID int64, dueCount int) error {
	text := fmt.Sprintf("You have %d words due for review. Send /review to start.", dueCount)
	msg := tgbotapi.NewMessage(userID, text)
	return b.sendMessage(msg)
}

func (b *Bot) sendMessage(msg tgbotapi.MessageConfig) error {
	if _, err := b.api.Send(msg); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

func createKeyboard(buttons [][]MenuButton) tgbotapi.InlineKeyboardMarkup {
	var keyboard [][]tgbotapi.InlineKeyboardButton
	for _, row := range buttons {
		var keyboardRow []tgbotapi.InlineKeyboardButton
		for _, button := range row {
			keyboardRow = append(keyboardRow, tgbotapi.NewInlineKeyboardButtonData(button.Text, button.CallbackData))
		}
		keyboard = append(keyboard, keyboardRow)
	}
	return tgbotapi.NewInlineKeyboardMarkup(keyboard...)
}

func (b *Bot) setSession(chatID int64, c *session.Composer) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sessions[chatID] = c
}

func (b *Bot) getSession(chatID int64) (*session.Composer, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	c, ok := b.sessions[chatID]
	return c, ok
}

func (b *Bot) clearSession(chatID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.sessions, chatID)
}

// asyncSink submits ratings fire-and-forget: the session advances
// immediately and a failed write is only logged.
type asyncSink struct {
	records *database.ReviewRecordRepository
	userID  int64
}

func (s *asyncSink) Submit(itemID int64, rating models.Rating) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if _, err := s.records.ApplyRating(ctx, s.userID, itemID, rating, time.Now().UTC()); err != nil {
			log.Printf("Error applying rating %s for user %d item %d: %v", rating, s.userID, itemID, err)
		}
	}()
}
