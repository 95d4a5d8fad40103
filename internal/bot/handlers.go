package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/example/revocab/internal/session"
	"github.com/example/revocab/pkg/models"
)

// Callback data prefixes for session-driving buttons.
const (
	callbackSelfAssess = "self_assess"
	callbackTest       = "test"
	callbackAdvance    = "advance"
	callbackDefer      = "defer"
	callbackRate       = "rate:"  // rate:<again|hard|good|easy>
	callbackOption     = "opt:"   // opt:<word id>
	callbackLearn      = "learn:" // learn:<list id>
)

const sessionLimit = 20

// HandleCommand handles bot commands
func (b *Bot) HandleCommand(ctx context.Context, message *tgbotapi.Message) error {
	switch message.Command() {
	case "start", "help":
		return b.handleHelp(message)
	case "review":
		return b.handleReview(ctx, message)
	case "learn":
		return b.handleLearn(ctx, message)
	case "stats":
		return b.handleStats(ctx, message)
	case "stop":
		b.clearSession(message.Chat.ID)
		return b.sendMessage(tgbotapi.NewMessage(message.Chat.ID, "Session dropped."))
	default:
		return b.sendMessage(tgbotapi.NewMessage(message.Chat.ID, "Unknown command. Send /help for the command list."))
	}
}

func (b *Bot) handleHelp(message *tgbotapi.Message) error {
	text := "Spaced-repetition vocabulary trainer.\n\n" +
		"/review - review words that are due\n" +
		"/learn - start learning a word list\n" +
		"/stats - your learning statistics\n" +
		"/stop - drop the current session"
	return b.sendMessage(tgbotapi.NewMessage(message.Chat.ID, text))
}

func (b *Bot) handleReview(ctx context.Context, message *tgbotapi.Message) error {
	chatID := message.Chat.ID
	s, err := b.builder.BuildReviewSession(ctx, message.From.ID, sessionLimit)
	if err != nil {
		return err
	}

	composer := session.NewComposer(session.FlowReview, s.Quizzes,
		&asyncSink{records: b.records, userID: message.From.ID}, session.Options{})
	if composer.EmptyAtStart() {
		return b.sendMessage(tgbotapi.NewMessage(chatID, "Nothing is due right now. Well done!"))
	}
	b.setSession(chatID, composer)
	return b.renderState(chatID, composer)
}

func (b *Bot) handleLearn(ctx context.Context, message *tgbotapi.Message) error {
	chatID := message.Chat.ID
	args := strings.TrimSpace(message.CommandArguments())

	if args == "" {
		lists, err := b.lists.GetByUser(ctx, message.From.ID)
		if err != nil {
			return err
		}
		if len(lists) == 0 {
			return b.sendMessage(tgbotapi.NewMessage(chatID, "You have no word lists yet."))
		}
		var rows [][]MenuButton
		for _, l := range lists {
			rows = append(rows, []MenuButton{{Text: l.Name, CallbackData: callbackLearn + strconv.FormatInt(l.ID, 10)}})
		}
		msg := tgbotapi.NewMessage(chatID, "Pick a list to learn:")
		msg.ReplyMarkup = createKeyboard(rows)
		return b.sendMessage(msg)
	}

	listID, err := strconv.ParseInt(args, 10, 64)
	if err != nil {
		return b.sendMessage(tgbotapi.NewMessage(chatID, "Usage: /learn or /learn <list id>"))
	}
	return b.startLearnSession(ctx, chatID, message.From.ID, listID)
}

func (b *Bot) startLearnSession(ctx context.Context, chatID, userID, listID int64) error {
	s, err := b.builder.BuildLearnSession(ctx, userID, listID, sessionLimit)
	if err != nil {
		return err
	}

	composer := session.NewComposer(session.FlowLearn, s.Quizzes,
		&asyncSink{records: b.records, userID: userID},
		session.Options{AlwaysAdvanceOnTest: true})
	if composer.EmptyAtStart() {
		return b.sendMessage(tgbotapi.NewMessage(chatID, "Every word in this list is already in rotation."))
	}
	b.setSession(chatID, composer)
	return b.renderState(chatID, composer)
}

func (b *Bot) handleStats(ctx context.Context, message *tgbotapi.Message) error {
	stats, err := b.records.GetStats(ctx, message.From.ID, time.Now().UTC())
	if err != nil {
		return err
	}
	text := fmt.Sprintf(
		"Your vocabulary:\n"+
			"Total: %d\n"+
			"New: %d\n"+
			"Learning: %d\n"+
			"In review: %d\n"+
			"Relearning: %d\n"+
			"Due now: %d",
		stats.Total, stats.New, stats.Learning, stats.Review, stats.Relearning, stats.DueToday)
	return b.sendMessage(tgbotapi.NewMessage(message.Chat.ID, text))
}

func (b *Bot) handleCallbackQuery(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	// Acknowledge so the client stops its spinner.
	if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		return err
	}

	chatID := cb.Message.Chat.ID
	data := cb.Data

	if strings.HasPrefix(data, callbackLearn) {
		listID, err := strconv.ParseInt(strings.TrimPrefix(data, callbackLearn), 10, 64)
		if err != nil {
			return err
		}
		return b.startLearnSession(ctx, chatID, cb.From.ID, listID)
	}

	composer, ok := b.getSession(chatID)
	if !ok {
		return b.sendMessage(tgbotapi.NewMessage(chatID, "No active session. Send /review or /learn."))
	}

	var err error
	switch {
	case data == callbackSelfAssess:
		err = composer.ChooseSelfAssess()
	case data == callbackTest:
		err = composer.ChooseTest()
	case data == callbackAdvance:
		err = composer.Advance()
	case data == callbackDefer:
		err = composer.Defer()
	case strings.HasPrefix(data, callbackRate):
		var rating models.Rating
		rating, err = models.ParseRating(strings.TrimPrefix(data, callbackRate))
		if err == nil {
			err = composer.SubmitSelfRating(rating)
		}
	case strings.HasPrefix(data, callbackOption):
		var optionID int64
		optionID, err = strconv.ParseInt(strings.TrimPrefix(data, callbackOption), 10, 64)
		if err == nil {
			_, err = composer.SubmitAnswer(optionID)
		}
	default:
		return b.sendMessage(tgbotapi.NewMessage(chatID, "Unknown action."))
	}
	if err != nil {
		// Stale button presses land here; re-rendering resyncs the client.
		if err != session.ErrWrongPhase {
			return err
		}
	}

	return b.renderState(chatID, composer)
}

// renderState sends the message matching the composer's current phase.
func (b *Bot) renderState(chatID int64, composer *session.Composer) error {
	if composer.Complete() {
		b.clearSession(chatID)
		return b.sendMessage(tgbotapi.NewMessage(chatID, "Session complete. Send /stats to see your progress."))
	}

	current, ok := composer.Current()
	if !ok {
		b.clearSession(chatID)
		return b.sendMessage(tgbotapi.NewMessage(chatID, "Session complete."))
	}

	switch composer.Phase() {
	case session.PhaseIdle:
		msg := tgbotapi.NewMessage(chatID, current.Prompt)
		msg.ReplyMarkup = createKeyboard([][]MenuButton{
			{
				{Text: "I'll rate myself", CallbackData: callbackSelfAssess},
				{Text: "Test me", CallbackData: callbackTest},
			},
			{{Text: "Later", CallbackData: callbackDefer}},
		})
		return b.sendMessage(msg)

	case session.PhaseSelfAssess:
		text := fmt.Sprintf("%s\n\n%s", current.Prompt, current.Answer)
		msg := tgbotapi.NewMessage(chatID, text)
		msg.ReplyMarkup = createKeyboard([][]MenuButton{
			{
				{Text: "Again", CallbackData: callbackRate + "again"},
				{Text: "Hard", CallbackData: callbackRate + "hard"},
			},
			{
				{Text: "Good", CallbackData: callbackRate + "good"},
				{Text: "Easy", CallbackData: callbackRate + "easy"},
			},
		})
		return b.sendMessage(msg)

	case session.PhaseTest:
		text := current.Prompt
		if composer.HintRevealed() && current.Hint != "" {
			text += "\n\nHint: " + current.Hint
		}
		var rows [][]MenuButton
		for _, opt := range current.Options {
			rows = append(rows, []MenuButton{{
				Text:         opt.Text,
				CallbackData: callbackOption + strconv.FormatInt(opt.ID, 10),
			}})
		}
		msg := tgbotapi.NewMessage(chatID, text)
		msg.ReplyMarkup = createKeyboard(rows)
		return b.sendMessage(msg)

	case session.PhaseReviewStage:
		text := fmt.Sprintf("%s\n\n%s", current.Prompt, current.Answer)
		if current.Hint != "" {
			text += "\n\nMnemonic: " + current.Hint
		}
		msg := tgbotapi.NewMessage(chatID, text)
		msg.ReplyMarkup = createKeyboard([][]MenuButton{
			{{Text: "Continue", CallbackData: callbackAdvance}},
		})
		return b.sendMessage(msg)
	}

	return nil
}
