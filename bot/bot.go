// Copyright 2026 The Dutydesk Authors
// SPDX-License-Identifier: Apache-2.0

package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dutydesk/dutydesk/lib/config"
	"github.com/dutydesk/dutydesk/telegram"
	"github.com/dutydesk/dutydesk/ticket"
	"github.com/dutydesk/dutydesk/workflow"
)

// Config assembles a Bot's collaborators. API, Extractor, and Store
// are required.
type Config struct {
	// API is the Telegram transport.
	API telegram.API

	// Extractor turns invoice photos into shipment drafts.
	Extractor workflow.Extractor

	// Store holds the per-user sessions.
	Store *workflow.Store

	// Access is the static allow-list. An empty list allows everyone.
	Access config.AccessConfig

	// PollTimeout is the server-side long-poll hold in seconds.
	// Defaults to 30.
	PollTimeout int

	// Logger receives per-update diagnostics. Defaults to
	// slog.Default().
	Logger *slog.Logger
}

// Bot runs the invoice review conversation over Telegram.
type Bot struct {
	api         telegram.API
	extractor   workflow.Extractor
	store       *workflow.Store
	access      config.AccessConfig
	pollTimeout int
	logger      *slog.Logger
}

// New creates a Bot from config.
func New(cfg Config) (*Bot, error) {
	if cfg.API == nil {
		return nil, fmt.Errorf("bot: telegram API is required")
	}
	if cfg.Extractor == nil {
		return nil, fmt.Errorf("bot: extractor is required")
	}
	if cfg.Store == nil {
		return nil, fmt.Errorf("bot: session store is required")
	}
	bot := &Bot{
		api:         cfg.API,
		extractor:   cfg.Extractor,
		store:       cfg.Store,
		access:      cfg.Access,
		pollTimeout: cfg.PollTimeout,
		logger:      cfg.Logger,
	}
	if bot.pollTimeout <= 0 {
		bot.pollTimeout = 30
	}
	if bot.logger == nil {
		bot.logger = slog.Default()
	}
	return bot, nil
}

// Run polls for updates until ctx is canceled or polling fails
// permanently. Each update is handled on its own goroutine; the
// session store serializes events per user.
func (bot *Bot) Run(ctx context.Context) error {
	watcher := telegram.NewUpdateWatcher(bot.api, bot.pollTimeout, bot.logger)

	var handlers sync.WaitGroup
	defer handlers.Wait()

	for {
		update, err := watcher.Next(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return fmt.Errorf("polling updates: %w", err)
		}
		handlers.Add(1)
		go func() {
			defer handlers.Done()
			bot.handleUpdate(ctx, update)
		}()
	}
}

func (bot *Bot) handleUpdate(ctx context.Context, update telegram.Update) {
	switch {
	case update.CallbackQuery != nil:
		bot.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil && len(update.Message.Photo) > 0:
		bot.handlePhoto(ctx, update.Message)
	case update.Message != nil && update.Message.Text != "":
		if cmd, ok := parseCommand(update.Message.Text); ok {
			bot.handleCommand(ctx, update.Message, cmd)
		}
	}
}

func (bot *Bot) handleCommand(ctx context.Context, message *telegram.Message, cmd command) {
	if message.From == nil {
		return
	}
	userID, chatID := message.From.ID, message.Chat.ID

	// Help is static and open to everyone. Everything else touches
	// or reports session state and goes through the allow-list.
	if cmd.Kind == commandHelp {
		bot.send(ctx, chatID, helpText, "MarkdownV2", nil)
		return
	}
	if !bot.access.Allows(userID) {
		bot.logger.Warn("access denied", "user_id", userID, "event", "command")
		bot.send(ctx, chatID, deniedText, "", nil)
		return
	}

	switch cmd.Kind {
	case commandStart:
		bot.store.Do(userID, func(session *workflow.Session) { session.Reset() })
		bot.send(ctx, chatID, welcomeText, "MarkdownV2", nil)
	case commandClear:
		bot.store.Do(userID, func(session *workflow.Session) { session.Reset() })
		bot.send(ctx, chatID, clearedText, "", nil)
	case commandDone:
		bot.handleDone(ctx, userID, chatID)
	case commandOrder:
		bot.handleOrder(ctx, userID, chatID, cmd)
	case commandTickets:
		bot.handleTickets(ctx, userID, chatID)
	}
}

func (bot *Bot) handlePhoto(ctx context.Context, message *telegram.Message) {
	if message.From == nil {
		return
	}
	userID, chatID := message.From.ID, message.Chat.ID
	if !bot.access.Allows(userID) {
		bot.logger.Warn("access denied", "user_id", userID, "event", "photo")
		bot.send(ctx, chatID, deniedText, "", nil)
		return
	}

	// The sizes arrive smallest first; take the original resolution.
	fileID := message.Photo[len(message.Photo)-1].FileID
	data, err := bot.api.DownloadFile(ctx, fileID)
	if err != nil {
		bot.logger.Error("photo download failed", "user_id", userID, "error", err)
		return
	}

	var result workflow.AddResult
	bot.store.Do(userID, func(session *workflow.Session) {
		result = session.AddImage(data)
	})
	if result.DiscardedReview {
		bot.logger.Info("review discarded by new photo", "user_id", userID)
	}
	bot.send(ctx, chatID, photoAckText(result.Count), "", nil)
}

// handleDone runs extraction over the accumulated photos. The
// session lock is held for the duration of the external call so that
// no other event for this user can slip in mid-finalize.
func (bot *Bot) handleDone(ctx context.Context, userID, chatID int64) {
	bot.store.Do(userID, func(session *workflow.Session) {
		if session.ImageCount() == 0 {
			bot.send(ctx, chatID, noImagesText, "", nil)
			return
		}

		status, err := bot.api.SendMessage(ctx, telegram.SendMessageRequest{
			ChatID: chatID,
			Text:   analyzingText(session.ImageCount()),
		})
		if err != nil {
			bot.logger.Error("status message failed", "user_id", userID, "error", err)
		}

		count, err := bot.finalize(ctx, session)
		if err != nil {
			bot.logger.Error("finalize failed", "user_id", userID, "error", err)
			bot.editOrSend(ctx, chatID, status, extractionFailedText)
			return
		}

		for i, shipment := range session.Shipments() {
			text, markup := shipmentCard(i, shipment)
			bot.send(ctx, chatID, text, "Markdown", markup)
		}
		bot.send(ctx, chatID, batchSummaryText(count), "Markdown", nil)
	})
}

// finalize picks the right commit operation for the session's phase.
// A /done repeated during review re-runs extraction over the same
// photos and replaces the batch.
func (bot *Bot) finalize(ctx context.Context, session *workflow.Session) (int, error) {
	if session.Phase() == workflow.PhaseReview {
		return session.Refinalize(ctx, bot.extractor)
	}
	return session.Finalize(ctx, bot.extractor)
}

func (bot *Bot) handleOrder(ctx context.Context, userID, chatID int64, cmd command) {
	if cmd.Malformed {
		bot.send(ctx, chatID, orderUsageText, "Markdown", nil)
		return
	}
	if cmd.BadIndex {
		bot.send(ctx, chatID, orderInvalidText, "Markdown", nil)
		return
	}

	var err error
	bot.store.Do(userID, func(session *workflow.Session) {
		err = session.SetOrderNumber(cmd.Index, cmd.OrderNumber)
	})
	if errors.Is(err, workflow.ErrOutOfRange) {
		bot.send(ctx, chatID, shipmentNotFoundText(cmd.Index+1), "", nil)
		return
	}
	bot.send(ctx, chatID, orderSetText(cmd.Index+1, cmd.OrderNumber), "Markdown", nil)
}

func (bot *Bot) handleTickets(ctx context.Context, userID, chatID int64) {
	var shipments []workflow.Shipment
	bot.store.Do(userID, func(session *workflow.Session) {
		shipments = session.Shipments()
	})
	if len(shipments) == 0 {
		bot.send(ctx, chatID, noShipmentsText, "", nil)
		return
	}
	for i, shipment := range shipments {
		text := ticket.Render(shipment, shipment.PaymentApproved)
		bot.send(ctx, chatID, ticketBulkMessageText(i+1, shipment.Shipper, text), "MarkdownV2", nil)
	}
}

func (bot *Bot) handleCallback(ctx context.Context, query *telegram.CallbackQuery) {
	if err := bot.api.AnswerCallbackQuery(ctx, telegram.AnswerCallbackQueryRequest{
		CallbackQueryID: query.ID,
	}); err != nil {
		bot.logger.Error("callback ack failed", "error", err)
	}

	action, index, ok := parseCallback(query.Data)
	if !ok || query.Message == nil {
		return
	}
	userID, chatID := query.From.ID, query.Message.Chat.ID

	switch action {
	case callbackApprove, callbackReject:
		if !bot.access.Allows(userID) {
			bot.logger.Warn("access denied", "user_id", userID, "event", "callback")
			bot.send(ctx, chatID, deniedText, "", nil)
			return
		}
		approved := action == callbackApprove
		var err error
		bot.store.Do(userID, func(session *workflow.Session) {
			err = session.SetApproval(index, approved)
		})
		if err != nil {
			// Stale button from a replaced batch. Nothing to report.
			return
		}
		if err := bot.api.EditMessageReplyMarkup(ctx, telegram.EditMessageReplyMarkupRequest{
			ChatID:    chatID,
			MessageID: query.Message.MessageID,
		}); err != nil {
			bot.logger.Error("keyboard removal failed", "error", err)
		}
		bot.send(ctx, chatID, approvalSetText(index+1, approved), "", nil)

	case callbackTicket:
		var shipment workflow.Shipment
		var err error
		bot.store.Do(userID, func(session *workflow.Session) {
			shipment, err = session.Shipment(index)
		})
		if err != nil {
			return
		}
		text := ticket.Render(shipment, shipment.PaymentApproved)
		bot.send(ctx, chatID, ticketMessageText(index+1, text), "Markdown", nil)
	}
}

// send delivers a message and logs delivery failures instead of
// propagating them. Handlers isolate failures to the triggering
// event.
func (bot *Bot) send(ctx context.Context, chatID int64, text, parseMode string, markup *telegram.InlineKeyboardMarkup) {
	_, err := bot.api.SendMessage(ctx, telegram.SendMessageRequest{
		ChatID:      chatID,
		Text:        text,
		ParseMode:   parseMode,
		ReplyMarkup: markup,
	})
	if err != nil {
		bot.logger.Error("send failed", "chat_id", chatID, "error", err)
	}
}

// editOrSend rewrites the status message in place, falling back to a
// fresh message when the original send failed.
func (bot *Bot) editOrSend(ctx context.Context, chatID int64, status *telegram.Message, text string) {
	if status == nil {
		bot.send(ctx, chatID, text, "", nil)
		return
	}
	if err := bot.api.EditMessageText(ctx, telegram.EditMessageTextRequest{
		ChatID:    chatID,
		MessageID: status.MessageID,
		Text:      text,
	}); err != nil {
		bot.logger.Error("status edit failed", "chat_id", chatID, "error", err)
		bot.send(ctx, chatID, text, "", nil)
	}
}
