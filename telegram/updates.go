// Copyright 2026 The Dutydesk Authors
// SPDX-License-Identifier: Apache-2.0

package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// maxPollRetries is the number of consecutive getUpdates failures
// allowed before Next returns an error. Each retry uses a short
// server-side timeout plus a client-side pause so the loop backs off.
const maxPollRetries = 5

// retryPause is the client-side pause between failed getUpdates
// attempts.
const retryPause = time.Second

// UpdateWatcher tracks a position in the Bot API update stream and
// delivers inbound updates one at a time. Consuming an update via
// Next advances the offset, which confirms the update to Telegram —
// confirmed updates are not redelivered after a restart.
//
// All waiting uses getUpdates long-polling: the server holds the
// connection until an update arrives, then returns immediately. There
// is no client-side polling interval.
//
// UpdateWatcher is not safe for concurrent use by multiple goroutines.
type UpdateWatcher struct {
	api     API
	timeout int // server-side long-poll hold, seconds
	offset  int64
	pending []Update
	logger  *slog.Logger

	// retryPause is the client-side pause between failed polls.
	// Overridden in tests to keep them fast.
	retryPause time.Duration
}

// NewUpdateWatcher creates a watcher over api. timeout is the
// server-side long-poll hold in seconds (the Bot API recommends 30).
// A nil logger falls back to slog.Default().
func NewUpdateWatcher(api API, timeout int, logger *slog.Logger) *UpdateWatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &UpdateWatcher{
		api:        api,
		timeout:    timeout,
		logger:     logger,
		retryPause: retryPause,
	}
}

// Next blocks until an update is available or the context is
// cancelled. Updates delivered in one getUpdates batch are buffered
// and returned in order before the next poll is issued.
//
// On transient polling errors, retries up to 5 times with a 1-second
// pause. Resets idle connections on error if the API supports it.
func (w *UpdateWatcher) Next(ctx context.Context) (Update, error) {
	if len(w.pending) > 0 {
		update := w.pending[0]
		w.pending = w.pending[1:]
		return update, nil
	}

	var pollRetries int
	for {
		updates, err := w.api.GetUpdates(ctx, GetUpdatesRequest{
			Offset:         w.offset,
			Timeout:        w.timeout,
			AllowedUpdates: []string{"message", "callback_query"},
		})
		if err != nil {
			if ctx.Err() != nil {
				return Update{}, fmt.Errorf("context cancelled waiting for updates: %w", ctx.Err())
			}
			pollRetries++
			// TCP-level errors often indicate a poisoned connection in
			// Go's HTTP pool. Drop idle connections so the next attempt
			// opens a fresh socket.
			if closer, ok := w.api.(interface{ CloseIdleConnections() }); ok {
				closer.CloseIdleConnections()
			}
			if pollRetries > maxPollRetries {
				return Update{}, fmt.Errorf("getUpdates failed %d consecutive times: %w", pollRetries, err)
			}
			w.logger.Debug("update poll error, retrying",
				"attempt", pollRetries,
				"max_attempts", maxPollRetries,
				"error", err,
			)
			select {
			case <-ctx.Done():
				return Update{}, fmt.Errorf("context cancelled waiting for updates: %w", ctx.Err())
			case <-time.After(w.retryPause):
			}
			continue
		}
		pollRetries = 0

		if len(updates) == 0 {
			// Long poll expired with no activity. Poll again.
			continue
		}

		// Advance past the batch so the next poll confirms it.
		w.offset = updates[len(updates)-1].UpdateID + 1

		w.logger.Debug("received updates",
			"count", len(updates),
			"next_offset", w.offset,
		)

		w.pending = updates[1:]
		return updates[0], nil
	}
}

// Offset returns the current update stream position.
func (w *UpdateWatcher) Offset() int64 {
	return w.offset
}
