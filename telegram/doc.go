// Copyright 2026 The Dutydesk Authors
// SPDX-License-Identifier: Apache-2.0

// Package telegram wraps the Telegram Bot API for Dutydesk's chat
// transport needs.
//
// [Client] holds the API base URL, bot token, and HTTP transport. It
// exposes the handful of Bot API methods the bot uses: getMe,
// getUpdates, sendMessage, editMessageText, editMessageReplyMarkup,
// answerCallbackQuery, and photo download (getFile plus the file
// endpoint, combined in [Client.DownloadFile]).
//
// [API] is the interface the bot layer consumes; *Client implements
// it, and tests substitute a fake. [UpdateWatcher] drives getUpdates
// long-polling with offset tracking and bounded retry, delivering one
// [Update] at a time.
//
// All API errors are returned as [*APIError] with the Bot API error
// code and description. Request URLs embed the bot token; the token
// is never logged.
package telegram
