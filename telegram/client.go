// Copyright 2026 The Dutydesk Authors
// SPDX-License-Identifier: Apache-2.0

package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/dutydesk/dutydesk/lib/netutil"
)

// API is the interface for Bot API operations the bot layer performs.
// *Client implements it; tests substitute a fake.
type API interface {
	// GetMe validates the bot token and returns the bot's identity.
	GetMe(ctx context.Context) (*User, error)

	// GetUpdates long-polls for inbound updates.
	GetUpdates(ctx context.Context, request GetUpdatesRequest) ([]Update, error)

	// SendMessage sends a message to a chat. Returns the sent message.
	SendMessage(ctx context.Context, request SendMessageRequest) (*Message, error)

	// EditMessageText replaces the text of a previously sent message.
	EditMessageText(ctx context.Context, request EditMessageTextRequest) error

	// EditMessageReplyMarkup replaces (or with a nil markup, removes)
	// a message's inline keyboard.
	EditMessageReplyMarkup(ctx context.Context, request EditMessageReplyMarkupRequest) error

	// AnswerCallbackQuery acknowledges an inline-button press so the
	// client stops showing a progress indicator.
	AnswerCallbackQuery(ctx context.Context, request AnswerCallbackQueryRequest) error

	// DownloadFile fetches a file's bytes by file ID (getFile followed
	// by a file-endpoint download).
	DownloadFile(ctx context.Context, fileID string) ([]byte, error)
}

// Compile-time check: *Client implements API.
var _ API = (*Client)(nil)

// defaultBaseURL is the production Bot API endpoint.
const defaultBaseURL = "https://api.telegram.org"

// ClientConfig holds configuration for creating a Client.
type ClientConfig struct {
	// Token is the bot token from @BotFather. Required.
	Token string
	// BaseURL overrides the Bot API endpoint. Defaults to the
	// production endpoint; tests point it at a local server.
	BaseURL string
	// HTTPClient is used for all requests. If nil, http.DefaultClient
	// is used.
	HTTPClient *http.Client
	// Logger is used for structured logging. If nil, slog.Default()
	// is used.
	Logger *slog.Logger
}

// Client is a Telegram Bot API client. The bot token is embedded in
// request URLs per the Bot API contract; it is never written to logs.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a Bot API client.
func NewClient(config ClientConfig) (*Client, error) {
	if config.Token == "" {
		return nil, fmt.Errorf("telegram: Token is required")
	}

	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("telegram: invalid BaseURL %q: %w", baseURL, err)
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      config.Token,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// CloseIdleConnections closes idle HTTP connections in the underlying
// transport's connection pool. Call this after a polling error to
// force the next request onto a fresh TCP connection instead of a
// poisoned pooled one.
func (c *Client) CloseIdleConnections() {
	c.httpClient.CloseIdleConnections()
}

// GetMe validates the bot token and returns the bot's identity.
func (c *Client) GetMe(ctx context.Context) (*User, error) {
	var user User
	if err := c.call(ctx, "getMe", nil, &user); err != nil {
		return nil, fmt.Errorf("telegram: getMe failed: %w", err)
	}
	return &user, nil
}

// GetUpdates long-polls for inbound updates. The call blocks
// server-side for up to request.Timeout seconds.
func (c *Client) GetUpdates(ctx context.Context, request GetUpdatesRequest) ([]Update, error) {
	var updates []Update
	if err := c.call(ctx, "getUpdates", request, &updates); err != nil {
		return nil, fmt.Errorf("telegram: getUpdates failed: %w", err)
	}
	return updates, nil
}

// SendMessage sends a message to a chat. Returns the sent message,
// whose ID is needed to edit it later.
func (c *Client) SendMessage(ctx context.Context, request SendMessageRequest) (*Message, error) {
	var message Message
	if err := c.call(ctx, "sendMessage", request, &message); err != nil {
		return nil, fmt.Errorf("telegram: send to chat %d failed: %w", request.ChatID, err)
	}
	return &message, nil
}

// EditMessageText replaces the text of a previously sent message.
func (c *Client) EditMessageText(ctx context.Context, request EditMessageTextRequest) error {
	if err := c.call(ctx, "editMessageText", request, nil); err != nil {
		return fmt.Errorf("telegram: edit message %d in chat %d failed: %w",
			request.MessageID, request.ChatID, err)
	}
	return nil
}

// EditMessageReplyMarkup replaces a message's inline keyboard. A nil
// ReplyMarkup removes the keyboard, which is how the bot disables a
// button row after it has been acted on.
func (c *Client) EditMessageReplyMarkup(ctx context.Context, request EditMessageReplyMarkupRequest) error {
	if err := c.call(ctx, "editMessageReplyMarkup", request, nil); err != nil {
		return fmt.Errorf("telegram: edit markup of message %d in chat %d failed: %w",
			request.MessageID, request.ChatID, err)
	}
	return nil
}

// AnswerCallbackQuery acknowledges an inline-button press.
func (c *Client) AnswerCallbackQuery(ctx context.Context, request AnswerCallbackQueryRequest) error {
	if err := c.call(ctx, "answerCallbackQuery", request, nil); err != nil {
		return fmt.Errorf("telegram: answer callback %s failed: %w", request.CallbackQueryID, err)
	}
	return nil
}

// GetFile resolves a file ID to a download path on Telegram's servers.
func (c *Client) GetFile(ctx context.Context, fileID string) (*File, error) {
	var file File
	request := struct {
		FileID string `json:"file_id"`
	}{FileID: fileID}
	if err := c.call(ctx, "getFile", request, &file); err != nil {
		return nil, fmt.Errorf("telegram: getFile failed: %w", err)
	}
	return &file, nil
}

// DownloadFile fetches a file's bytes by file ID. This is the
// two-step Bot API download: getFile for the path, then a GET against
// the file endpoint. Reads are bounded by netutil.MaxResponseSize.
func (c *Client) DownloadFile(ctx context.Context, fileID string) ([]byte, error) {
	file, err := c.GetFile(ctx, fileID)
	if err != nil {
		return nil, err
	}
	if file.FilePath == "" {
		return nil, fmt.Errorf("telegram: getFile returned no file_path for %s", fileID)
	}

	downloadURL := c.baseURL + "/file/bot" + c.token + "/" + file.FilePath
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, downloadURL, nil)
	if err != nil {
		return nil, fmt.Errorf("telegram: creating download request: %w", err)
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("telegram: file download failed: %w", err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return nil, &APIError{
			ErrorCode:   response.StatusCode,
			Description: "file download failed",
		}
	}

	data, err := netutil.ReadResponse(response.Body)
	if err != nil {
		return nil, fmt.Errorf("telegram: reading file body: %w", err)
	}

	c.logger.Debug("downloaded telegram file",
		"file_id", fileID,
		"bytes", len(data),
	)
	return data, nil
}

// apiResponse is the Bot API response envelope. Every method returns
// this shape; Result is present on success, the error fields on
// failure.
type apiResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result,omitempty"`
	ErrorCode   int             `json:"error_code,omitempty"`
	Description string          `json:"description,omitempty"`
	Parameters  *struct {
		RetryAfter int `json:"retry_after,omitempty"`
	} `json:"parameters,omitempty"`
}

// call POSTs a JSON payload to a Bot API method and unmarshals the
// envelope's result into out. On API failure it returns a *APIError.
// requestBody may be nil for parameterless methods; out may be nil
// when the caller only cares about success.
func (c *Client) call(ctx context.Context, method string, requestBody, out any) error {
	requestURL := c.baseURL + "/bot" + c.token + "/" + method

	var bodyReader *bytes.Reader
	if requestBody != nil {
		encoded, err := json.Marshal(requestBody)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
		bodyReader = bytes.NewReader(encoded)
	} else {
		bodyReader = bytes.NewReader(nil)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, requestURL, bodyReader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if requestBody != nil {
		request.Header.Set("Content-Type", "application/json")
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", method, err)
	}
	defer response.Body.Close()

	responseBody, err := netutil.ReadResponse(response.Body)
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}

	var envelope apiResponse
	if err := json.Unmarshal(responseBody, &envelope); err != nil {
		// Server returned non-JSON. This should not happen with the
		// Bot API, but fail loud with the status, not the raw body —
		// the URL-embedded token must stay out of error strings.
		return fmt.Errorf("unexpected %d response from %s", response.StatusCode, method)
	}

	if !envelope.OK {
		apiErr := &APIError{
			ErrorCode:   envelope.ErrorCode,
			Description: envelope.Description,
		}
		if envelope.Parameters != nil {
			apiErr.RetryAfter = envelope.Parameters.RetryAfter
		}
		return apiErr
	}

	if out != nil {
		if err := json.Unmarshal(envelope.Result, out); err != nil {
			return fmt.Errorf("parsing %s result: %w", method, err)
		}
	}
	return nil
}
