// Copyright 2026 The Dutydesk Authors
// SPDX-License-Identifier: Apache-2.0

// dutydesk is a Telegram bot that turns photographed customs-duty
// invoices into structured shipment records and customer-facing
// settlement tickets. Operators send invoice photos, trigger
// extraction with /done, review the recognized shipments with inline
// buttons and the /order command, and collect tickets with /tickets.
//
// Configuration comes from environment variables:
//   - DUTYDESK_TELEGRAM_TOKEN: bot token from @BotFather (required)
//   - DUTYDESK_ANTHROPIC_API_KEY: Anthropic API key (required)
//   - DUTYDESK_ALLOWED_USERS: comma-separated user IDs (empty: allow all)
//   - DUTYDESK_CONFIG: optional path to a YAML settings file
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/dutydesk/dutydesk/bot"
	"github.com/dutydesk/dutydesk/extraction"
	"github.com/dutydesk/dutydesk/lib/config"
	"github.com/dutydesk/dutydesk/lib/llm"
	"github.com/dutydesk/dutydesk/lib/process"
	"github.com/dutydesk/dutydesk/telegram"
	"github.com/dutydesk/dutydesk/workflow"
)

func main() {
	if err := run(); err != nil {
		process.Fatal(err)
	}
}

func run() error {
	var (
		configPath = pflag.String("config", "", "path to a YAML settings file (overrides DUTYDESK_CONFIG)")
		logLevel   = pflag.String("log-level", "info", "log level: debug, info, warn, error")
	)
	pflag.Parse()

	var level slog.Level
	if err := level.UnmarshalText([]byte(*logLevel)); err != nil {
		return fmt.Errorf("invalid log level %q: %w", *logLevel, err)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	extractionTimeout, err := cfg.ExtractionTimeout()
	if err != nil {
		return err
	}

	client, err := telegram.NewClient(telegram.ClientConfig{
		Token:   cfg.Telegram.Token,
		BaseURL: cfg.Telegram.BaseURL,
	})
	if err != nil {
		return err
	}

	provider, err := llm.NewAnthropic(llm.AnthropicConfig{
		APIKey:  cfg.Extraction.APIKey,
		BaseURL: cfg.Extraction.BaseURL,
	})
	if err != nil {
		return err
	}

	extractor, err := extraction.New(extraction.Config{
		Provider:  provider,
		Model:     cfg.Extraction.Model,
		MaxTokens: cfg.Extraction.MaxTokens,
		Timeout:   extractionTimeout,
		Logger:    logger,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	me, err := client.GetMe(ctx)
	if err != nil {
		return fmt.Errorf("validating bot token: %w", err)
	}
	logger.Info("bot started",
		"username", me.Username,
		"model", cfg.Extraction.Model,
		"allowed_users", len(cfg.Access.AllowedUsers))

	service, err := bot.New(bot.Config{
		API:         client,
		Extractor:   extractor,
		Store:       workflow.NewStore(),
		Access:      cfg.Access,
		PollTimeout: cfg.Telegram.PollTimeoutSeconds,
		Logger:      logger,
	})
	if err != nil {
		return err
	}
	return service.Run(ctx)
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}
