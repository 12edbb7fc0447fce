// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package notifications sends batch summaries to shoutrrr targets.
package notifications

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/nicholas-fedor/shoutrrr/pkg/router"
	"github.com/nicholas-fedor/shoutrrr/pkg/types"
	"github.com/rs/zerolog"
)

type Notifier interface {
	Notify(ctx context.Context, event Event)
}

type Event struct {
	Type      EventType
	Title     string
	Total     int
	Stored    int
	FromCache int
	NotFound  int
	Failed    int
	Cancelled bool

	ReleaseID  int64
	Provider   string
	ProviderID string

	ErrorMessage string
}

type sendFunc func(ctx context.Context, url, title, message string) error

type Service struct {
	urls   []string
	logger zerolog.Logger
	send   sendFunc
}

// NewService returns nil when no target is configured. A nil Service
// drops every event.
func NewService(urls []string, logger zerolog.Logger) *Service {
	var targets []string
	for _, u := range urls {
		if u = strings.TrimSpace(u); u != "" {
			targets = append(targets, u)
		}
	}
	if len(targets) == 0 {
		return nil
	}
	return &Service{urls: targets, logger: logger, send: send}
}

func ValidateURL(rawURL string) error {
	_, err := router.New(nil, rawURL)
	return err
}

// Notify formats event and sends it to every target. Send failures are
// logged, not returned.
func (s *Service) Notify(ctx context.Context, event Event) {
	if s == nil {
		return
	}

	title, message := formatEvent(event)
	if strings.TrimSpace(message) == "" {
		return
	}

	for _, u := range s.urls {
		if err := s.send(ctx, u, title, message); err != nil {
			s.logger.Error().Err(err).Str("event", string(event.Type)).Msg("notifications: send failed")
		}
	}
}

func send(_ context.Context, url, title, message string) error {
	sender, err := router.New(nil, url)
	if err != nil {
		return err
	}

	params := types.Params{}
	if trimmed := strings.TrimSpace(title); trimmed != "" {
		params.SetTitle(truncateMessage(trimmed, maxTitleLength))
	}

	results := sender.Send(truncateMessage(message, maxMessageLength), &params)
	var errs []error
	for _, sendErr := range results {
		if sendErr != nil {
			errs = append(errs, sendErr)
		}
	}
	return errors.Join(errs...)
}

func formatEvent(event Event) (string, string) {
	switch event.Type {
	case EventFetchCompleted, EventFetchFailed:
		title := "Poster fetch completed"
		if event.Type == EventFetchFailed {
			title = "Poster fetch failed"
		}
		if t := strings.TrimSpace(event.Title); t != "" {
			title = t
		}
		lines := []string{
			formatLine("Releases", fmt.Sprintf("%d", event.Total)),
			formatLine("Stored", fmt.Sprintf("%d", event.Stored)),
			formatLine("From cache", fmt.Sprintf("%d", event.FromCache)),
			formatLine("Not found", fmt.Sprintf("%d", event.NotFound)),
			formatLine("Failed", fmt.Sprintf("%d", event.Failed)),
		}
		if event.Cancelled {
			lines = append(lines, formatLine("Status", "cancelled"))
		}
		if event.ErrorMessage != "" {
			lines = append(lines, formatLine("Error", event.ErrorMessage))
		}
		return title, buildMessage(lines)
	case EventCorrectionApplied:
		lines := []string{
			formatLine("Release", fmt.Sprintf("%d", event.ReleaseID)),
			formatLine("Id", fmt.Sprintf("%s:%s", event.Provider, event.ProviderID)),
		}
		return "Correction applied", buildMessage(lines)
	default:
		return "", ""
	}
}

func formatLine(label, value string) string {
	trimmedLabel := strings.TrimSpace(label)
	trimmedValue := strings.TrimSpace(value)
	if trimmedLabel == "" || trimmedValue == "" {
		return ""
	}
	return fmt.Sprintf("%s: %s", trimmedLabel, trimmedValue)
}

func buildMessage(lines []string) string {
	payload := make([]string, 0, len(lines))
	for _, line := range lines {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			payload = append(payload, trimmed)
		}
	}
	return strings.Join(payload, "\n")
}

const (
	maxMessageLength = 420
	maxTitleLength   = 80
)

func truncateMessage(value string, limit int) string {
	if limit <= 0 {
		return value
	}
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return ""
	}
	if utf8.RuneCountInString(trimmed) <= limit {
		return trimmed
	}
	runes := []rune(trimmed)
	if limit <= 1 {
		return string(runes[:limit])
	}
	return strings.TrimSpace(string(runes[:limit-1])) + "…"
}
