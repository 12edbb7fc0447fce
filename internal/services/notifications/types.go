// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package notifications

type EventType string

const (
	EventFetchCompleted    EventType = "fetch_completed"
	EventFetchFailed       EventType = "fetch_failed"
	EventCorrectionApplied EventType = "correction_applied"
)

type EventDefinition struct {
	Type        EventType `json:"type"`
	Label       string    `json:"label"`
	Description string    `json:"description"`
}

var eventDefinitions = []EventDefinition{
	{Type: EventFetchCompleted, Label: "Poster fetch completed", Description: "A batch of poster fetches finishes (summary counts)."},
	{Type: EventFetchFailed, Label: "Poster fetch failed", Description: "A batch ends with no poster stored, or is cancelled."},
	{Type: EventCorrectionApplied, Label: "Correction applied", Description: "A release is pointed at a confirmed external id."},
}

func EventDefinitions() []EventDefinition {
	out := make([]EventDefinition, len(eventDefinitions))
	copy(out, eventDefinitions)
	return out
}
