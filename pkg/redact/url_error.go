// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package redact strips credentials from urls before they reach logs.
package redact

import (
	"errors"
	"net/url"
	"regexp"
)

const placeholder = "REDACTED"

var (
	sensitiveParam = regexp.MustCompile(`(?i)([?&](?:apikey|api_key|key|token|passkey|password|secret)=)[^&#\s"]*`)
	userPassword   = regexp.MustCompile(`(://[^:/@\s]+:)[^@/\s]+@`)
)

// URL replaces credential query values and userinfo passwords in raw.
func URL(raw string) string {
	raw = sensitiveParam.ReplaceAllString(raw, "${1}"+placeholder)
	return userPassword.ReplaceAllString(raw, "${1}"+placeholder+"@")
}

// URLError redacts credentials in err when its chain holds a *url.Error.
// The *url.Error is fixed in place and the result wraps err, so messages
// formatted by earlier wrappers are redacted too. Other errors are returned
// unchanged.
func URLError(err error) error {
	if err == nil {
		return nil
	}
	var urlErr *url.Error
	if !errors.As(err, &urlErr) {
		return err
	}
	urlErr.URL = URL(urlErr.URL)
	return &redactedError{err: err}
}

type redactedError struct {
	err error
}

func (e *redactedError) Error() string { return URL(e.err.Error()) }

func (e *redactedError) Unwrap() error { return e.err }
