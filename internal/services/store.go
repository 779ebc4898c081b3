package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// DefaultStoreTimeout bounds a single service call's store work when none is
// configured.
const DefaultStoreTimeout = 5 * time.Second

// storeCtx derives the per-call store deadline from ctx.
func storeCtx(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		d = DefaultStoreTimeout
	}
	return context.WithTimeout(ctx, d)
}

// storeErr classifies a store failure: deadline overruns become
// ErrUnavailable, everything else passes through untouched.
func storeErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return err
}

// cleanText trims and NFC-normalizes user supplied text.
func cleanText(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// cleanMessage normalizes a message body and enforces the length rules.
func cleanMessage(text string, maxRunes int) (string, error) {
	text = cleanText(text)
	if text == "" {
		return "", ErrEmptyMessage
	}
	if maxRunes > 0 && utf8.RuneCountInString(text) > maxRunes {
		return "", ErrMessageTooLong
	}
	return text, nil
}
