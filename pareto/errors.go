// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package pareto

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

// ValidationError reports a malformed or inconsistent snapshot.
// It is always a caller bug and never worth retrying.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid snapshot: " + e.Reason
}

func validationErrorf(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// ResourceLimitError reports an input or candidate space above a configured
// bound. Callers can retry after narrowing the request.
type ResourceLimitError struct {
	Resource string
	Limit    int
	Actual   int
}

func (e *ResourceLimitError) Error() string {
	if e.Actual <= 0 {
		return fmt.Sprintf("%s exceeds limit of %s", e.Resource, humanize.Comma(int64(e.Limit)))
	}
	return fmt.Sprintf("%s: %s exceeds limit of %s",
		e.Resource, humanize.Comma(int64(e.Actual)), humanize.Comma(int64(e.Limit)))
}
