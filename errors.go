// Copyright © 2026, the pagesurf authors.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package pagesurf

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/pagesurf/pagesurf/logger"
)

// ErrSurfaceTooLarge reports that a requested surface exceeds the pixel
// budget. Recoverable: the controller skips the attachment and a later
// bind or zoom settle retries naturally.
var ErrSurfaceTooLarge = errors.New("surface exceeds pixel budget")

// DecodeError tags a failed page decode. It travels through the same
// notification channel as a successful decode so subscribers can show an
// error placeholder instead of loading forever.
type DecodeError struct {
	Page int
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode page %d: %v", e.Page, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// failFast mirrors Config.DebugOn; set once per session open.
var failFast atomic.Bool

// logicErrorf reports a programming defect in the caller (double subscribe,
// render with bad dimensions). With DebugOn the process panics so the bug
// surfaces during development; in production it is logged and absorbed.
func logicErrorf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if failFast.Load() {
		panic("pagesurf: logic error: " + msg)
	}
	logger.Error("logic error: " + msg)
}
