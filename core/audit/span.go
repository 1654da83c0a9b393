// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package audit

import (
	"context"
	"fmt"
	"runtime/trace"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Stage names a step of site generation.
type Stage string

// Generation stages.
const (
	StageLoad    Stage = "load"
	StageResolve Stage = "resolve"
	StageLocale  Stage = "locale"
	StageExtract Stage = "extract"
)

// Span represents a generation stage in flight.
type Span struct {
	// only these fields are set automatically
	task     *trace.Task
	start    time.Time
	duration time.Duration

	Stage  Stage
	Locale string
	Items  int // pages, files or entries handled
	Bytes  int // output size
	Error  error
}

// Begin starts timing the span and opens a runtime/trace task for it.
func (span *Span) Begin(ctx context.Context) context.Context {
	span.start = time.Now()

	ctx, span.task = trace.NewTask(ctx, "build."+string(span.Stage))

	return ctx
}

// End stops timing the span. Only the first call has an effect.
func (span *Span) End() {
	if span.task != nil {
		span.duration = time.Since(span.start)
		span.task.End()

		span.task = nil
	}
}

// Duration returns the time between Begin and End.
func (span *Span) Duration() time.Duration {
	return span.duration
}

// Log writes the span at debug level, or at error level when it failed.
func (span *Span) Log() {
	var event *zerolog.Event
	if span.Error != nil {
		event = log.Error().Err(span.Error)
	} else {
		event = log.Debug()
	}

	event.Str("sys", "build")
	event.Str("stage", string(span.Stage))

	if span.Locale != "" {
		event.Str("locale", span.Locale)
	}

	event.Int("items", span.Items)
	event.Str("len", humanizeSize(span.Bytes))
	event.Dur("dur", span.duration)

	event.Msg("Stage finished")
}

const (
	bytesInKB = 1024
	bytesInMB = bytesInKB * bytesInKB
	bytesInGB = bytesInMB * bytesInKB
)

func humanizeSize(x int) string {
	switch {
	case x < bytesInKB:
		return strconv.Itoa(x)
	case x < bytesInMB:
		return fmt.Sprintf("%.2fK", float64(x)/bytesInKB)
	case x < bytesInGB:
		return fmt.Sprintf("%.2fM", float64(x)/bytesInMB)
	default:
		return fmt.Sprintf("%.2fG", float64(x)/bytesInGB)
	}
}
