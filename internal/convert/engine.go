package convert

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"pixbatch/internal/config"
	"pixbatch/internal/failure"
	"pixbatch/internal/logging"
)

// Message keys attached to conversion failures.
const (
	KeyConversionError = "app.notifications.conversionError"
	KeyCancelled       = "app.notifications.cancelled"
)

// CanvasLimits bounds the raster allocated for the resized image.
type CanvasLimits struct {
	MaxDimension int
	MaxPixels    int64
}

// DefaultCanvasLimits mirrors the default dimension policy.
func DefaultCanvasLimits() CanvasLimits {
	l := config.Default().Limits
	return CanvasLimits{MaxDimension: l.MaxDimension, MaxPixels: l.MaxPixels}
}

func (l CanvasLimits) check(w, h int) error {
	if w > l.MaxDimension || h > l.MaxDimension {
		return failure.Wrap(failure.KindContextUnavailable, "convert: canvas", KeyConversionError,
			fmt.Errorf("target %dx%d exceeds %d px per side", w, h, l.MaxDimension))
	}
	if int64(w)*int64(h) > l.MaxPixels {
		return failure.Wrap(failure.KindContextUnavailable, "convert: canvas", KeyConversionError,
			fmt.Errorf("target %dx%d exceeds %d px", w, h, l.MaxPixels))
	}
	return nil
}

// Engine converts one source buffer at a time. It holds no per-call state and
// may be shared.
type Engine struct {
	logger *slog.Logger
	canvas CanvasLimits
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithCanvasLimits replaces the default canvas bounds. Non-positive fields
// keep the default.
func WithCanvasLimits(l CanvasLimits) EngineOption {
	return func(e *Engine) {
		if l.MaxDimension > 0 {
			e.canvas.MaxDimension = l.MaxDimension
		}
		if l.MaxPixels > 0 {
			e.canvas.MaxPixels = l.MaxPixels
		}
	}
}

// NewEngine constructs an engine. A nil logger disables logging.
func NewEngine(logger *slog.Logger, opts ...EngineOption) *Engine {
	e := &Engine{
		logger: logging.NewComponentLogger(logger, "convert"),
		canvas: DefaultCanvasLimits(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Convert decodes src, resizes to the settings' target geometry, and encodes
// to the target format. ctx is checked before decode, before resize, and
// before encode; a cancelled context yields KindCancelled and no output. A
// target larger than the canvas limits fails with KindContextUnavailable
// before anything is allocated for it.
func (e *Engine) Convert(ctx context.Context, src []byte, settings Settings, sink ProgressSink) (*Output, error) {
	if ctx == nil {
		return nil, failure.New(failure.KindContextUnavailable, "convert", KeyConversionError)
	}
	if err := settings.Validate(); err != nil {
		return nil, failure.Wrap(failure.KindEncodeFailed, "convert: settings", KeyConversionError, err)
	}

	logger := logging.WithContext(ctx, e.logger)
	started := time.Now()
	progress := &progressTracker{sink: sink}
	progress.emit(StageStart)

	if err := checkCancelled(ctx, StageDecode); err != nil {
		return nil, err
	}
	img, err := decode(src)
	if err != nil {
		return nil, failure.Wrap(failure.KindDecodeFailed, "convert: decode", KeyConversionError, err)
	}
	bounds := img.Bounds()
	w0, h0 := bounds.Dx(), bounds.Dy()
	if w0 <= 0 || h0 <= 0 {
		return nil, failure.New(failure.KindContextUnavailable, "convert: decode", KeyConversionError)
	}
	progress.emit(StageDecode)

	if err := checkCancelled(ctx, StageResize); err != nil {
		return nil, err
	}
	w1, h1 := TargetSize(w0, h0, settings)
	if err := e.canvas.check(w1, h1); err != nil {
		return nil, err
	}
	img = resize(img, w1, h1)
	progress.emit(StageResize)

	if err := checkCancelled(ctx, StageEncode); err != nil {
		return nil, err
	}
	data, err := encode(img, settings)
	if err != nil {
		return nil, failure.Wrap(failure.KindEncodeFailed, "convert: encode", KeyConversionError, err)
	}
	progress.emit(StageEncode)

	out := NewOutput(settings.Format, w1, h1, data)
	progress.emit(StageDone)

	attrs := []any{
		logging.String("format", settings.Format.String()),
		logging.Int("source_width", w0),
		logging.Int("source_height", h0),
		logging.Int("width", w1),
		logging.Int("height", h1),
		logging.Int("bytes", len(data)),
		logging.Duration("elapsed", time.Since(started)),
	}
	if !settings.Format.Lossless() {
		attrs = append(attrs, logging.Int("quality", settings.Quality))
	}
	logger.Debug("conversion finished", attrs...)
	return out, nil
}

func checkCancelled(ctx context.Context, next Stage) error {
	if err := ctx.Err(); err != nil {
		return failure.Wrap(failure.KindCancelled, "convert: before "+string(next), KeyCancelled, err)
	}
	return nil
}
