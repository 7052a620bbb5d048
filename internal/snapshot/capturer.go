package snapshot

import (
	"bytes"
	"context"
	"fmt"
	"image/color"
	"image/png"
	"time"

	"github.com/rs/zerolog"
)

const (
	DefaultSettleDelay = 500 * time.Millisecond
	DefaultScale       = 2.0
)

// Capturer turns the charts of a View into a Map.
type Capturer struct {
	view       View
	settle     time.Duration
	scale      float64
	background color.RGBA
	wait       func(ctx context.Context, d time.Duration) error
}

type Option func(*Capturer)

// WithSettleDelay sets how long to let a chart finish drawing.
func WithSettleDelay(d time.Duration) Option {
	return func(c *Capturer) { c.settle = d }
}

// WithScale sets the supersampling factor.
func WithScale(s float64) Option {
	return func(c *Capturer) {
		if s > 0 {
			c.scale = s
		}
	}
}

// WithBackground sets the opaque background colour.
func WithBackground(bg color.RGBA) Option {
	return func(c *Capturer) {
		bg.A = 0xff
		c.background = bg
	}
}

func NewCapturer(view View, opts ...Option) *Capturer {
	c := &Capturer{
		view:       view,
		settle:     DefaultSettleDelay,
		scale:      DefaultScale,
		background: color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff},
		wait:       sleep,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Capture returns one entry per id. Charts are captured sequentially;
// a chart that cannot be captured is logged and recorded as absent.
func (c *Capturer) Capture(ctx context.Context, ids []ChartID) Map {
	log := zerolog.Ctx(ctx)
	out := make(Map, len(ids))
	for _, id := range ids {
		snap, err := c.captureOne(ctx, id)
		if err != nil {
			log.Warn().Err(err).Str("chart", string(id)).Msg("chart not captured")
			out[id] = nil
			continue
		}
		log.Debug().Str("chart", string(id)).Int("width", snap.Width).Int("height", snap.Height).Msg("chart captured")
		out[id] = snap
	}
	return out
}

func (c *Capturer) captureOne(ctx context.Context, id ChartID) (*Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	el, err := c.view.Locate(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("locate: %w", err)
	}
	// The settle delay is a wait, not a deadline: whatever is drawn after
	// it elapses is what gets captured.
	if err := c.wait(ctx, c.settle); err != nil {
		return nil, err
	}
	ok, err := el.HasVectorDrawing(ctx)
	if err != nil {
		return nil, fmt.Errorf("inspect: %w", err)
	}
	if !ok {
		return nil, ErrNoDrawing
	}
	img, err := el.Rasterize(ctx, c.scale, c.background)
	if err != nil {
		return nil, fmt.Errorf("rasterize: %w", err)
	}
	cfg, err := png.DecodeConfig(bytes.NewReader(img))
	if err != nil {
		return nil, fmt.Errorf("rasterize: invalid png: %w", err)
	}
	return &Snapshot{Chart: id, PNG: img, Width: cfg.Width, Height: cfg.Height}, nil
}
