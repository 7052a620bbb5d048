package snapshot

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeChart struct {
	missing   bool
	noDrawing bool
	rasterErr error
	w, h      int
}

type fakeView struct {
	charts  map[ChartID]fakeChart
	located []ChartID
	scales  []float64
	bgs     []color.RGBA
}

func (v *fakeView) Locate(_ context.Context, id ChartID) (Element, error) {
	v.located = append(v.located, id)
	c, ok := v.charts[id]
	if !ok || c.missing {
		return nil, ErrContainerMissing
	}
	return &fakeElement{view: v, chart: c}, nil
}

type fakeElement struct {
	view  *fakeView
	chart fakeChart
}

func (e *fakeElement) HasVectorDrawing(context.Context) (bool, error) {
	return !e.chart.noDrawing, nil
}

func (e *fakeElement) Rasterize(_ context.Context, scale float64, bg color.RGBA) ([]byte, error) {
	e.view.scales = append(e.view.scales, scale)
	e.view.bgs = append(e.view.bgs, bg)
	if e.chart.rasterErr != nil {
		return nil, e.chart.rasterErr
	}
	w, h := int(float64(e.chart.w)*scale), int(float64(e.chart.h)*scale)
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, h/2, color.RGBA{B: 200, A: 255})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func newTestCapturer(v View, opts ...Option) (*Capturer, *[]time.Duration) {
	c := NewCapturer(v, opts...)
	var waits []time.Duration
	c.wait = func(ctx context.Context, d time.Duration) error {
		waits = append(waits, d)
		return ctx.Err()
	}
	return c, &waits
}

func allPresent() map[ChartID]fakeChart {
	return map[ChartID]fakeChart{
		StageDistribution:   {w: 40, h: 30},
		PerformanceOverview: {w: 40, h: 30},
		StageRelationships:  {w: 20, h: 20},
		StageProgression:    {w: 60, h: 20},
	}
}

func TestCaptureAllCharts(t *testing.T) {
	v := &fakeView{charts: allPresent()}
	c, waits := newTestCapturer(v)

	m := c.Capture(context.Background(), AllCharts)
	require.Len(t, m, 4)
	assert.Empty(t, m.Missing())
	assert.Equal(t, AllCharts, v.located, "captured sequentially in order")

	s, ok := m.Get(StageDistribution)
	require.True(t, ok)
	assert.Equal(t, 80, s.Width)
	assert.Equal(t, 60, s.Height)
	assert.Equal(t, StageDistribution, s.Chart)

	assert.Equal(t, []float64{2, 2, 2, 2}, v.scales)
	for _, bg := range v.bgs {
		assert.Equal(t, uint8(255), bg.A, "background is opaque")
	}
	assert.Equal(t, []time.Duration{DefaultSettleDelay, DefaultSettleDelay, DefaultSettleDelay, DefaultSettleDelay}, *waits)
}

func TestCaptureIsolatesMissingContainers(t *testing.T) {
	for _, id := range AllCharts {
		t.Run(string(id), func(t *testing.T) {
			charts := allPresent()
			delete(charts, id)
			c, _ := newTestCapturer(&fakeView{charts: charts})

			m := c.Capture(context.Background(), AllCharts)
			require.Len(t, m, 4)
			assert.Equal(t, []ChartID{id}, m.Missing())
			for _, other := range AllCharts {
				if other != id {
					_, ok := m.Get(other)
					assert.True(t, ok, "chart %s", other)
				}
			}
		})
	}
}

func TestCaptureRecordsEveryFailureKindAsAbsent(t *testing.T) {
	var logs bytes.Buffer
	ctx := zerolog.New(&logs).WithContext(context.Background())
	v := &fakeView{charts: map[ChartID]fakeChart{
		StageDistribution:   {noDrawing: true},
		PerformanceOverview: {rasterErr: errors.New("canvas tainted")},
		StageRelationships:  {missing: true},
		StageProgression:    {w: 0, h: 0},
	}}
	c, _ := newTestCapturer(v)

	m := c.Capture(ctx, AllCharts)
	require.Len(t, m, 4)
	assert.Equal(t, AllCharts, m.Missing())
	assert.Contains(t, logs.String(), "canvas tainted")
	assert.Contains(t, logs.String(), `"chart":"radialBar"`)
	assert.Contains(t, logs.String(), ErrNoDrawing.Error())
}

func TestCaptureIsIdempotent(t *testing.T) {
	v := &fakeView{charts: allPresent()}
	c, _ := newTestCapturer(v)

	first := c.Capture(context.Background(), []ChartID{StageDistribution})
	second := c.Capture(context.Background(), []ChartID{StageDistribution})
	assert.Equal(t, first.PNG(StageDistribution), second.PNG(StageDistribution))
}

func TestCaptureHonoursOptions(t *testing.T) {
	v := &fakeView{charts: allPresent()}
	c, waits := newTestCapturer(v,
		WithScale(3),
		WithSettleDelay(50*time.Millisecond),
		WithBackground(color.RGBA{R: 10, G: 20, B: 30}),
	)
	c.Capture(context.Background(), []ChartID{PerformanceOverview})

	assert.Equal(t, []float64{3}, v.scales)
	assert.Equal(t, color.RGBA{R: 10, G: 20, B: 30, A: 255}, v.bgs[0])
	assert.Equal(t, []time.Duration{50 * time.Millisecond}, *waits)
}

func TestCaptureWithCancelledContextMarksRemainingAbsent(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	v := &fakeView{charts: allPresent()}
	c := NewCapturer(v)
	c.wait = func(ctx context.Context, d time.Duration) error {
		cancel()
		return nil
	}

	m := c.Capture(ctx, AllCharts)
	require.Len(t, m, 4)
	_, ok := m.Get(StageDistribution)
	assert.True(t, ok)
	assert.Equal(t, AllCharts[1:], m.Missing())
}

func TestSleepReturnsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	start := time.Now()
	err := sleep(ctx, time.Hour)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), time.Second)
	assert.NoError(t, sleep(context.Background(), time.Millisecond))
}

func TestMapHelpers(t *testing.T) {
	m := Absent(AllCharts)
	assert.Len(t, m, 4)
	assert.Equal(t, AllCharts, m.Missing())
	assert.Nil(t, m.PNG(StageDistribution))
	_, ok := m.Get("unknown")
	assert.False(t, ok)

	assert.Equal(t, "Stage Distribution", StageDistribution.Title())
	assert.Equal(t, "Performance Overview", PerformanceOverview.Title())
	assert.Equal(t, "custom", ChartID("custom").Title())
}
