package snapshot

import (
	"context"
	"fmt"
	"image/color"
	"os"
	"strconv"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/chromedp"
)

// ChromeOptions configures a headless Chromium session.
type ChromeOptions struct {
	ExecPath       string
	Attribute      string
	Timeout        time.Duration
	ViewportWidth  int64
	ViewportHeight int64
}

func (o ChromeOptions) withDefaults() ChromeOptions {
	if o.ExecPath == "" {
		o.ExecPath = detectChromePath()
	}
	if o.Attribute == "" {
		o.Attribute = "data-chart"
	}
	if o.Timeout <= 0 {
		o.Timeout = 30 * time.Second
	}
	if o.ViewportWidth <= 0 {
		o.ViewportWidth = 1440
	}
	if o.ViewportHeight <= 0 {
		o.ViewportHeight = 900
	}
	return o
}

// ChromeView is a dashboard page loaded in headless Chromium.
type ChromeView struct {
	ctx       context.Context
	attribute string
	cancels   []context.CancelFunc
}

// OpenChrome starts Chromium, loads url and waits for the body. The
// returned view must be closed.
func OpenChrome(ctx context.Context, url string, opts ChromeOptions) (*ChromeView, error) {
	opts = opts.withDefaults()

	timeoutCtx, cancel := context.WithTimeout(ctx, opts.Timeout)

	allocOpts := []chromedp.ExecAllocatorOption{
		chromedp.NoSandbox,
		chromedp.DisableGPU,
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.WindowSize(int(opts.ViewportWidth), int(opts.ViewportHeight)),
	}
	if opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ExecPath))
	}
	allocCtx, allocCancel := chromedp.NewExecAllocator(timeoutCtx, append(chromedp.DefaultExecAllocatorOptions[:], allocOpts...)...)
	taskCtx, taskCancel := chromedp.NewContext(allocCtx)

	v := &ChromeView{
		ctx:       taskCtx,
		attribute: opts.Attribute,
		cancels:   []context.CancelFunc{taskCancel, allocCancel, cancel},
	}
	if err := chromedp.Run(taskCtx,
		emulation.SetDeviceMetricsOverride(opts.ViewportWidth, opts.ViewportHeight, 1, false),
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	); err != nil {
		v.Close()
		return nil, fmt.Errorf("open %s: %w", url, err)
	}
	return v, nil
}

// Close shuts down the browser.
func (v *ChromeView) Close() {
	for _, cancel := range v.cancels {
		cancel()
	}
	v.cancels = nil
}

func (v *ChromeView) selector(id ChartID) string {
	return fmt.Sprintf(`[%s=%s]`, v.attribute, strconv.Quote(string(id)))
}

// run executes actions in the browser tab unless ctx is already done.
func (v *ChromeView) run(ctx context.Context, actions ...chromedp.Action) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return chromedp.Run(v.ctx, actions...)
}

func (v *ChromeView) Locate(ctx context.Context, id ChartID) (Element, error) {
	sel := v.selector(id)
	var n int
	expr := fmt.Sprintf(`document.querySelectorAll(%s).length`, strconv.Quote(sel))
	if err := v.run(ctx, chromedp.Evaluate(expr, &n)); err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, ErrContainerMissing
	}
	return &chromeElement{view: v, selector: sel}, nil
}

type chromeElement struct {
	view     *ChromeView
	selector string
}

func (e *chromeElement) HasVectorDrawing(ctx context.Context) (bool, error) {
	var ok bool
	expr := fmt.Sprintf(`(function(){const el=document.querySelector(%s);return !!(el && el.querySelector("svg"));})()`,
		strconv.Quote(e.selector))
	if err := e.view.run(ctx, chromedp.Evaluate(expr, &ok)); err != nil {
		return false, err
	}
	return ok, nil
}

func (e *chromeElement) Rasterize(ctx context.Context, scale float64, bg color.RGBA) ([]byte, error) {
	var buf []byte
	err := e.view.run(ctx,
		emulation.SetDefaultBackgroundColorOverride().WithColor(&cdp.RGBA{
			R: int64(bg.R), G: int64(bg.G), B: int64(bg.B), A: 1,
		}),
		chromedp.ScrollIntoView(e.selector, chromedp.ByQuery),
		chromedp.ScreenshotScale(e.selector, scale, &buf, chromedp.ByQuery),
	)
	if err != nil {
		return nil, err
	}
	return buf, nil
}

func detectChromePath() string {
	candidates := []string{
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/usr/bin/google-chrome",
	}
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}
