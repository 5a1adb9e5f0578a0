package imgkit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/alnah/go-imgkit/internal/fileutil"
)

// Viewport used by the Chrome backend when the options leave it unset.
// The width matches wkhtmltoimage's default.
const (
	defaultViewportWidth  = 1024
	defaultViewportHeight = 768
)

// browserEnv holds the environment variables read when launching Chrome.
var browserEnv = struct {
	Bin, NoSandbox, CI string
}{"ROD_BROWSER_BIN", "ROD_NO_SANDBOX", "CI"}

// chromeRenderer screenshots pages in headless Chrome through go-rod.
// Only width, height, zoom and quality are honoured; other wkhtmltoimage
// flags are ignored.
type chromeRenderer struct {
	mu      sync.Mutex
	browser *rod.Browser
	timeout time.Duration
	logger  *slog.Logger
}

func newChromeRenderer(timeout time.Duration, logger *slog.Logger) *chromeRenderer {
	return &chromeRenderer{timeout: timeout, logger: logger}
}

// ensureBrowser lazily launches and connects to the browser. Rod downloads
// a managed Chromium on first use when none is installed.
func (r *chromeRenderer) ensureBrowser() (*rod.Browser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.browser != nil {
		return r.browser, nil
	}

	l := launcher.New()
	if bin := os.Getenv(browserEnv.Bin); bin != "" {
		l = l.Bin(bin)
	}
	// NoSandbox is required in CI and containers
	if os.Getenv(browserEnv.CI) == "true" || os.Getenv(browserEnv.NoSandbox) == "1" || os.Getenv(browserEnv.Bin) != "" {
		l = l.NoSandbox(true)
	}

	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}
	r.browser = browser
	return browser, nil
}

// Close releases browser resources.
func (r *chromeRenderer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.browser == nil {
		return nil
	}
	err := r.browser.Close()
	r.browser = nil
	return err
}

// Render loads the source in a fresh tab and captures it.
func (r *chromeRenderer) Render(ctx context.Context, req *renderRequest) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	shot, err := screenshotParams(req.Format, req.Options)
	if err != nil {
		return nil, err
	}
	viewport, fullPage := viewportParams(req.Options)

	target, cleanup, err := pageURL(req.Source)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	browser, err := r.ensureBrowser()
	if err != nil {
		return nil, err
	}

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}
	defer func() { _ = page.Close() }()

	timeout := r.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if until := time.Until(deadline); until < timeout {
			timeout = until
		}
	}
	if timeout <= 0 {
		return nil, &CommandError{Command: []string{"chrome", target}, ExitCode: -1, TimedOut: true}
	}
	p := page.Context(ctx).Timeout(timeout)
	defer p.CancelTimeout()

	r.logger.DebugContext(ctx, "capturing page", "url", target, "width", viewport.Width, "height", viewport.Height)

	if err := p.SetViewport(viewport); err != nil {
		return nil, fmt.Errorf("%w: setting viewport: %v", ErrPageLoad, err)
	}
	if err := p.Navigate(target); err != nil {
		return nil, r.pageError(ctx, target, err)
	}
	if err := p.WaitLoad(); err != nil {
		return nil, r.pageError(ctx, target, err)
	}

	img, err := p.Screenshot(fullPage, shot)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrScreenshot, err)
	}

	if req.Output != "" {
		if err := os.WriteFile(req.Output, img, 0o644); err != nil { // #nosec G306 -- output image is not secret
			return nil, fmt.Errorf("writing %s: %w", req.Output, err)
		}
		return nil, nil
	}
	return img, nil
}

// pageError tells a timeout apart from a load failure.
func (r *chromeRenderer) pageError(ctx context.Context, target string, err error) error {
	if ctx.Err() == nil && errors.Is(err, context.DeadlineExceeded) {
		r.logger.WarnContext(ctx, "page load timed out", "url", target, "timeout", r.timeout)
		return &CommandError{Command: []string{"chrome", target}, ExitCode: -1, TimedOut: true, Err: err}
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return fmt.Errorf("%w: %v", ErrPageLoad, err)
}

// pageURL returns what the tab navigates to. HTML sources are written to a
// temporary file first.
func pageURL(src *Source) (string, func(), error) {
	noop := func() {}
	switch src.Kind() {
	case KindURL:
		return src.target(), noop, nil
	case KindFile:
		abs, err := filepath.Abs(src.String())
		if err != nil {
			return "", noop, fmt.Errorf("%w: %v", ErrPageLoad, err)
		}
		return "file://" + filepath.ToSlash(abs), noop, nil
	default:
		path, cleanup, err := fileutil.WriteTempFile(src.String(), "html")
		if err != nil {
			return "", noop, fmt.Errorf("%w: %v", ErrPageLoad, err)
		}
		return "file://" + filepath.ToSlash(path), cleanup, nil
	}
}

func screenshotParams(f Format, opts RenderOptions) (*proto.PageCaptureScreenshot, error) {
	req := &proto.PageCaptureScreenshot{}
	switch {
	case f == FormatPNG:
		req.Format = proto.PageCaptureScreenshotFormatPng
	case f.IsJPEG():
		req.Format = proto.PageCaptureScreenshotFormatJpeg
		if q, ok := intOption(opts, "quality"); ok && q > 0 && q <= 100 {
			req.Quality = &q
		}
	default:
		return nil, fmt.Errorf("%w: chrome cannot produce %s", ErrUnsupportedFormat, f)
	}
	return req, nil
}

// viewportParams maps the wkhtmltoimage geometry options onto the emulated
// device. Without a height the whole page is captured.
func viewportParams(opts RenderOptions) (*proto.EmulationSetDeviceMetricsOverride, bool) {
	vp := &proto.EmulationSetDeviceMetricsOverride{
		Width:             defaultViewportWidth,
		Height:            defaultViewportHeight,
		DeviceScaleFactor: 1,
	}
	if w, ok := intOption(opts, "width"); ok && w > 0 {
		vp.Width = w
	}
	fullPage := true
	if h, ok := intOption(opts, "height"); ok && h > 0 {
		vp.Height = h
		fullPage = false
	}
	if v, ok := opts.Get("zoom"); ok {
		if z, err := strconv.ParseFloat(scalarString(v), 64); err == nil && z > 0 {
			vp.DeviceScaleFactor = z
		}
	}
	return vp, fullPage
}

func intOption(opts RenderOptions, key string) (int, bool) {
	v, ok := opts.Get(key)
	if !ok || v == nil {
		return 0, false
	}
	n, err := strconv.Atoi(scalarString(v))
	if err != nil {
		return 0, false
	}
	return n, true
}
