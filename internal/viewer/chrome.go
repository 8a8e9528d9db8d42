package viewer

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path/filepath"
	"sync"
	"time"

	"github.com/chromedp/cdproto/inspector"
	"github.com/chromedp/cdproto/target"
	"github.com/chromedp/chromedp"
)

// Chrome shows the image in a visible Chrome window and blocks until the
// window is closed. If the browser cannot be started the image is handed to
// Fallback instead, when set.
type Chrome struct {
	Width    int           // Window width in pixels, default 1100
	Height   int           // Window height in pixels, default 750
	Poll     time.Duration // How often to check the window is still open, default 1s
	ExecPath string        // Browser binary, default lets chromedp find one
	Fallback Viewer
	Out      io.Writer
}

// FileURL returns the file:// URL for a local path
func FileURL(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", path, err)
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}
	return u.String(), nil
}

// Show implements Viewer
func (c *Chrome) Show(ctx context.Context, path string) error {
	fileURL, err := FileURL(path)
	if err != nil {
		return err
	}

	width, height, poll := c.Width, c.Height, c.Poll
	if width <= 0 {
		width = 1100
	}
	if height <= 0 {
		height = 750
	}
	if poll <= 0 {
		poll = time.Second
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", false),
		chromedp.Flag("allow-file-access-from-files", true),
		chromedp.WindowSize(width, height),
	)
	if c.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(c.ExecPath))
	}

	allocCtx, cancel := chromedp.NewExecAllocator(ctx, opts...)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	if err := chromedp.Run(browserCtx, chromedp.Navigate(fileURL)); err != nil {
		if c.Fallback == nil || ctx.Err() != nil {
			return fmt.Errorf("opening chart window: %w", err)
		}
		if c.Out != nil {
			fmt.Fprintf(c.Out, "Chrome unavailable (%v), using the system viewer\n", err)
		}
		return c.Fallback.Show(ctx, path)
	}

	closed := make(chan struct{})
	var once sync.Once
	markClosed := func() { once.Do(func() { close(closed) }) }

	chromedp.ListenTarget(browserCtx, func(ev interface{}) {
		if _, ok := ev.(*inspector.EventDetached); ok {
			markClosed()
		}
	})
	chromedp.ListenBrowser(browserCtx, func(ev interface{}) {
		if _, ok := ev.(*target.EventTargetDestroyed); ok {
			markClosed()
		}
	})

	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	for {
		select {
		case <-closed:
			return nil
		case <-browserCtx.Done():
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return nil
		case <-ticker.C:
			if !windowOpen(browserCtx, poll) {
				return nil
			}
		}
	}
}

// windowOpen probes the page; a closed window or browser fails the probe
func windowOpen(ctx context.Context, timeout time.Duration) bool {
	probeCtx, cancel := context.WithTimeout(ctx, 2*timeout)
	defer cancel()

	var state string
	return chromedp.Run(probeCtx, chromedp.Evaluate(`document.readyState`, &state)) == nil
}
