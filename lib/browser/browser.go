// Package browser wraps a single chromedp-driven browser session behind
// the handful of primitives page scraping needs: navigate, bounded waits
// on element readiness, click, type and rendered-HTML capture.
//
// One Session owns exactly one browser tab. Cookie state and DOM focus
// live in that tab, so callers must drive it sequentially.
package browser

import (
	"context"
	"time"

	"github.com/chromedp/chromedp"
)

type Options struct {
	Headless  bool
	UserAgent string
	// WaitTimeout bounds every element-readiness wait. Zero means 10s.
	WaitTimeout time.Duration
}

type Session struct {
	ctx     context.Context
	cancels []context.CancelFunc
	timeout time.Duration
}

// A Selector addresses elements either by CSS query or by XPath.
type Selector struct {
	Query string
	XPath bool
}

func CSS(query string) Selector   { return Selector{Query: query} }
func XPath(query string) Selector { return Selector{Query: query, XPath: true} }

func (sel Selector) queryOption() chromedp.QueryOption {
	if sel.XPath {
		return chromedp.BySearch
	}
	return chromedp.ByQuery
}

func NewSession(ctx context.Context, opts Options) (*Session, error) {
	timeout := opts.WaitTimeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	allocOpts := append(
		chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if opts.UserAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(opts.UserAgent))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocOpts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	s := &Session{
		ctx:     browserCtx,
		cancels: []context.CancelFunc{browserCancel, allocCancel},
		timeout: timeout,
	}

	// launches the browser process
	if err := chromedp.Run(browserCtx); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

func (s *Session) Close() {
	for _, cancel := range s.cancels {
		cancel()
	}
}

// run executes chromedp actions on the session tab. The actions
// themselves are bounded by the session wait timeout; the caller context
// only aborts the wait early.
func (s *Session) run(ctx context.Context, actions ...chromedp.Action) error {
	tctx, cancel := context.WithTimeout(s.ctx, s.timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- chromedp.Run(tctx, actions...)
	}()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		cancel()
		<-done
		return ctx.Err()
	}
}

func (s *Session) Navigate(ctx context.Context, url string) error {
	return s.run(ctx, chromedp.Navigate(url))
}

// WaitVisible blocks until at least one element matching the selector is
// visible, or the session wait timeout elapses.
func (s *Session) WaitVisible(ctx context.Context, sel Selector) error {
	return s.run(ctx, chromedp.WaitVisible(sel.Query, sel.queryOption()))
}

// Click waits for the element to be visible, then clicks it.
func (s *Session) Click(ctx context.Context, sel Selector) error {
	return s.run(
		ctx,
		chromedp.WaitVisible(sel.Query, sel.queryOption()),
		chromedp.Click(sel.Query, sel.queryOption()),
	)
}

// SendKeys waits for the element to be visible, then types into it.
func (s *Session) SendKeys(ctx context.Context, sel Selector, value string) error {
	return s.run(
		ctx,
		chromedp.WaitVisible(sel.Query, sel.queryOption()),
		chromedp.SendKeys(sel.Query, value, sel.queryOption()),
	)
}

// HTML returns the rendered document markup.
func (s *Session) HTML(ctx context.Context) (string, error) {
	var out string
	err := s.run(ctx, chromedp.OuterHTML("html", &out, chromedp.ByQuery))
	return out, err
}

// Location returns the current page URL.
func (s *Session) Location(ctx context.Context) (string, error) {
	var out string
	err := s.run(ctx, chromedp.Location(&out))
	return out, err
}
