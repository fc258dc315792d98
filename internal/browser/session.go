package browser

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"
)

// ErrNotFound is returned when a selector does not match a visible element
// before the lookup timeout expires.
var ErrNotFound = errors.New("element not found")

const DefaultTimeout = 10 * time.Second

type LaunchOptions struct {
	Headless bool

	// Timeout is the default wait applied to every element lookup, click and
	// fill on the page.
	Timeout time.Duration
}

// Session is a single chromium page driven through playwright. It owns the
// playwright driver process, so closing the session stops everything.
type Session struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	page    playwright.Page

	closeOnce sync.Once
	closeErr  error

	disconnectOnce sync.Once
	disconnected   chan struct{}
}

// Launch starts playwright, opens chromium and creates the page used for the
// whole run.
func Launch(opts LaunchOptions) (*Session, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}

	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
	})
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	context, err := browser.NewContext()
	if err != nil {
		browser.Close()
		pw.Stop()
		return nil, fmt.Errorf("failed to create context: %w", err)
	}

	page, err := context.NewPage()
	if err != nil {
		browser.Close()
		pw.Stop()
		return nil, fmt.Errorf("failed to create page: %w", err)
	}
	page.SetDefaultTimeout(milliseconds(opts.Timeout))

	s := &Session{
		pw:           pw,
		browser:      browser,
		page:         page,
		disconnected: make(chan struct{}),
	}

	// the operator closing the window ends the page first, then the browser
	page.OnClose(func(playwright.Page) { s.markDisconnected() })
	browser.OnDisconnected(func(playwright.Browser) { s.markDisconnected() })

	return s, nil
}

func (s *Session) markDisconnected() {
	s.disconnectOnce.Do(func() {
		close(s.disconnected)
	})
}

// Disconnected is closed once the page or the browser goes away for any
// reason other than the process exiting.
func (s *Session) Disconnected() <-chan struct{} {
	return s.disconnected
}

// Navigate opens url and waits for the load event.
func (s *Session) Navigate(url string) error {
	_, err := s.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateLoad,
	})
	if err != nil {
		return fmt.Errorf("navigation failed: %w", err)
	}
	return nil
}

// WaitFor waits until the first element matching selector is visible.
func (s *Session) WaitFor(selector string, timeout time.Duration) error {
	opts := playwright.LocatorWaitForOptions{}
	if timeout > 0 {
		opts.Timeout = playwright.Float(milliseconds(timeout))
	}

	err := s.page.Locator(selector).First().WaitFor(opts)
	return classify(err, selector)
}

// Click clicks the first element matching selector.
func (s *Session) Click(selector string) error {
	err := s.page.Locator(selector).First().Click()
	return classify(err, selector)
}

// Fill replaces the value of the first input matching selector.
func (s *Session) Fill(selector, value string) error {
	err := s.page.Locator(selector).First().Fill(value)
	return classify(err, selector)
}

// Sleep pauses the page for d, giving client side scripts time to attach.
func (s *Session) Sleep(d time.Duration) {
	s.page.WaitForTimeout(milliseconds(d))
}

func (s *Session) URL() string {
	return s.page.URL()
}

// WaitForURLChange waits until the page leaves url and reaches the load
// event. A timeout is reported as ErrNotFound.
func (s *Session) WaitForURLChange(url string, timeout time.Duration) error {
	opts := playwright.PageWaitForURLOptions{
		WaitUntil: playwright.WaitUntilStateLoad,
	}
	if timeout > 0 {
		opts.Timeout = playwright.Float(milliseconds(timeout))
	}

	err := s.page.WaitForURL(func(current string) bool {
		return current != url
	}, opts)
	return classify(err, url)
}

func (s *Session) Content() (string, error) {
	content, err := s.page.Content()
	if err != nil {
		return "", fmt.Errorf("failed to read page content: %w", err)
	}
	return content, nil
}

// Close closes the browser and stops the playwright driver. Subsequent calls
// return the result of the first one.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		browserErr := s.browser.Close()
		stopErr := s.pw.Stop()
		s.closeErr = errors.Join(browserErr, stopErr)
	})
	return s.closeErr
}

// classify turns playwright timeouts into ErrNotFound so callers do not
// depend on playwright's error values.
func classify(err error, selector string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, playwright.ErrTimeout) {
		return fmt.Errorf("%w: %q: %w", ErrNotFound, selector, err)
	}
	return fmt.Errorf("%q: %w", selector, err)
}

func milliseconds(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
