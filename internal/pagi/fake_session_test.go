package pagi

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/danielholmes839/pagi-login/internal/browser"
)

type call struct {
	Op       string
	Selector string
	Value    string
}

// fakeSession records every browser operation. Selectors listed in missing
// never become visible, selectors in unclickable are visible but time out on
// click. Clicking the submit selector moves the page to next, when set.
type fakeSession struct {
	calls        []call
	missing      map[string]bool
	unclickable  map[string]bool
	url          string
	content      string
	closes       int
	disconnected chan struct{}

	submit string
	next   *fakePage

	// onWait runs before every WaitFor, used to interrupt mid-run.
	onWait func()
}

type fakePage struct {
	url     string
	content string
}

func newFakeSession(missing ...string) *fakeSession {
	m := map[string]bool{}
	for _, selector := range missing {
		m[selector] = true
	}
	return &fakeSession{
		missing:      m,
		unclickable:  map[string]bool{},
		content:      "<html><head><title>Pagi</title></head><body></body></html>",
		disconnected: make(chan struct{}),
	}
}

func (f *fakeSession) lookup(selector string) error {
	if f.missing[selector] {
		return fmt.Errorf("%w: %q", browser.ErrNotFound, selector)
	}
	return nil
}

func (f *fakeSession) Navigate(url string) error {
	f.calls = append(f.calls, call{Op: "navigate", Value: url})
	f.url = url
	return nil
}

func (f *fakeSession) WaitFor(selector string, timeout time.Duration) error {
	if f.onWait != nil {
		f.onWait()
	}
	f.calls = append(f.calls, call{Op: "wait", Selector: selector})
	return f.lookup(selector)
}

func (f *fakeSession) Click(selector string) error {
	f.calls = append(f.calls, call{Op: "click", Selector: selector})
	if f.unclickable[selector] {
		return fmt.Errorf("%w: %q: element intercepts pointer events", browser.ErrNotFound, selector)
	}
	err := f.lookup(selector)
	if err == nil && selector == f.submit && f.next != nil {
		f.url = f.next.url
		f.content = f.next.content
	}
	return err
}

func (f *fakeSession) Fill(selector, value string) error {
	f.calls = append(f.calls, call{Op: "fill", Selector: selector, Value: value})
	return f.lookup(selector)
}

func (f *fakeSession) Sleep(d time.Duration) {
	f.calls = append(f.calls, call{Op: "sleep"})
}

func (f *fakeSession) URL() string {
	return f.url
}

func (f *fakeSession) WaitForURLChange(url string, timeout time.Duration) error {
	f.calls = append(f.calls, call{Op: "wait-url", Value: url})
	if f.url == url {
		return fmt.Errorf("%w: %q", browser.ErrNotFound, url)
	}
	return nil
}

func (f *fakeSession) Content() (string, error) {
	return f.content, nil
}

func (f *fakeSession) Close() error {
	f.closes++
	f.calls = append(f.calls, call{Op: "close"})
	return nil
}

func (f *fakeSession) Disconnected() <-chan struct{} {
	return f.disconnected
}

func (f *fakeSession) ops(op string) []call {
	matched := []call{}
	for _, c := range f.calls {
		if c.Op == op {
			matched = append(matched, c)
		}
	}
	return matched
}

func (f *fakeSession) index(op, selector string) int {
	for i, c := range f.calls {
		if c.Op == op && c.Selector == selector {
			return i
		}
	}
	return -1
}

type fakeLauncher struct {
	session  *fakeSession
	err      error
	launches int
}

func (l *fakeLauncher) Launch(ctx context.Context) (Session, error) {
	l.launches++
	if l.err != nil {
		return nil, l.err
	}
	return l.session, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestDriver(launcher Launcher, stayOpen bool) *Driver {
	opts := DefaultOptions()
	opts.StayOpen = stayOpen
	return &Driver{
		Launcher:  launcher,
		Selectors: DefaultSelectors(),
		Options:   opts,
		Logger:    discardLogger(),
	}
}

func debugLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}
