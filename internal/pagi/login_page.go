package pagi

import (
	"context"
	"errors"
	"time"

	"github.com/danielholmes839/pagi-login/internal/browser"
)

// Session is the subset of a browser page the login flow drives.
type Session interface {
	Navigate(url string) error
	WaitFor(selector string, timeout time.Duration) error
	Click(selector string) error
	Fill(selector, value string) error
	Sleep(d time.Duration)
	Content() (string, error)
	Close() error

	// URL is the address currently shown by the page.
	URL() string

	// WaitForURLChange waits until the page has navigated away from url and
	// finished loading.
	WaitForURLChange(url string, timeout time.Duration) error

	// Disconnected is closed when the operator closes the browser.
	Disconnected() <-chan struct{}
}

// OpenLoginModal navigates to url and clicks the first login trigger that
// shows up and accepts the click, then waits for the login form to appear.
func OpenLoginModal(ctx context.Context, session Session, url string, selectors Selectors, opts Options) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := session.Navigate(url)
	if err != nil {
		return err
	}

	session.Sleep(opts.SettleDelay)

	err = clickFirst(ctx, session, selectors.LoginTriggers, opts.ProbeTimeout)
	if err != nil {
		return notFound("sign-in entry", selectors.LoginTriggers, err)
	}

	_, err = firstVisible(ctx, session, selectors.LoginForm, opts.FormTimeout)
	if err != nil {
		return notFound("login form", selectors.LoginForm, err)
	}

	return nil
}

func FillCredentials(ctx context.Context, session Session, creds Credentials, selectors Selectors) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := session.Fill(selectors.Username, creds.Username)
	if err != nil {
		return notFound("username field", []string{selectors.Username}, err)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	err = session.Fill(selectors.Password, creds.Password)
	if err != nil {
		return notFound("password field", []string{selectors.Password}, err)
	}

	return nil
}

func SubmitLogin(ctx context.Context, session Session, selectors Selectors) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := session.Click(selectors.Submit)
	if err != nil {
		return notFound("submit button", []string{selectors.Submit}, err)
	}
	return nil
}

// clickFirst clicks the first candidate that becomes visible and accepts the
// click. A candidate that is visible but covered by another element times out
// on click and the next one is tried.
func clickFirst(ctx context.Context, session Session, candidates []string, timeout time.Duration) error {
	lastErr := browser.ErrNotFound
	for _, selector := range candidates {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := session.WaitFor(selector, timeout)
		if err == nil {
			err = session.Click(selector)
		}
		if err == nil {
			return nil
		}
		if !errors.Is(err, browser.ErrNotFound) {
			return err
		}
		lastErr = err
	}
	return lastErr
}

// firstVisible returns the first selector that matches a visible element.
// Only lookup timeouts move on to the next candidate.
func firstVisible(ctx context.Context, session Session, candidates []string, timeout time.Duration) (string, error) {
	lastErr := browser.ErrNotFound
	for _, selector := range candidates {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		err := session.WaitFor(selector, timeout)
		if err == nil {
			return selector, nil
		}
		if !errors.Is(err, browser.ErrNotFound) {
			return "", err
		}
		lastErr = err
	}
	return "", lastErr
}

// notFound wraps lookup failures; any other browser error, including an
// interrupt, passes through.
func notFound(control string, selectors []string, err error) error {
	if !errors.Is(err, browser.ErrNotFound) {
		return err
	}
	return &NotFoundError{
		Control:   control,
		Selectors: selectors,
		Err:       err,
	}
}
