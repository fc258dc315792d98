package pagi

import (
	"context"
	"log/slog"
	"strings"
	"time"
)

const (
	DefaultSettleDelay   = 1500 * time.Millisecond
	DefaultProbeTimeout  = 3 * time.Second
	DefaultFormTimeout   = 5 * time.Second
	DefaultResultTimeout = 10 * time.Second
)

type Options struct {
	// StayOpen leaves the browser running after submit until the operator
	// closes it or interrupts the process.
	StayOpen bool

	SettleDelay  time.Duration // pause after the page load event
	ProbeTimeout time.Duration // wait per login trigger candidate
	FormTimeout  time.Duration // wait per login form candidate

	// ResultTimeout bounds the wait for the page reached after submit.
	ResultTimeout time.Duration
}

func DefaultOptions() Options {
	return Options{
		SettleDelay:   DefaultSettleDelay,
		ProbeTimeout:  DefaultProbeTimeout,
		FormTimeout:   DefaultFormTimeout,
		ResultTimeout: DefaultResultTimeout,
	}
}

type Launcher interface {
	Launch(ctx context.Context) (Session, error)
}

type LauncherFunc func(ctx context.Context) (Session, error)

func (f LauncherFunc) Launch(ctx context.Context) (Session, error) {
	return f(ctx)
}

// Driver performs a single login against the portal.
type Driver struct {
	Launcher  Launcher
	Selectors Selectors
	Options   Options
	Logger    *slog.Logger
}

// Login validates the credentials, launches a browser and submits the login
// form. The browser is closed on every return path except a successful
// stay-open run, where it is left to the operator.
func (d *Driver) Login(ctx context.Context, creds Credentials, url string) error {
	err := ValidateCredentials(creds)
	if err != nil {
		return err
	}

	if url == "" {
		url = DefaultURL
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	startup := time.Now()
	session, err := d.Launcher.Launch(ctx)
	if err != nil {
		return &LaunchError{Err: err}
	}
	d.Logger.Info("launched browser", "dur", time.Since(startup).String())

	err = d.submit(ctx, session, creds, url)
	if err != nil {
		if closeErr := session.Close(); closeErr != nil {
			d.Logger.Warn("failed to close browser", "err", closeErr)
		}
		return err
	}

	if d.Options.StayOpen {
		d.holdOpen(ctx, session)
		return nil
	}

	err = session.Close()
	if err != nil {
		return err
	}

	d.Logger.Info("browser closed")
	return nil
}

func (d *Driver) submit(ctx context.Context, session Session, creds Credentials, url string) error {
	d.Logger.Info("opening login form", "url", url)
	err := OpenLoginModal(ctx, session, url, d.Selectors, d.Options)
	if err != nil {
		return err
	}

	err = FillCredentials(ctx, session, creds, d.Selectors)
	if err != nil {
		return err
	}

	loginURL := session.URL()
	err = SubmitLogin(ctx, session, d.Selectors)
	if err != nil {
		return err
	}

	d.Logger.Info("submitted login form")
	d.inspect(ctx, session, loginURL)
	return nil
}

// inspect logs what the page looks like once it has navigated away from
// loginURL. It never fails the run.
func (d *Driver) inspect(ctx context.Context, session Session, loginURL string) {
	if ctx.Err() != nil {
		return
	}

	err := session.WaitForURLChange(loginURL, d.Options.ResultTimeout)
	if err != nil {
		d.Logger.Debug("still on the login page after submit", "err", err)
	}

	content, err := session.Content()
	if err != nil {
		d.Logger.Debug("could not read page after submit", "err", err)
		return
	}

	result, err := ParseLoginResult(strings.NewReader(content), d.Selectors)
	if err != nil {
		d.Logger.Debug("could not parse page after submit", "err", err)
		return
	}

	if result.ErrorMessage != "" {
		d.Logger.Warn("portal reported an error", "message", result.ErrorMessage)
	}
	d.Logger.Debug("page after submit", "title", result.Title, "form_present", result.FormPresent)
}

func (d *Driver) holdOpen(ctx context.Context, session Session) {
	d.Logger.Info("the browser will remain open, press CTRL+C to exit")

	select {
	case <-ctx.Done():
		d.Logger.Info("interrupted, leaving browser to exit with the process")
	case <-session.Disconnected():
		d.Logger.Info("browser closed by operator")
	}
}
