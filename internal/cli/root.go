package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/danielholmes839/pagi-login/internal/browser"
	"github.com/danielholmes839/pagi-login/internal/pagi"
	"github.com/joho/godotenv"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// App holds what the commands need from the outside world so tests can swap
// the browser and the filesystem.
type App struct {
	Fs     afero.Fs
	Stdout io.Writer
	Stderr io.Writer

	Launch func(ctx context.Context, opts browser.LaunchOptions) (pagi.Session, error)
}

func DefaultApp() *App {
	return &App{
		Fs:     afero.NewOsFs(),
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Launch: launchPlaywright,
	}
}

func launchPlaywright(ctx context.Context, opts browser.LaunchOptions) (pagi.Session, error) {
	session, err := browser.Launch(opts)
	if err != nil {
		return nil, err
	}
	return session, nil
}

func NewRootCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "pagi",
		Short:         "Log into the Pagi banking portal in a real browser",
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			godotenv.Load()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := newViper(cmd.Flags())
			if err != nil {
				return err
			}
			return app.login(cmd.Context(), loadConfig(v))
		},
	}
	cmd.SetOut(app.Stdout)
	cmd.SetErr(app.Stderr)

	addFlags(cmd.Flags())
	cmd.AddCommand(newSelectorsCommand(app))

	return cmd
}

func (app *App) login(ctx context.Context, cfg Config) error {
	// credentials are checked before anything else touches the system
	err := pagi.ValidateCredentials(cfg.Credentials())
	if err != nil {
		return err
	}

	logger, logFile, err := newLogger(app.Fs, app.Stderr, cfg)
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	defer logFile.Close()

	selectors, err := app.selectors(cfg.SelectorsFile)
	if err != nil {
		return err
	}

	logger.Info("starting pagi login", "config", cfg)

	opts := pagi.DefaultOptions()
	opts.StayOpen = cfg.StayOpen

	driver := &pagi.Driver{
		Launcher: pagi.LauncherFunc(func(ctx context.Context) (pagi.Session, error) {
			return app.Launch(ctx, cfg.LaunchOptions())
		}),
		Selectors: selectors,
		Options:   opts,
		Logger:    logger,
	}

	err = driver.Login(ctx, cfg.Credentials(), cfg.URL)
	if err != nil {
		return err
	}

	logger.Info("finished")
	return nil
}

func (app *App) selectors(path string) (pagi.Selectors, error) {
	if path == "" {
		return pagi.DefaultSelectors(), nil
	}
	return pagi.LoadSelectors(app.Fs, path)
}

// Execute runs the root command until it finishes or the process receives an
// interrupt.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return DefaultApp().Run(ctx, os.Args[1:])
}

// Run executes the command line args. A failure is reported once on stderr
// and returned.
func (app *App) Run(ctx context.Context, args []string) error {
	cmd := NewRootCommand(app)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintln(app.Stderr, "Error:", err)

		var inputErr *pagi.InputError
		if errors.As(err, &inputErr) {
			fmt.Fprintln(app.Stderr, "Run 'pagi --help' for usage.")
		}
	}
	return err
}
