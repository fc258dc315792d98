package cli

import (
	"log/slog"
	"strings"
	"time"

	"github.com/danielholmes839/pagi-login/internal/browser"
	"github.com/danielholmes839/pagi-login/internal/pagi"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "PAGI"

// Config is the resolved run configuration. Flags take precedence over
// PAGI_* environment variables, which may come from a .env file.
type Config struct {
	Username string
	Password string
	URL      string
	StayOpen bool

	Headless      bool
	Timeout       time.Duration
	SelectorsFile string
	LogDir        string
	Verbose       bool
}

// LogValue masks the credentials when the configuration is logged.
func (c Config) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("url", c.URL),
		slog.Bool("stay_open", c.StayOpen),
		slog.Bool("headless", c.Headless),
		slog.String("timeout", c.Timeout.String()),
		slog.String("selectors", c.SelectorsFile),
		slog.String("log_dir", c.LogDir),
	)
}

func (c Config) Credentials() pagi.Credentials {
	return pagi.Credentials{
		Username: c.Username,
		Password: c.Password,
	}
}

func (c Config) LaunchOptions() browser.LaunchOptions {
	return browser.LaunchOptions{
		Headless: c.Headless,
		Timeout:  c.Timeout,
	}
}

func addFlags(flags *pflag.FlagSet) {
	flags.String("username", "", "user code for the Pagi login (required)")
	flags.String("password", "", "password for the Pagi login (required)")
	flags.String("url", pagi.DefaultURL, "URL to open")
	flags.Bool("stay-open", false, "keep the browser open after submitting the form")
	flags.Bool("headless", false, "run the browser without a visible window")
	flags.Duration("timeout", browser.DefaultTimeout, "how long to wait for each page control")
	flags.String("selectors", "", "yaml file overriding the page selectors")
	flags.String("log-dir", "", "also write logs to <dir>/run.log")
	flags.BoolP("verbose", "v", false, "verbose output")
}

func newViper(flags *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	err := v.BindPFlags(flags)
	if err != nil {
		return nil, err
	}
	return v, nil
}

func loadConfig(v *viper.Viper) Config {
	return Config{
		Username:      v.GetString("username"),
		Password:      v.GetString("password"),
		URL:           v.GetString("url"),
		StayOpen:      v.GetBool("stay-open"),
		Headless:      v.GetBool("headless"),
		Timeout:       v.GetDuration("timeout"),
		SelectorsFile: v.GetString("selectors"),
		LogDir:        v.GetString("log-dir"),
		Verbose:       v.GetBool("verbose"),
	}
}
