package pagi

import (
	"fmt"
	"io"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v2"
)

// Selectors are the playwright selectors used to find each control on the
// portal. The site has changed its markup several times, so the login
// trigger and the login form are located through ordered fallbacks.
type Selectors struct {
	LoginTriggers []string `yaml:"login_triggers"`
	LoginForm     []string `yaml:"login_form"`
	Username      string   `yaml:"username"`
	Password      string   `yaml:"password"`
	Submit        string   `yaml:"submit"`

	// Errors match the banner the portal shows after a rejected login.
	Errors []string `yaml:"errors"`
}

func DefaultSelectors() Selectors {
	return Selectors{
		LoginTriggers: []string{
			"a.login-trigger",
			"button.login-trigger",
			"a[href*='login']",
			"button:has-text('כניסה לחשבונך')",
			"text=כניסה לחשבונך",
		},
		LoginForm: []string{
			"#loginForm",
			"form#loginForm",
			"form[action*='login']",
			"input#username",
			"input[name='username']",
		},
		Username: "#username",
		Password: "#password",
		Submit:   "#continueBtn",
		Errors: []string{
			"[role='alert']",
			".error-message",
			".errorMessage",
			".alert-danger",
		},
	}
}

// LoadSelectors reads a yaml override from path. Keys missing from the file
// keep their default value.
func LoadSelectors(fs afero.Fs, path string) (Selectors, error) {
	selectors := DefaultSelectors()

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return Selectors{}, err
	}

	if err := yaml.UnmarshalStrict(data, &selectors); err != nil {
		return Selectors{}, fmt.Errorf("invalid selectors file %q: %w", path, err)
	}

	if err := selectors.validate(); err != nil {
		return Selectors{}, fmt.Errorf("invalid selectors file %q: %w", path, err)
	}

	return selectors, nil
}

func WriteSelectors(w io.Writer, selectors Selectors) error {
	data, err := yaml.Marshal(selectors)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

func (s Selectors) validate() error {
	switch {
	case len(s.LoginTriggers) == 0:
		return fmt.Errorf("login_triggers is empty")
	case len(s.LoginForm) == 0:
		return fmt.Errorf("login_form is empty")
	case s.Username == "" || s.Password == "" || s.Submit == "":
		return fmt.Errorf("username, password and submit are required")
	case s.Username == s.Password:
		return fmt.Errorf("username and password must use different selectors")
	}
	return nil
}
