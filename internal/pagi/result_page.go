package pagi

import (
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// LoginResult describes the page reached after submitting the login form.
type LoginResult struct {
	Title        string
	FormPresent  bool
	ErrorMessage string
}

// ParseLoginResult inspects the html of the page shown after submit. Only
// css selectors are understood here, playwright pseudo selectors such as
// "text=" are skipped.
func ParseLoginResult(page io.Reader, selectors Selectors) (LoginResult, error) {
	doc, err := goquery.NewDocumentFromReader(page)
	if err != nil {
		return LoginResult{}, err
	}

	result := LoginResult{
		Title: strings.TrimSpace(doc.Find("title").First().Text()),
	}

	for _, selector := range cssOnly(selectors.LoginForm) {
		if doc.Find(selector).Length() > 0 {
			result.FormPresent = true
			break
		}
	}

	for _, selector := range cssOnly(selectors.Errors) {
		doc.Find(selector).EachWithBreak(func(i int, s *goquery.Selection) bool {
			text := strings.Join(strings.Fields(s.Text()), " ")
			if text == "" {
				return true
			}
			result.ErrorMessage = text
			return false
		})
		if result.ErrorMessage != "" {
			break
		}
	}

	return result, nil
}

func cssOnly(selectors []string) []string {
	css := []string{}
	for _, selector := range selectors {
		if strings.HasPrefix(selector, "text=") || strings.Contains(selector, ":has-text(") {
			continue
		}
		css = append(css, selector)
	}
	return css
}
