package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
	"golang.org/x/term"

	"github.com/goliatone/go-addressfields/pkg/catalog"
)

var errAborted = errors.New("addressfields: prompt aborted")

// countryPrompter asks the user to pick a country. It is an interface so the
// resolve command can be tested without a terminal.
type countryPrompter interface {
	Interactive() bool
	SelectCountry(ctx context.Context, countries []catalog.CountryInfo) (string, error)
}

type surveyPrompter struct{}

func (surveyPrompter) Interactive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

func (surveyPrompter) SelectCountry(ctx context.Context, countries []catalog.CountryInfo) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	options := make([]string, 0, len(countries))
	for _, c := range countries {
		options = append(options, countryOption(c))
	}

	var out string
	prompt := &survey.Select{
		Message:  "Country:",
		Options:  options,
		PageSize: 12,
	}
	if len(options) > 0 {
		prompt.Default = options[0]
	}
	if err := survey.AskOne(prompt, &out); err != nil {
		if errors.Is(err, terminal.InterruptErr) {
			return "", errAborted
		}
		return "", err
	}
	for i, option := range options {
		if option == out {
			return countries[i].Code, nil
		}
	}
	return "", fmt.Errorf("addressfields: unknown selection %q", out)
}

func countryOption(c catalog.CountryInfo) string {
	if c.Name == "" {
		return c.Code
	}
	return c.Code + " - " + c.Name
}
