package wizard

import (
	"context"
	"strings"

	"github.com/charmbracelet/huh"
)

// Prompter asks the freeform questions of a provisioning run with huh inputs.
type Prompter struct{}

// NewPrompter creates an interactive prompter.
func NewPrompter() *Prompter {
	return &Prompter{}
}

// OrganizationName asks for an organization name; validate runs on every
// submission so invalid names never leave the form.
func (p *Prompter) OrganizationName(ctx context.Context, validate func(string) error) (string, error) {
	var name string
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Organization Name").
				Description("Name of the new organization").
				Value(&name).
				Validate(required(validate)),
		),
	).RunWithContext(ctx)
	if err != nil {
		return "", err
	}
	return name, nil
}

// PersonalAccessToken asks for a GitHub token without echoing it.
func (p *Prompter) PersonalAccessToken(ctx context.Context) (string, error) {
	var token string
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("GitHub Personal Access Token").
				Description("Needs repo and admin:repo_hook scopes").
				EchoMode(huh.EchoModePassword).
				Value(&token).
				Validate(validateRequired(errTokenRequired)),
		),
	).RunWithContext(ctx)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(token), nil
}
