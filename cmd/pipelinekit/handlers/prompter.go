package handlers

import (
	"context"
	"errors"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/imamik/pipelinekit/internal/config/wizard"
	"github.com/imamik/pipelinekit/internal/provisioning"
)

// isTerminal reports whether stdin can answer prompts. Replaced in tests.
var isTerminal = func() bool {
	fd := os.Stdin.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func newPrompter() provisioning.Prompter {
	if isTerminal() {
		return wizard.NewPrompter()
	}
	return nonInteractivePrompter{}
}

// nonInteractivePrompter fails every question with a hint at the flag or
// variable that answers it.
type nonInteractivePrompter struct{}

func (nonInteractivePrompter) OrganizationName(context.Context, func(string) error) (string, error) {
	return "", errors.New("no organization name given: set organization.name, --organization or organization.user")
}

func (nonInteractivePrompter) PersonalAccessToken(context.Context) (string, error) {
	return "", errors.New("no GitHub token given: set " + envGitHubPAT)
}
