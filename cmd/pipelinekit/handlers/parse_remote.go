package handlers

import (
	"fmt"

	"github.com/imamik/pipelinekit/internal/gitremote"
)

// ParseRemote prints the repository identity extracted from a remote URL.
func ParseRemote(remoteURL string) error {
	remote, err := gitremote.Parse(remoteURL)
	if err != nil {
		return err
	}

	row := func(label, value string) {
		if value == "" {
			value = "-"
		}
		fmt.Fprintf(stdout, "%-14s %s\n", label+":", value)
	}
	row("Provider", remote.Provider.String())
	row("Organization", remote.OrganizationName)
	row("Project", remote.ProjectName)
	row("Repository", remote.RepositoryName)
	row("Repository ID", remote.RepositoryID)
	return nil
}
