package handlers

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/imamik/pipelinekit/internal/domain"
	"github.com/imamik/pipelinekit/internal/provisioning"
)

var (
	colorGreen = lipgloss.Color("#22c55e")
	colorRed   = lipgloss.Color("#ef4444")
	colorBlue  = lipgloss.Color("#3b82f6")
	colorDim   = lipgloss.Color("#6b7280")
	colorWhite = lipgloss.Color("#f9fafb")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorWhite)

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorBlue)

	dimStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	successStyle = lipgloss.NewStyle().
			Foreground(colorGreen)

	failureStyle = lipgloss.NewStyle().
			Foreground(colorRed)
)

// renderSuccess summarizes a finished run.
func renderSuccess(state *provisioning.State, runURL string) string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(successStyle.Render("  Pipeline created and queued"))
	b.WriteString("\n")
	renderResources(&b, state)

	b.WriteString("\n")
	b.WriteString(sectionStyle.Render("  Follow the run"))
	b.WriteString("\n")
	b.WriteString("  " + titleStyle.Render(runURL))
	b.WriteString("\n")
	return b.String()
}

// renderFailure lists what a failed run left behind. The error itself is
// printed by main.
func renderFailure(state *provisioning.State) string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(failureStyle.Render("  Provisioning failed"))
	b.WriteString("\n")
	if state != nil && state.Organization != nil {
		renderResources(&b, state)
		b.WriteString(dimStyle.Render("  Resources above were kept; re-running reuses the organization and project."))
		b.WriteString("\n")
	}
	return b.String()
}

func renderResources(b *strings.Builder, state *provisioning.State) {
	if state == nil {
		return
	}
	b.WriteString("\n")
	b.WriteString(sectionStyle.Render("  Resources"))
	b.WriteString("\n")

	repo := state.Repository
	if repo.RepositoryName != "" {
		row(b, "Repository", fmt.Sprintf("%s (%s, %s)", repo.RepositoryName, repo.Provider, repo.Branch))
	}
	if state.Organization != nil {
		row(b, "Organization", state.Organization.Name)
	}
	if state.Project != nil {
		row(b, "Project", state.Project.Name)
	}
	if c := state.SourceConnection; c != nil {
		row(b, "GitHub connection", connectionLabel(c))
	}
	if c := state.CloudConnection; c != nil {
		row(b, "Cloud connection", connectionLabel(c))
	}
	if d := state.Definition; d != nil && d.Name != "" {
		row(b, "Pipeline", d.Name)
	}
}

func connectionLabel(c *domain.ServiceConnection) string {
	return fmt.Sprintf("%s (%s)", c.Name, c.State)
}

func row(b *strings.Builder, label, value string) {
	b.WriteString(dimStyle.Render(fmt.Sprintf("  %-18s", label+":")))
	b.WriteString(value)
	b.WriteString("\n")
}
