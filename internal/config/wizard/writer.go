package wizard

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/huh"

	"github.com/imamik/pipelinekit/internal/config"
)

// confirmOverwrite is replaced in tests.
var confirmOverwrite = askOverwrite

// WriteConfig writes the config to a YAML file with a descriptive header.
// Secrets are never written.
func WriteConfig(cfg *config.Config, outputPath string) error {
	yamlBytes, err := cfg.Marshal()
	if err != nil {
		return err
	}

	content := generateHeader(outputPath, cfg) + "\n" + string(yamlBytes)
	if err := os.WriteFile(outputPath, []byte(content), 0o600); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

// generateHeader creates the YAML file header comment.
func generateHeader(outputPath string, cfg *config.Config) string {
	var env strings.Builder
	env.WriteString("#   PIPELINEKIT_TOKEN - control plane access token\n")
	env.WriteString("#   PIPELINEKIT_GITHUB_PAT - GitHub token (prompted when unset)\n")
	if cfg.ServicePrincipal.Create {
		env.WriteString("#   PIPELINEKIT_GRAPH_TOKEN, PIPELINEKIT_MANAGEMENT_TOKEN - to create the service principal\n")
	} else {
		env.WriteString("#   PIPELINEKIT_SP_CLIENT_SECRET - secret of the existing service principal\n")
	}

	return fmt.Sprintf(`# pipelinekit configuration
# Generated by: pipelinekit init
# Generated at: %s
#
# Environment variables:
%s#
# Usage:
#   pipelinekit configure -c %s
`, time.Now().Format(time.RFC3339), env.String(), outputPath)
}

// FileExists reports whether something is already at path.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// ConfirmOverwrite asks whether an existing file at path may be replaced.
func ConfirmOverwrite(path string) (bool, error) {
	return confirmOverwrite(path)
}

func askOverwrite(path string) (bool, error) {
	overwrite := false
	err := huh.NewConfirm().
		Title(fmt.Sprintf("%s already exists. Overwrite it?", path)).
		Affirmative("Overwrite").
		Negative("Keep").
		Value(&overwrite).
		Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return overwrite, nil
}
