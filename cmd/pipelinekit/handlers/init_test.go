package handlers

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/pipelinekit/internal/config"
	"github.com/imamik/pipelinekit/internal/config/wizard"
)

// saveAndRestoreInitFactories saves and restores init factory functions.
func saveAndRestoreInitFactories(t *testing.T) {
	origFileExists := fileExists
	origConfirmOverwrite := confirmOverwrite
	origRunWizard := runWizard
	origWriteConfig := writeConfig

	t.Cleanup(func() {
		fileExists = origFileExists
		confirmOverwrite = origConfirmOverwrite
		runWizard = origRunWizard
		writeConfig = origWriteConfig
	})
}

func wizardAnswers() *wizard.WizardResult {
	return &wizard.WizardResult{
		OrganizationName:   "contoso",
		CreateOrganization: true,
		Region:             "WEU",
		ProjectName:        "widget",
		TargetResourceName: "webapp",
		TargetResourceID:   "/subscriptions/sub-1/resourceGroups/rg-web/providers/Microsoft.Web/sites/webapp",
		TenantID:           "tenant-1",
		Strategy:           config.StrategyDefinition,
	}
}

func TestInit(t *testing.T) {
	t.Run("writes the wizard result", func(t *testing.T) {
		saveAndRestoreInitFactories(t)
		out := captureStdout(t)

		var validator func(string) error
		var written *config.Config
		var writtenPath string
		fileExists = func(string) bool { return false }
		runWizard = func(_ context.Context, validate func(string) error) (*wizard.WizardResult, error) {
			validator = validate
			return wizardAnswers(), nil
		}
		writeConfig = func(cfg *config.Config, path string) error {
			written, writtenPath = cfg, path
			return nil
		}

		require.NoError(t, Init(context.Background(), "out.yaml"))

		require.NotNil(t, written)
		assert.Equal(t, "out.yaml", writtenPath)
		assert.Equal(t, "contoso", written.Organization.Name)
		assert.True(t, written.Organization.Create)
		require.NotNil(t, validator)
		assert.Error(t, validator("-bad"))
		assert.Contains(t, out.String(), "Configuration saved!")
		assert.Contains(t, out.String(), "pipelinekit configure --config out.yaml")
	})

	t.Run("declined overwrite keeps the file", func(t *testing.T) {
		saveAndRestoreInitFactories(t)
		out := captureStdout(t)

		fileExists = func(string) bool { return true }
		confirmOverwrite = func(string) (bool, error) { return false, nil }
		runWizard = func(context.Context, func(string) error) (*wizard.WizardResult, error) {
			t.Fatal("wizard must not run")
			return nil, nil
		}

		require.NoError(t, Init(context.Background(), "out.yaml"))
		assert.Contains(t, out.String(), "Aborted")
	})

	t.Run("canceled wizard", func(t *testing.T) {
		saveAndRestoreInitFactories(t)
		captureStdout(t)

		fileExists = func(string) bool { return false }
		runWizard = func(context.Context, func(string) error) (*wizard.WizardResult, error) {
			return nil, errors.New("user aborted")
		}

		err := Init(context.Background(), "out.yaml")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "wizard canceled")
	})

	t.Run("write failure", func(t *testing.T) {
		saveAndRestoreInitFactories(t)
		captureStdout(t)

		fileExists = func(string) bool { return false }
		runWizard = func(context.Context, func(string) error) (*wizard.WizardResult, error) {
			return wizardAnswers(), nil
		}
		writeConfig = func(*config.Config, string) error { return errors.New("read-only file system") }

		err := Init(context.Background(), "out.yaml")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to write config")
	})
}
