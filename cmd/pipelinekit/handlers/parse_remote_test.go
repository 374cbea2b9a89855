package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRemote(t *testing.T) {
	t.Run("github", func(t *testing.T) {
		out := captureStdout(t)

		require.NoError(t, ParseRemote("https://github.com/acme/widget.git"))
		assert.Contains(t, out.String(), "github")
		assert.Contains(t, out.String(), "acme/widget")
	})

	t.Run("azure repos", func(t *testing.T) {
		out := captureStdout(t)

		require.NoError(t, ParseRemote("https://dev.azure.com/contoso/Fabrikam/_git/web"))
		assert.Contains(t, out.String(), "tfsgit")
		assert.Contains(t, out.String(), "Fabrikam")
		assert.Regexp(t, `Repository ID:\s+-`, out.String())
	})

	t.Run("unsupported host", func(t *testing.T) {
		captureStdout(t)
		require.Error(t, ParseRemote("https://gitlab.com/acme/widget.git"))
	})
}
