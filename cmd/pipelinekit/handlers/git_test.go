package handlers

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeGit(answers map[string]string, failOn string) gitRunner {
	return func(_ context.Context, _ string, args ...string) (string, error) {
		key := strings.Join(args, " ")
		if key == failOn {
			return "", errors.New("git " + key + ": fatal: not a git repository")
		}
		return answers[key], nil
	}
}

func TestLocalGit_GitDetails(t *testing.T) {
	answers := map[string]string{
		"remote get-url origin":       "https://github.com/acme/widget.git",
		"rev-parse --abbrev-ref HEAD": "main",
		"rev-parse HEAD":              "0f1e2d3c",
	}

	t.Run("reads remote branch and commit", func(t *testing.T) {
		g := &localGit{dir: ".", run: fakeGit(answers, "")}

		details, err := g.GitDetails(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "https://github.com/acme/widget.git", details.RemoteURL)
		assert.Equal(t, "main", details.Branch)
		assert.Equal(t, "0f1e2d3c", details.CommitID)
	})

	t.Run("detached head has no branch", func(t *testing.T) {
		detached := map[string]string{}
		for k, v := range answers {
			detached[k] = v
		}
		detached["rev-parse --abbrev-ref HEAD"] = "HEAD"
		g := &localGit{dir: ".", run: fakeGit(detached, "")}

		details, err := g.GitDetails(context.Background())
		require.NoError(t, err)
		assert.Empty(t, details.Branch)
		assert.Equal(t, "0f1e2d3c", details.CommitID)
	})

	t.Run("missing origin fails", func(t *testing.T) {
		g := &localGit{dir: ".", run: fakeGit(answers, "remote get-url origin")}

		_, err := g.GitDetails(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not a git repository")
	})
}
