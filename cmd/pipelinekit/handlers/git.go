package handlers

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/imamik/pipelinekit/internal/domain"
)

// gitRunner runs one git command in dir and returns its trimmed stdout.
type gitRunner func(ctx context.Context, dir string, args ...string) (string, error)

// localGit reads the origin remote, branch and commit of a working tree.
type localGit struct {
	dir string
	run gitRunner
}

func newLocalGit(dir string) *localGit {
	return &localGit{dir: dir, run: runGit}
}

// GitDetails implements provisioning.GitDetailsProvider.
func (g *localGit) GitDetails(ctx context.Context) (domain.GitDetails, error) {
	var details domain.GitDetails

	remote, err := g.run(ctx, g.dir, "remote", "get-url", "origin")
	if err != nil {
		return details, err
	}
	branch, err := g.run(ctx, g.dir, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return details, err
	}
	commit, err := g.run(ctx, g.dir, "rev-parse", "HEAD")
	if err != nil {
		return details, err
	}

	details.RemoteURL = remote
	details.CommitID = commit
	// A detached HEAD has no branch to build.
	if branch != "HEAD" {
		details.Branch = branch
	}
	return details, nil
}

func runGit(ctx context.Context, dir string, args ...string) (string, error) {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("git %s: %s", strings.Join(args, " "), msg)
		}
		return "", fmt.Errorf("git %s: %w", strings.Join(args, " "), err)
	}
	return strings.TrimSpace(string(out)), nil
}
