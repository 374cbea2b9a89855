// Package prerequisites checks for the client tools a run shells out to.
package prerequisites

import (
	"fmt"
	"os/exec"
	"strings"
)

// Tool is a binary looked up on PATH.
type Tool struct {
	Name       string
	Purpose    string
	InstallURL string
	// Optional tools are reported but never fail a check.
	Optional bool
}

// Git reads the remote, branch and commit of the working tree.
var Git = Tool{
	Name:       "git",
	Purpose:    "reads the origin remote, branch and commit of the working tree",
	InstallURL: "https://git-scm.com/downloads",
}

// Status is a tool found on PATH.
type Status struct {
	Tool
	Path    string
	Version string
}

// Report lists which tools were found.
type Report struct {
	Available []Status
	Missing   []Tool
}

// Err describes every missing tool that is not optional, or returns nil.
func (r Report) Err() error {
	var missing []string
	for _, t := range r.Missing {
		if t.Optional {
			continue
		}
		missing = append(missing, fmt.Sprintf("%s %s (install: %s)", t.Name, t.Purpose, t.InstallURL))
	}
	if len(missing) == 0 {
		return nil
	}
	return fmt.Errorf("required tools not found on PATH: %s", strings.Join(missing, "; "))
}

// Check looks up every tool on PATH and records its version.
func Check(tools ...Tool) Report {
	var r Report
	for _, t := range tools {
		path, err := exec.LookPath(t.Name)
		if err != nil {
			r.Missing = append(r.Missing, t)
			continue
		}
		r.Available = append(r.Available, Status{Tool: t, Path: path, Version: version(path)})
	}
	return r
}

// CheckGit fails when git is not installed.
func CheckGit() error {
	return Check(Git).Err()
}

// version is the first line of "<path> --version", or "".
func version(path string) string {
	// #nosec G204 - path was resolved by LookPath from a fixed tool name
	out, err := exec.Command(path, "--version").Output()
	if err != nil {
		return ""
	}
	line, _, _ := strings.Cut(string(out), "\n")
	return strings.TrimSpace(line)
}
