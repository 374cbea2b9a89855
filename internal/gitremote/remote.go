// Package gitremote classifies Git remote URLs by hosting provider and
// extracts organization, project and repository identifiers from them.
//
// Parsing is pure string work: no network access and no Git invocation.
package gitremote

import (
	"net/url"
	"strings"

	"github.com/imamik/pipelinekit/internal/domain"
)

const (
	azureReposHost   = "dev.azure.com/"
	legacyHostSuffix = "visualstudio.com/"
	gitHubHTTPS      = "https://github.com/"
	gitHubSSH        = "git@github.com:"
	defaultColl      = "defaultcollection"
	gitSegment       = "_git"
)

// Remote is the provider-specific identity extracted from a remote URL.
type Remote struct {
	Provider         domain.ProviderKind
	OrganizationName string
	ProjectName      string
	RepositoryName   string
	// RepositoryID is provider-native for GitHub ("owner/name") and empty for
	// Azure Repos, where it takes a control-plane round trip to resolve.
	RepositoryID string
}

type parser struct {
	provider domain.ProviderKind
	matches  func(string) bool
	parse    func(string) (Remote, bool)
}

// parsers are tried in order. GitHub comes first: its prefix match is exact,
// while the Azure Repos hosts are found anywhere in the URL.
var parsers = []parser{
	{provider: domain.ProviderGitHub, matches: IsGitHubURL, parse: parseGitHub},
	{provider: domain.ProviderAzureRepos, matches: IsAzureReposURL, parse: parseAzureRepos},
}

// IsAzureReposURL reports whether the URL uses either the current or the
// legacy host form of the CI control plane's own Git hosting.
func IsAzureReposURL(remoteURL string) bool {
	return strings.Contains(remoteURL, azureReposHost) || strings.Contains(remoteURL, legacyHostSuffix)
}

// IsGitHubURL reports whether the URL is a GitHub HTTPS or SSH remote.
func IsGitHubURL(remoteURL string) bool {
	return strings.HasPrefix(remoteURL, gitHubHTTPS) || strings.HasPrefix(remoteURL, gitHubSSH)
}

// Parse classifies remoteURL as exactly one supported provider. Anything else
// fails with *domain.UnrecognizedRepositoryURLError.
func Parse(remoteURL string) (Remote, error) {
	trimmed := strings.TrimSpace(remoteURL)
	for _, p := range parsers {
		if !p.matches(trimmed) {
			continue
		}
		remote, ok := p.parse(trimmed)
		if !ok {
			continue
		}
		remote.Provider = p.provider
		return remote, nil
	}
	return Remote{}, &domain.UnrecognizedRepositoryURLError{URL: remoteURL}
}

// Describe builds the repository descriptor for the given local Git details.
func Describe(details domain.GitDetails) (domain.RepositoryDescriptor, error) {
	remote, err := Parse(details.RemoteURL)
	if err != nil {
		return domain.RepositoryDescriptor{}, err
	}
	return domain.RepositoryDescriptor{
		Provider:         remote.Provider,
		RemoteURL:        strings.TrimSpace(details.RemoteURL),
		OrganizationName: remote.OrganizationName,
		ProjectName:      remote.ProjectName,
		RepositoryID:     remote.RepositoryID,
		RepositoryName:   remote.RepositoryName,
		Branch:           details.Branch,
		CommitID:         details.CommitID,
	}, nil
}

// parseAzureRepos handles
//
//	https://dev.azure.com/{org}/{project}/_git/{repo}
//	https://{org}.visualstudio.com/{project}/_git/{repo}
func parseAzureRepos(remoteURL string) (Remote, bool) {
	if idx := strings.Index(remoteURL, azureReposHost); idx >= 0 {
		parts := splitPath(remoteURL[idx+len(azureReposHost):])
		if len(parts) < 4 || parts[2] != gitSegment {
			return Remote{}, false
		}
		return newAzureRemote(parts[0], parts[1], parts[3])
	}

	idx := strings.Index(remoteURL, legacyHostSuffix)
	hostStart := strings.Index(remoteURL, "://")
	if hostStart < 0 || hostStart+3 > idx {
		return Remote{}, false
	}
	host := remoteURL[hostStart+3 : idx]
	if at := strings.LastIndex(host, "@"); at >= 0 {
		host = host[at+1:]
	}
	org := strings.TrimSuffix(host, ".")

	parts := splitPath(remoteURL[idx+len(legacyHostSuffix):])
	if len(parts) > 0 && strings.EqualFold(parts[0], defaultColl) {
		parts = parts[1:]
	}
	if len(parts) < 3 || parts[1] != gitSegment {
		return Remote{}, false
	}
	return newAzureRemote(org, parts[0], parts[2])
}

func newAzureRemote(org, project, repo string) (Remote, bool) {
	org, project, repo = unescape(org), unescape(project), unescape(repo)
	if org == "" || project == "" || repo == "" {
		return Remote{}, false
	}
	return Remote{OrganizationName: org, ProjectName: project, RepositoryName: repo}, true
}

func parseGitHub(remoteURL string) (Remote, bool) {
	var id string
	if strings.HasPrefix(remoteURL, gitHubSSH) {
		id = remoteURL[len(gitHubSSH):]
	} else {
		id = remoteURL[len(gitHubHTTPS):]
	}
	id = strings.TrimSuffix(id, "/")
	id = strings.TrimSuffix(id, ".git")
	id = strings.TrimSuffix(id, "/")

	owner, name, ok := strings.Cut(id, "/")
	if !ok || owner == "" || name == "" {
		return Remote{}, false
	}
	return Remote{RepositoryID: id, RepositoryName: id}, true
}

// unescape decodes a percent-encoded path segment, e.g. a project name with
// spaces. Malformed escapes are kept verbatim.
func unescape(segment string) string {
	if decoded, err := url.PathUnescape(segment); err == nil {
		segment = decoded
	}
	return strings.TrimSpace(segment)
}

func splitPath(path string) []string {
	if end := strings.IndexAny(path, "?#"); end >= 0 {
		path = path[:end]
	}
	return strings.Split(path, "/")
}
