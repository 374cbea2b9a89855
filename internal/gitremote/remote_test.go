package gitremote

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/pipelinekit/internal/domain"
)

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		url  string
		want Remote
	}{
		{
			name: "azure repos new host",
			url:  "https://dev.azure.com/contoso/Fabrikam/_git/web-app",
			want: Remote{Provider: domain.ProviderAzureRepos, OrganizationName: "contoso", ProjectName: "Fabrikam", RepositoryName: "web-app"},
		},
		{
			name: "azure repos new host with user info",
			url:  "https://contoso@dev.azure.com/contoso/Fabrikam/_git/web-app",
			want: Remote{Provider: domain.ProviderAzureRepos, OrganizationName: "contoso", ProjectName: "Fabrikam", RepositoryName: "web-app"},
		},
		{
			name: "azure repos legacy host",
			url:  "https://contoso.visualstudio.com/Fabrikam/_git/web-app",
			want: Remote{Provider: domain.ProviderAzureRepos, OrganizationName: "contoso", ProjectName: "Fabrikam", RepositoryName: "web-app"},
		},
		{
			name: "azure repos legacy host with user info",
			url:  "https://jdoe@contoso.visualstudio.com/Fabrikam/_git/web-app",
			want: Remote{Provider: domain.ProviderAzureRepos, OrganizationName: "contoso", ProjectName: "Fabrikam", RepositoryName: "web-app"},
		},
		{
			name: "azure repos legacy host with default collection",
			url:  "https://contoso.visualstudio.com/DefaultCollection/Fabrikam/_git/web-app",
			want: Remote{Provider: domain.ProviderAzureRepos, OrganizationName: "contoso", ProjectName: "Fabrikam", RepositoryName: "web-app"},
		},
		{
			name: "azure repos escaped project",
			url:  "https://dev.azure.com/contoso/Fabrikam%20Fiber/_git/web-app",
			want: Remote{Provider: domain.ProviderAzureRepos, OrganizationName: "contoso", ProjectName: "Fabrikam Fiber", RepositoryName: "web-app"},
		},
		{
			name: "github https with .git",
			url:  "https://github.com/acme/widget.git",
			want: Remote{Provider: domain.ProviderGitHub, RepositoryID: "acme/widget", RepositoryName: "acme/widget"},
		},
		{
			name: "github https trailing slash",
			url:  "https://github.com/acme/widget/",
			want: Remote{Provider: domain.ProviderGitHub, RepositoryID: "acme/widget", RepositoryName: "acme/widget"},
		},
		{
			name: "github ssh",
			url:  "git@github.com:acme/widget.git",
			want: Remote{Provider: domain.ProviderGitHub, RepositoryID: "acme/widget", RepositoryName: "acme/widget"},
		},
		{
			name: "github repository named like the legacy host",
			url:  "https://github.com/acme/docs.visualstudio.com/",
			want: Remote{Provider: domain.ProviderGitHub, RepositoryID: "acme/docs.visualstudio.com", RepositoryName: "acme/docs.visualstudio.com"},
		},
		{
			name: "github repository named like the azure repos host",
			url:  "https://github.com/acme/dev.azure.com/",
			want: Remote{Provider: domain.ProviderGitHub, RepositoryID: "acme/dev.azure.com", RepositoryName: "acme/dev.azure.com"},
		},
		{
			name: "surrounding whitespace",
			url:  "  https://github.com/acme/widget\n",
			want: Remote{Provider: domain.ProviderGitHub, RepositoryID: "acme/widget", RepositoryName: "acme/widget"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := Parse(tt.url)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse_Unrecognized(t *testing.T) {
	t.Parallel()

	urls := []string{
		"",
		"https://gitlab.com/acme/widget.git",
		"https://bitbucket.org/acme/widget",
		"https://dev.azure.com/contoso/Fabrikam",
		"https://dev.azure.com/contoso//_git/web-app",
		"https://contoso.visualstudio.com/Fabrikam",
		"https://dev.azure.com/acme/widget/_build/foo",
		"https://dev.azure.com/acme/widget/_GIT2/foo",
		"https://contoso.visualstudio.com/Fabrikam/_build/web-app",
		"https://contoso.visualstudio.com/DefaultCollection/Fabrikam/_wiki/web-app",
		"https://github.com/acme",
		"https://github.com/",
		"git@github.com:.git",
		"ssh://git@example.com/acme/widget.git",
	}

	for _, u := range urls {
		t.Run(u, func(t *testing.T) {
			t.Parallel()
			_, err := Parse(u)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrUnrecognizedRepositoryURL)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestDescribe(t *testing.T) {
	t.Parallel()

	desc, err := Describe(domain.GitDetails{
		RemoteURL: "https://github.com/acme/widget.git",
		Branch:    "main",
		CommitID:  "0a1b2c3",
	})
	require.NoError(t, err)

	assert.Equal(t, domain.ProviderGitHub, desc.Provider)
	assert.Equal(t, "acme/widget", desc.RepositoryID)
	assert.Equal(t, "main", desc.Branch)
	assert.Equal(t, "0a1b2c3", desc.CommitID)
	assert.Empty(t, desc.ServiceConnectionID)

	_, err = Describe(domain.GitDetails{RemoteURL: "file:///tmp/repo"})
	assert.ErrorIs(t, err, domain.ErrUnrecognizedRepositoryURL)
}

func TestProviderDetection(t *testing.T) {
	t.Parallel()
	assert.True(t, IsAzureReposURL("https://dev.azure.com/o/p/_git/r"))
	assert.True(t, IsAzureReposURL("https://o.visualstudio.com/p/_git/r"))
	assert.False(t, IsAzureReposURL("https://github.com/o/r"))
	assert.True(t, IsGitHubURL("git@github.com:o/r.git"))
	assert.False(t, IsGitHubURL("http://github.com/o/r"))
}
