package devops

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/imamik/pipelinekit/internal/platform/rest"
)

// CreateBuildDefinition stores a pipeline definition in the definition's project.
func (c *Client) CreateBuildDefinition(ctx context.Context, orgURL string, def BuildDefinition) (*BuildDefinition, error) {
	var out BuildDefinition
	err := c.rest.Do(ctx, rest.Request{
		Operation:       "create_build_definition",
		Method:          http.MethodPost,
		URL:             join(orgURL, url.PathEscape(def.Project.ID), "_apis/build/definitions"),
		APIVersion:      versionDefinitions,
		VersionInAccept: true,
		Body:            def,
	}, &out)
	if err != nil {
		return nil, fmt.Errorf("create build definition %s: %w", def.Name, err)
	}
	return &out, nil
}

// QueueBuild triggers a run of an existing definition.
func (c *Client) QueueBuild(ctx context.Context, orgURL string, req QueueBuildRequest) (*Build, error) {
	var out Build
	err := c.rest.Do(ctx, rest.Request{
		Operation:       "queue_build",
		Method:          http.MethodPost,
		URL:             join(orgURL, url.PathEscape(req.Project.ID), "_apis/build/builds"),
		APIVersion:      versionBuilds,
		VersionInAccept: true,
		Body:            req,
	}, &out)
	if err != nil {
		return nil, fmt.Errorf("queue build for definition %d: %w", req.Definition.ID, err)
	}
	return &out, nil
}

// CreateAndRunPipeline creates a pipeline and starts its first run in one
// call through the web contribution data provider.
func (c *Client) CreateAndRunPipeline(ctx context.Context, orgURL string, properties CreateAndRunContext) (*CreateAndRunResult, error) {
	var out hierarchyResponse
	err := c.rest.Do(ctx, rest.Request{
		Operation:       "create_and_run_pipeline",
		Method:          http.MethodPost,
		URL:             join(orgURL, "_apis/Contribution/HierarchyQuery"),
		APIVersion:      versionHierarchyQuery,
		VersionInAccept: true,
		AcceptOptions:   webAPIOptions,
		Body: hierarchyQuery{
			ContributionIDs:     []string{CreateAndRunContributionID},
			DataProviderContext: dataProviderContext{Properties: properties},
		},
	}, &out)
	if err != nil {
		return nil, fmt.Errorf("create and run pipeline: %w", err)
	}

	raw, ok := out.DataProviders[CreateAndRunContributionID]
	if !ok || len(raw) == 0 || string(raw) == "null" {
		return nil, fmt.Errorf("create and run pipeline: response has no %s data", CreateAndRunContributionID)
	}
	var result CreateAndRunResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("create and run pipeline: parse data provider: %w", err)
	}
	return &result, nil
}
