// Package orchestration composes the provisioning phases into one run.
//
// # Workflow
//
// The Orchestrator executes the following phases in order:
//  1. Validation - Pre-flight configuration validation
//  2. Repository - Remote URL classification and pipeline file rendering
//  3. Organization - Organization and project resolution or creation
//  4. Source connection - GitHub connection, for GitHub repositories only
//  5. Service principal - Cloud identity, unless credentials are configured
//  6. Cloud connection - Subscription connection scoped to the target
//  7. Pipeline - Pipeline creation and first run
//
// Each phase must succeed before the next starts. The first failure ends the
// run and is returned as a *domain.StepError; resources created by earlier
// phases are left in place.
//
// # Usage
//
//	orch := orchestration.New(devopsClient, cfg,
//		orchestration.WithIdentity(azureClient),
//		orchestration.WithPrompter(prompter),
//	)
//	runURL, err := orch.Run(ctx)
package orchestration
