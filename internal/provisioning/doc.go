// Package provisioning provides shared types, interfaces, and the phase
// runner for provisioning a CI pipeline.
//
// # Subpackages
//
//   - organization/: organization and project resolution or creation
//   - connection/: service connections, readiness polling, authorization
//   - principal/: cloud service principal and role assignment
//   - pipeline/: pipeline definition creation and the first run
//
// # Core Types
//
// Context carries configuration, state, collaborators, and the observer.
// Phase defines a provisioning step with Name() and Provision() methods.
// State accumulates results from each phase (organization, project,
// connections, definition, run).
package provisioning
