// Package async runs independent pieces of a provisioning step concurrently,
// for example resolving a project while looking up a hosted repository in
// the same organization.
package async
