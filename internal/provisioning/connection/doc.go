// Package connection creates the service connections a pipeline
// authenticates with: a GitHub connection for repositories hosted on GitHub
// and a cloud subscription connection for the deployment target.
//
// A created connection is not usable until the control plane reports it
// ready. How readiness is reported differs per connection kind, see
// [Readiness]. Once ready, the connection is authorized for every pipeline
// in the project; a connection that cannot be authorized fails the run.
package connection
