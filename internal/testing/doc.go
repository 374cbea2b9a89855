// Package testing provides test utilities, builders, and fakes shared by the
// provisioning packages:
//   - ConfigBuilder: Fluent builder for run configurations
//   - FakeControlPlane: httptest server that answers every control plane,
//     graph and management call a run makes and records each request
//   - RecordingObserver: provisioning.Observer that keeps events for assertions
//
// Usage:
//
//	plane := testing.NewFakeControlPlane(t)
//	cfg := testing.NewConfigBuilder().
//	    WithRemote("https://github.com/acme/widget.git").
//	    Build()
//	plane.ApplyEndpoints(cfg)
package testing
