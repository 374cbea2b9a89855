// Package naming generates names for control-plane resources.
//
// Per-run resources get a random suffix: service connections follow
// {prefix}-{5char}, pipeline definitions {target}.{4char}. Organization and
// project names are derived from the repository and sanitized to the
// characters the control plane accepts.
package naming
