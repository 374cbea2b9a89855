// Package config defines the configuration of a provisioning run.
//
// A [Config] is read from an optional YAML file, overridden by command-line
// flags, and validated once before any remote call. [Timeouts] carries the
// polling and retry budgets, read from PIPELINEKIT_* environment variables.
package config
