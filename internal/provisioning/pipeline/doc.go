// Package pipeline creates the pipeline for a repository and triggers its
// first run.
//
// Two interchangeable strategies implement [Strategy]: [DefinitionStrategy]
// stores a build definition and queues a build against it, while
// [AggregatedStrategy] uses the single create-and-run data provider call.
// Both return the web URL of the queued run.
package pipeline
