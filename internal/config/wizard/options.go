package wizard

import (
	"github.com/charmbracelet/huh"

	"github.com/imamik/pipelinekit/internal/config"
)

// StrategyOption describes a pipeline creation backend.
type StrategyOption struct {
	Value       string
	Label       string
	Description string
}

// Strategies lists the supported pipeline creation backends.
var Strategies = []StrategyOption{
	{Value: config.StrategyDefinition, Label: "Definition + queue", Description: "create a build definition, then queue a build"},
	{Value: config.StrategyAggregated, Label: "Create and run", Description: "single aggregated create-and-run call"},
}

// Regions lists the regions a new organization can be hosted in.
var Regions = []StrategyOption{
	{Value: "CUS", Label: "CUS", Description: "Central US"},
	{Value: "EUS2", Label: "EUS2", Description: "East US 2"},
	{Value: "WEU", Label: "WEU", Description: "West Europe"},
	{Value: "SEA", Label: "SEA", Description: "Southeast Asia"},
	{Value: "AUE", Label: "AUE", Description: "Australia East"},
}

func toOptions(opts []StrategyOption) []huh.Option[string] {
	out := make([]huh.Option[string], len(opts))
	for i, o := range opts {
		out[i] = huh.NewOption(o.Label+" - "+o.Description, o.Value)
	}
	return out
}

// StrategiesToOptions converts Strategies to huh select options.
func StrategiesToOptions() []huh.Option[string] {
	return toOptions(Strategies)
}

// RegionsToOptions converts Regions to huh select options.
func RegionsToOptions() []huh.Option[string] {
	return toOptions(Regions)
}
