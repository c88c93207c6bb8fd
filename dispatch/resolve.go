package dispatch

import "fmt"

// Source identifies where a resolved strategy came from.
type Source int

const (
	// SourceNone means nothing was configured.
	SourceNone Source = iota
	// SourceOverride means the strategy was set for the current unit of work.
	SourceOverride
	// SourceDefault means the strategy is the process-wide default.
	SourceDefault
)

// String returns the string representation of the source.
func (s Source) String() string {
	switch s {
	case SourceNone:
		return "none"
	case SourceOverride:
		return "override"
	case SourceDefault:
		return "default"
	default:
		return "unknown"
	}
}

// Conflict records that a policy and a pipeline were both configured for the
// same mode and tier. The pipeline is used; the policy is ignored.
type Conflict struct {
	Mode Mode
	Tier Source
}

// Message returns the operator-facing warning text.
func (c Conflict) Message() string {
	return fmt.Sprintf(
		"the %[1]s %[2]s dispatch retry policy and the %[1]s %[2]s dispatch resilience pipeline are both configured; "+
			"only the resilience pipeline will be used, remove the %[1]s %[2]s dispatch retry policy",
		c.Tier, c.Mode)
}

// Resolution is the outcome of resolving the strategy for one dispatch call.
type Resolution struct {
	Strategy Strategy
	Source   Source
	Conflict *Conflict
}

// Resolve picks the strategy for mode. First match wins:
//
//  1. override pipeline (conflict if an override policy is also set)
//  2. override policy
//  3. default pipeline (conflict if a default policy is also set)
//  4. default policy
//  5. none
//
// Resolve is pure: the same inputs always yield the same Resolution.
func Resolve(mode Mode, overridePolicy, overridePipeline, defaultPolicy, defaultPipeline Executor) Resolution {
	switch {
	case !isNil(overridePipeline):
		return Resolution{
			Strategy: PipelineStrategy(overridePipeline),
			Source:   SourceOverride,
			Conflict: conflictIf(!isNil(overridePolicy), mode, SourceOverride),
		}
	case !isNil(overridePolicy):
		return Resolution{Strategy: PolicyStrategy(overridePolicy), Source: SourceOverride}
	case !isNil(defaultPipeline):
		return Resolution{
			Strategy: PipelineStrategy(defaultPipeline),
			Source:   SourceDefault,
			Conflict: conflictIf(!isNil(defaultPolicy), mode, SourceDefault),
		}
	case !isNil(defaultPolicy):
		return Resolution{Strategy: PolicyStrategy(defaultPolicy), Source: SourceDefault}
	default:
		return Resolution{Strategy: NoStrategy(), Source: SourceNone}
	}
}

func conflictIf(cond bool, mode Mode, tier Source) *Conflict {
	if !cond {
		return nil
	}
	return &Conflict{Mode: mode, Tier: tier}
}
