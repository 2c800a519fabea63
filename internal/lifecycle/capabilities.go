package lifecycle

import "errors"

// ErrCapabilityNotNegotiated indicates a method's capability was not
// present in the intersection computed at initialize.
var ErrCapabilityNotNegotiated = errors.New("capability not negotiated")

// ResourcesCapability describes resource-related feature options.
type ResourcesCapability struct {
	Subscribe   bool
	ListChanged bool
}

// ToolsCapability describes tool-related feature options.
type ToolsCapability struct {
	ListChanged bool
}

// PromptsCapability describes prompt-related feature options.
type PromptsCapability struct {
	ListChanged bool
}

// LoggingCapability marks logging support; it carries no options.
type LoggingCapability struct{}

// SamplingCapability marks sampling support; specified only at the
// negotiation level per this module's Non-goals (no orchestration here).
type SamplingCapability struct{}

// RootsCapability describes workspace-roots feature options.
type RootsCapability struct {
	ListChanged bool
}

// Capabilities is the closed set of known MCP capability names with
// typed options. Unknown peer-declared capabilities have no field here:
// they are dropped when initialize params are decoded, so they are
// neither recorded nor admitted for dispatch.
type Capabilities struct {
	Resources *ResourcesCapability
	Tools     *ToolsCapability
	Prompts   *PromptsCapability
	Logging   *LoggingCapability
	Sampling  *SamplingCapability
	Roots     *RootsCapability
}

// Has reports whether the named capability is present in this set.
func (c Capabilities) Has(name string) bool {
	switch name {
	case "resources":
		return c.Resources != nil
	case "tools":
		return c.Tools != nil
	case "prompts":
		return c.Prompts != nil
	case "logging":
		return c.Logging != nil
	case "sampling":
		return c.Sampling != nil
	case "roots":
		return c.Roots != nil
	default:
		return false
	}
}

// Intersect computes the conservative component-wise intersection of
// two capability sets: a feature is present only if both sides
// declared it, and boolean sub-options are true only if both sides
// set them true (decision recorded in DESIGN.md, Open Question 3).
func Intersect(a, b Capabilities) Capabilities {
	var out Capabilities

	if a.Resources != nil && b.Resources != nil {
		out.Resources = &ResourcesCapability{
			Subscribe:   a.Resources.Subscribe && b.Resources.Subscribe,
			ListChanged: a.Resources.ListChanged && b.Resources.ListChanged,
		}
	}
	if a.Tools != nil && b.Tools != nil {
		out.Tools = &ToolsCapability{ListChanged: a.Tools.ListChanged && b.Tools.ListChanged}
	}
	if a.Prompts != nil && b.Prompts != nil {
		out.Prompts = &PromptsCapability{ListChanged: a.Prompts.ListChanged && b.Prompts.ListChanged}
	}
	if a.Logging != nil && b.Logging != nil {
		out.Logging = &LoggingCapability{}
	}
	if a.Sampling != nil && b.Sampling != nil {
		out.Sampling = &SamplingCapability{}
	}
	if a.Roots != nil && b.Roots != nil {
		out.Roots = &RootsCapability{ListChanged: a.Roots.ListChanged && b.Roots.ListChanged}
	}

	return out
}
