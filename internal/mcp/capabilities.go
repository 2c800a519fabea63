package mcp

import "github.com/mcpkit/mcpcore/internal/lifecycle"

// ToLifecycle converts the wire ClientCapabilities into the domain
// lifecycle.Capabilities type that internal/lifecycle negotiates and
// gates dispatch on.
func (c ClientCapabilities) ToLifecycle() lifecycle.Capabilities {
	var out lifecycle.Capabilities
	if c.Roots != nil {
		out.Roots = &lifecycle.RootsCapability{ListChanged: c.Roots.ListChanged}
	}
	if c.Sampling != nil {
		out.Sampling = &lifecycle.SamplingCapability{}
	}
	if c.Tools != nil {
		out.Tools = &lifecycle.ToolsCapability{ListChanged: c.Tools.ListChanged}
	}
	if c.Resources != nil {
		out.Resources = &lifecycle.ResourcesCapability{Subscribe: c.Resources.Subscribe, ListChanged: c.Resources.ListChanged}
	}
	if c.Prompts != nil {
		out.Prompts = &lifecycle.PromptsCapability{ListChanged: c.Prompts.ListChanged}
	}
	if c.Logging != nil {
		out.Logging = &lifecycle.LoggingCapability{}
	}
	return out
}

// ToLifecycle converts the wire (server) Capabilities into the domain
// lifecycle.Capabilities type.
func (c Capabilities) ToLifecycle() lifecycle.Capabilities {
	var out lifecycle.Capabilities
	if c.Tools != nil {
		out.Tools = &lifecycle.ToolsCapability{ListChanged: c.Tools.ListChanged}
	}
	if c.Resources != nil {
		out.Resources = &lifecycle.ResourcesCapability{Subscribe: c.Resources.Subscribe, ListChanged: c.Resources.ListChanged}
	}
	if c.Prompts != nil {
		out.Prompts = &lifecycle.PromptsCapability{ListChanged: c.Prompts.ListChanged}
	}
	if c.Logging != nil {
		out.Logging = &lifecycle.LoggingCapability{}
	}
	if c.Sampling != nil {
		out.Sampling = &lifecycle.SamplingCapability{}
	}
	if c.Roots != nil {
		out.Roots = &lifecycle.RootsCapability{ListChanged: c.Roots.ListChanged}
	}
	return out
}

// CapabilitiesFromLifecycle renders a negotiated lifecycle.Capabilities
// back into the wire shape returned in an initialize result.
func CapabilitiesFromLifecycle(c lifecycle.Capabilities) Capabilities {
	var out Capabilities
	if c.Tools != nil {
		out.Tools = &ToolsCapability{ListChanged: c.Tools.ListChanged}
	}
	if c.Resources != nil {
		out.Resources = &ResourcesCapability{Subscribe: c.Resources.Subscribe, ListChanged: c.Resources.ListChanged}
	}
	if c.Prompts != nil {
		out.Prompts = &PromptsCapability{ListChanged: c.Prompts.ListChanged}
	}
	if c.Logging != nil {
		out.Logging = &LoggingCapability{}
	}
	if c.Sampling != nil {
		out.Sampling = &SamplingCapability{}
	}
	if c.Roots != nil {
		out.Roots = &RootsCapability{ListChanged: c.Roots.ListChanged}
	}
	return out
}
