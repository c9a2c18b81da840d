package viewer

import (
	"fmt"
	"strings"
)

// Tool is the interaction mode applied to pointer drags.
type Tool int

const (
	ToolWindowLevel Tool = iota
	ToolPan
	ToolZoom
	ToolStackScroll
	ToolRuler
	// ToolReset is one-shot: selecting it resets the view and keeps the
	// active tool.
	ToolReset
)

var toolNames = map[Tool]string{
	ToolWindowLevel: "window-level",
	ToolPan:         "pan",
	ToolZoom:        "zoom",
	ToolStackScroll: "stack-scroll",
	ToolRuler:       "ruler",
	ToolReset:       "reset",
}

// String returns the configuration name of the tool.
func (t Tool) String() string {
	if name, ok := toolNames[t]; ok {
		return name
	}
	return "unknown"
}

// Tools returns the selectable tools in display order.
func Tools() []Tool {
	return []Tool{ToolWindowLevel, ToolPan, ToolZoom, ToolStackScroll, ToolRuler, ToolReset}
}

// ParseTool parses a tool name as written in configuration files.
func ParseTool(name string) (Tool, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	for t, n := range toolNames {
		if n == normalized {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown tool %q", name)
}
