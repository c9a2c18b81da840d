package help

// HelpText describes one tool of the viewer.
type HelpText struct {
	Title       string
	Description string
	Details     string
}

// Texts is keyed by tool name as used in configuration files.
var Texts = map[string]HelpText{
	"window-level": {
		Title:       "WINDOW / LEVEL  [w]",
		Description: "Adjust contrast and brightness.",
		Details: `Drag horizontally to widen or narrow the window.
Drag vertically to move the window centre.`,
	},
	"pan": {
		Title:       "PAN  [p]",
		Description: "Move the image inside the viewport.",
		Details:     "Drag in any direction.",
	},
	"zoom": {
		Title:       "ZOOM  [z]",
		Description: "Magnify or shrink the image.",
		Details:     "Drag up to zoom in, down to zoom out.",
	},
	"stack-scroll": {
		Title:       "STACK SCROLL  [s]",
		Description: "Browse the instances of the series.",
		Details: `Drag down for the next instance, up for the previous.
The mouse wheel browses with any tool.`,
	},
	"ruler": {
		Title:       "RULER  [l]",
		Description: "Measure a distance on the image.",
		Details: `Drag from one point to another. Lengths prefixed with ~
are estimated: the image carries no pixel spacing.
Click x to delete a measurement, d deletes the last one.`,
	},
	"reset": {
		Title:       "RESET  [r]",
		Description: "Restore the default view.",
		Details:     "Also clears the measurements of the current instance.",
	},
}
