package domain

import "strings"

// DiagramKind identifies one of the supported diagram families. Each kind
// has its own system prompt, extraction rule, and render backend.
type DiagramKind string

const (
	KindGraphviz     DiagramKind = "graphviz"
	KindMermaidGantt DiagramKind = "mermaid_gantt"
	KindPlantUMLWBS  DiagramKind = "plantuml_wbs"
)

// IsValid reports whether the kind is one of the supported diagram kinds.
func (k DiagramKind) IsValid() bool {
	switch k {
	case KindGraphviz, KindMermaidGantt, KindPlantUMLWBS:
		return true
	default:
		return false
	}
}

// Format is the requested image output format.
type Format string

const (
	FormatSVG Format = "svg"
	FormatPNG Format = "png"
)

// ParseFormat normalizes and validates an output format string.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatSVG:
		return FormatSVG, nil
	case FormatPNG:
		return FormatPNG, nil
	default:
		return "", ErrInvalidFormat
	}
}

// IsValid reports whether the format is svg or png.
func (f Format) IsValid() bool {
	return f == FormatSVG || f == FormatPNG
}

// GraphvizEngines is the allow-list of layout engines the local renderer
// will invoke.
var GraphvizEngines = []string{"dot", "neato", "fdp", "sfdp", "twopi", "circo"}

// IsValidEngine reports whether the given name is a supported Graphviz
// layout engine.
func IsValidEngine(engine string) bool {
	for _, e := range GraphvizEngines {
		if engine == e {
			return true
		}
	}
	return false
}

// DefaultLayout returns the default layout-or-engine value for a kind. For
// graphviz this is the default layout engine; for the remote kinds it is the
// renderer tag, which keeps prompt fingerprints disjoint across kinds.
func (k DiagramKind) DefaultLayout() string {
	switch k {
	case KindGraphviz:
		return "dot"
	case KindMermaidGantt:
		return "mermaid"
	case KindPlantUMLWBS:
		return "plantuml"
	default:
		return ""
	}
}
