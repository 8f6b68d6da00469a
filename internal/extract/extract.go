// Package extract pulls clean diagram source code out of possibly-noisy LLM
// output. It is pure text processing: no renderer calls, no network.
package extract

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/diagramgpt/diagramgpt/internal/domain"
)

// Fenced code block patterns per kind. The language tag is optional; an
// untagged fence is accepted for every kind.
var (
	graphvizFenceRe = regexp.MustCompile("(?s)```(?:dot|graphviz)?[ \t]*\n(.*?)\n[ \t]*```")
	mermaidFenceRe  = regexp.MustCompile("(?s)```(?:mermaid)?[ \t]*\n(.*?)\n[ \t]*```")
	plantumlFenceRe = regexp.MustCompile("(?s)```(?:plantuml|puml|wbs)?[ \t]*\n(.*?)\n[ \t]*```")

	graphvizDeclRe = regexp.MustCompile(`(?i)\b(di)?graph\b`)
	ganttDeclRe    = regexp.MustCompile(`(?i)\bgantt\b`)
)

// Code extracts diagram source code of the given kind from raw LLM output.
// It prefers the interior of a fenced code block; without a fence the whole
// trimmed response is used. A kind-specific sanity check rejects text that
// cannot plausibly be source code of that kind.
func Code(raw string, kind domain.DiagramKind) (string, error) {
	switch kind {
	case domain.KindGraphviz:
		return graphvizCode(raw)
	case domain.KindMermaidGantt:
		return ganttCode(raw)
	case domain.KindPlantUMLWBS:
		return wbsCode(raw)
	default:
		return "", fmt.Errorf("%w: %q", domain.ErrInvalidKind, kind)
	}
}

func fencedOrWhole(raw string, re *regexp.Regexp) string {
	if m := re.FindStringSubmatch(raw); m != nil {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(raw)
}

func graphvizCode(raw string) (string, error) {
	code := fencedOrWhole(raw, graphvizFenceRe)

	if !graphvizDeclRe.MatchString(code) {
		return "", fmt.Errorf(
			"%w: DOT code must contain a 'graph' or 'digraph' declaration",
			domain.ErrValidation)
	}

	return code, nil
}

func ganttCode(raw string) (string, error) {
	code := fencedOrWhole(raw, mermaidFenceRe)

	if !ganttDeclRe.MatchString(code) {
		return "", fmt.Errorf(
			"%w: Mermaid code must contain a 'gantt' declaration",
			domain.ErrValidation)
	}

	return code, nil
}

func wbsCode(raw string) (string, error) {
	code := fencedOrWhole(raw, plantumlFenceRe)

	if code == "" {
		return "", fmt.Errorf("%w: empty PlantUML code", domain.ErrValidation)
	}

	// Models often emit bare WBS outlines. Wrap them rather than failing.
	if !hasWBSMarkers(code) {
		code = "@startwbs\n" + code + "\n@endwbs"
	}

	return code, nil
}

func hasWBSMarkers(code string) bool {
	start := strings.HasPrefix(code, "@startwbs") || strings.HasPrefix(code, "@startuml")
	end := strings.HasSuffix(code, "@endwbs") || strings.HasSuffix(code, "@enduml")
	return start && end
}
