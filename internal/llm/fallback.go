package llm

import (
	"strings"

	"github.com/diagramgpt/diagramgpt/internal/domain"
)

// Deterministic template diagrams returned when no provider credentials are
// configured. They keep the render and persistence pipeline exercisable in
// local development without an API key.

const fallbackDirectedGraph = `digraph example {
    rankdir=TB;
    node [shape=box, style=rounded];

    start [label="Start", shape=ellipse];
    step1 [label="Process Step"];
    step2 [label="Decision", shape=diamond];
    end [label="End", shape=ellipse];

    start -> step1;
    step1 -> step2;
    step2 -> end [label="Complete"];
}`

const fallbackUndirectedGraph = `graph example {
    node [shape=circle];

    A [label="Node A"];
    B [label="Node B"];
    C [label="Node C"];
    D [label="Node D"];

    A -- B;
    B -- C;
    C -- D;
    D -- A;
    A -- C;
}`

const fallbackGantt = `gantt
    title Example Project
    dateFormat YYYY-MM-DD
    section Planning
    Requirements      :a1, 2024-01-01, 3d
    Design            :a2, after a1, 4d
    section Execution
    Implementation    :b1, after a2, 5d
    Review            :b2, after b1, 2d`

const fallbackWBS = `@startwbs
* Project
** Planning
*** Requirements
*** Schedule
** Execution
*** Build
*** Test
** Closeout
*** Review
*** Handover
@endwbs`

// directedKeywords mark prompts that read like a flow or hierarchy, which
// get a directed template graph.
var directedKeywords = []string{"flow", "process", "step", "sequence", "hierarchy"}

// fallbackCode returns a template diagram for the given kind. For Graphviz
// the prompt keywords pick between a directed and an undirected template.
func fallbackCode(kind domain.DiagramKind, prompt string) string {
	switch kind {
	case domain.KindMermaidGantt:
		return fallbackGantt
	case domain.KindPlantUMLWBS:
		return fallbackWBS
	default:
		lower := strings.ToLower(prompt)
		for _, keyword := range directedKeywords {
			if strings.Contains(lower, keyword) {
				return fallbackDirectedGraph
			}
		}
		return fallbackUndirectedGraph
	}
}
