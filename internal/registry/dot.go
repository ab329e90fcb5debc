package registry

import (
	"errors"
	"fmt"
	"strings"
)

// ToDot renders the registry as a Graphviz digraph: one box per index, one
// circle per recipe labeled with its priority, and edges from inputs through
// recipes to outputs. When targets are given, the plan for them is
// highlighted and edges off the plan are muted; if the targets cannot be
// planned, the graph is annotated instead. A malformed registry returns an
// error.
func (r *Registry) ToDot(targets ...string) (string, error) {
	var sb strings.Builder
	sb.WriteString("digraph recipegraph {\n")

	planTargets := make(map[string]struct{}, len(targets))
	for _, target := range targets {
		planTargets[target] = struct{}{}
	}

	planElements := make(map[PlanStep]struct{})
	planIndexes := make(map[string]struct{})
	if len(targets) > 0 {
		steps, err := r.plan(targets)
		if err != nil {
			var insufficient *InsufficientInputError
			if !errors.As(err, &insufficient) {
				return "", err
			}
			sb.WriteString("labelloc=\"t\";\n")
			sb.WriteString("label=\"Insufficient input to create targets\";\n")
		}
		for _, step := range steps {
			planElements[step] = struct{}{}
			planIndexes[step.Identifier] = struct{}{}
		}
	}

	dotID := make(map[string]string, len(r.order))
	for i, id := range r.order {
		dotID[id] = fmt.Sprintf("I%d", i)
		x := r.catalog[id]

		fmt.Fprintf(&sb, "%s[label=%q shape=box", dotID[id], id)
		switch {
		case x.isFinished():
			sb.WriteString(" style=\"filled,bold\" fillcolor=lightgray")
		case contains(planTargets, id):
			sb.WriteString(" style=\"filled,bold\" fillcolor=lightblue")
		case contains(planIndexes, id):
			sb.WriteString(" style=bold")
		}
		sb.WriteString("];\n")
	}

	mutedColor := "black"
	if len(targets) > 0 {
		mutedColor = "gray33"
	}

	recipeIdx := 0
	for _, id := range r.order {
		x := r.catalog[id]
		for priority := range x.recipes {
			recipeDotID := fmt.Sprintf("R%d", recipeIdx)
			recipeIdx++

			onPlan := contains(planElements, PlanStep{Identifier: id, Recipe: priority})
			if onPlan {
				fmt.Fprintf(&sb, "%s[label=\"%d\" shape=circle style=bold];\n", recipeDotID, priority)
				fmt.Fprintf(&sb, "%s -> %s[style=bold];\n", recipeDotID, dotID[id])
			} else {
				fmt.Fprintf(&sb, "%s[label=\"%d\" shape=circle];\n", recipeDotID, priority)
				fmt.Fprintf(&sb, "%s -> %s [color=%s];\n", recipeDotID, dotID[id], mutedColor)
			}

			for _, input := range x.recipes[priority].inputs {
				if onPlan {
					fmt.Fprintf(&sb, "%s -> %s[style=bold];\n", dotID[input], recipeDotID)
				} else {
					fmt.Fprintf(&sb, "%s -> %s [color=%s];\n", dotID[input], recipeDotID, mutedColor)
				}
			}
		}
	}

	sb.WriteString("}\n")
	return sb.String(), nil
}

func contains[K comparable](set map[K]struct{}, key K) bool {
	_, ok := set[key]
	return ok
}
