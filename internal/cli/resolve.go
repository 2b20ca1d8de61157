package cli

import (
	"context"
	"fmt"
	"strings"
)

// resolveDiagramID accepts a diagram name (case-insensitive), a full id, or
// an unambiguous id prefix.
func resolveDiagramID(ctx context.Context, app *App, input string) (string, error) {
	if input == "" {
		return "", fmt.Errorf("diagram is required")
	}

	diagrams, err := app.Plans.ListDiagrams(ctx)
	if err != nil {
		return "", err
	}

	for _, d := range diagrams {
		if strings.EqualFold(d.Name, input) {
			return d.ID, nil
		}
	}

	for _, d := range diagrams {
		if d.ID == input {
			return d.ID, nil
		}
	}

	var matches []string
	for _, d := range diagrams {
		if strings.HasPrefix(d.ID, input) {
			matches = append(matches, d.ID)
		}
	}

	switch len(matches) {
	case 0:
		return "", fmt.Errorf("diagram not found: %q", input)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("diagram prefix %q is ambiguous (%d matches)", input, len(matches))
	}
}
