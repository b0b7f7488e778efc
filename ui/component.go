// Package ui turns backend-described UI components into terminal
// renderings and user actions. Component props arrive as loose JSON
// objects; each known component coerces them into a typed struct at
// dispatch. Unknown components are never an error: they fall back to a
// generic key/value dump so new backend components degrade gracefully.
package ui

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Component is a dispatched UI component ready to render.
type Component interface {
	ComponentName() string
	Render(width int) string
}

// Decode resolves a component name and its raw props into a typed
// component. Coercion failures and unknown names both yield a Generic
// fallback rather than an error.
func Decode(name string, props map[string]any) Component {
	switch name {
	case "JobList":
		var c JobList
		if coerce(props, &c) == nil {
			return &c
		}
	case "ApplicationForm":
		var c ApplicationForm
		if coerce(props, &c) == nil {
			return &c
		}
	case "ProfileForm":
		var c ProfileForm
		if coerce(props, &c) == nil {
			c.captureOriginals()
			return &c
		}
	case "ApplicationSuccess":
		var c ApplicationSuccess
		if coerce(props, &c) == nil {
			return &c
		}
	case "ProfileSuccess":
		var c ProfileSuccess
		if coerce(props, &c) == nil {
			return &c
		}
	case "ErrorDisplay":
		var c ErrorDisplay
		if coerce(props, &c) == nil {
			return &c
		}
	}
	return &Generic{Name: name, Props: props}
}

// coerce round-trips a prop map through JSON into a typed struct.
func coerce(props map[string]any, dst any) error {
	data, err := json.Marshal(props)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dst)
}

// Generic is the fallback rendering for component names this client
// does not know.
type Generic struct {
	Name  string
	Props map[string]any
}

func (g *Generic) ComponentName() string { return g.Name }

func (g *Generic) Render(width int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Displaying UI Component: %s\n", g.Name)
	keys := make([]string, 0, len(g.Props))
	for k := range g.Props {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, "  %s: %s\n", k, compactValue(g.Props[k]))
	}
	return dimStyle.Render(strings.TrimRight(b.String(), "\n"))
}

func compactValue(v any) string {
	switch v.(type) {
	case map[string]any, []any:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(data)
	default:
		return fmt.Sprint(v)
	}
}
