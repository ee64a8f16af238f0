package keymap

import (
	"fmt"
	"strings"
)

// HelpBinding is one line of help text
type HelpBinding struct {
	Keys        string // Combined keys like "j / down"
	Description string
}

// HelpFor groups the bindings active in context by command, in registration
// order. Global bindings are grouped on their own and listed last.
func (r *Registry) HelpFor(context Context) []HelpBinding {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []HelpBinding
	for _, s := range scopes(context) {
		out = append(out, group(r.bindings[s])...)
	}
	return out
}

// GenerateHelp renders the help text for context
func (r *Registry) GenerateHelp(context Context) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s:\n", strings.ToUpper(string(context))))
	for _, b := range r.HelpFor(context) {
		sb.WriteString(fmt.Sprintf("  %-16s %s\n", b.Keys, b.Description))
	}
	return sb.String()
}

// ShortHelp renders a one-line footer hint from the context's own bindings
func (r *Registry) ShortHelp(context Context) string {
	r.mu.RLock()
	own := append([]Binding(nil), r.bindings[context]...)
	r.mu.RUnlock()

	var parts []string
	for _, b := range group(own) {
		first := strings.SplitN(b.Keys, " / ", 2)[0]
		parts = append(parts, fmt.Sprintf("%s:%s", first, strings.ToLower(b.Description)))
	}
	return strings.Join(parts, "  ")
}

func group(bindings []Binding) []HelpBinding {
	var order []Command
	keys := make(map[Command][]string)
	desc := make(map[Command]string)

	for _, b := range bindings {
		if _, seen := keys[b.Command]; !seen {
			order = append(order, b.Command)
			desc[b.Command] = b.Description
		}
		keys[b.Command] = append(keys[b.Command], b.Key)
	}

	result := make([]HelpBinding, 0, len(order))
	for _, cmd := range order {
		result = append(result, HelpBinding{
			Keys:        strings.Join(keys[cmd], " / "),
			Description: desc[cmd],
		})
	}
	return result
}
