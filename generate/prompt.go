package generate

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/samber/lo"

	terminai "github.com/terminai/terminai-api"
)

// contextField maps a recognized context key to its prompt label.
type contextField struct {
	key   string
	label string
}

// contextFields lists the context keys surfaced to the model, in prompt order.
var contextFields = []contextField{
	{terminai.ContextOS, "Operating System"},
	{terminai.ContextShell, "Shell"},
	{terminai.ContextCurrentDir, "Current Directory"},
}

const closingInstruction = "Provide only the command with no explanation or formatting."

// BuildUserMessage constructs the user message from the request context and
// query. Only recognized context keys with truthy values are included.
func BuildUserMessage(req *terminai.CommandRequest) string {
	var sb strings.Builder

	sb.WriteString("Context information:\n")
	for _, line := range contextLines(req.Context) {
		sb.WriteString(line)
		sb.WriteString("\n")
	}

	sb.WriteString("\nGenerate a terminal command for the following request: ")
	sb.WriteString(req.Query)
	sb.WriteString("\n\n")
	sb.WriteString(closingInstruction)

	return sb.String()
}

// contextLines renders "Label: value" for each present context field.
func contextLines(ctx map[string]any) []string {
	return lo.FilterMap(contextFields, func(f contextField, _ int) (string, bool) {
		v, ok := ctx[f.key]
		if !ok || !truthy(v) {
			return "", false
		}
		return f.label + ": " + formatValue(v), true
	})
}

// formatValue renders a context value. Booleans are capitalized to match the
// prompts the CLI was tuned against; other values use their Go formatting.
func formatValue(v any) string {
	if b, ok := v.(bool); ok {
		if b {
			return "True"
		}
		return "False"
	}
	return fmt.Sprint(v)
}

// truthy reports whether a decoded JSON value counts as set: nil, "", false,
// zero and empty collections do not.
func truthy(v any) bool {
	if v == nil {
		return false
	}
	switch x := v.(type) {
	case string:
		return x != ""
	case bool:
		return x
	case float64:
		return x != 0
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() > 0
	}
	return !rv.IsZero()
}
