package dispatch

import (
	"os"
)

// ExpandVars substitutes $NAME and ${NAME} in template from vars. Unknown
// names expand to "". Values are inserted verbatim and never re-expanded,
// so user text containing "$" is safe.
func ExpandVars(template string, vars map[string]string) string {
	return os.Expand(template, func(key string) string {
		return vars[key]
	})
}
