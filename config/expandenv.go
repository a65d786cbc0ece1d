package config

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"
)

var envRef = regexp.MustCompile(`\$\$|\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// ExpandEnv replaces each ${VAR} reference in s with the variable's value,
// erroring if any referenced variable is missing from the environment.
// `$$` emits a literal `$`. Bare `$VAR` references are left untouched.
func ExpandEnv(s string) (string, error) {
	missing := make(map[string]struct{})
	out := envRef.ReplaceAllStringFunc(s, func(ref string) string {
		if ref == "$$" {
			return "$"
		}
		key := ref[2 : len(ref)-1]
		value, ok := os.LookupEnv(key)
		if !ok {
			missing[key] = struct{}{}
			return ref
		}
		return value
	})

	if len(missing) > 0 {
		keys := make([]string, 0, len(missing))
		for k := range missing {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return "", fmt.Errorf("missing environment variables: %s", strings.Join(keys, ", "))
	}
	return out, nil
}
