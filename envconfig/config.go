package envconfig

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
)

var (
	// Set via GBNF_DOTALL in the environment. Seeds Options.Dotall when a
	// Converter is built with NewConverter and Options.Dotall left false.
	// Compile does not read it.
	dotall bool
)

type EnvVar struct {
	Name        string
	Value       any
	Description string
}

func AsMap() map[string]EnvVar {
	return map[string]EnvVar{
		"GBNF_DOTALL": {"GBNF_DOTALL", dotall, "Make '.' in regex patterns match line terminators (default false)"},
	}
}

// clean trims quotes and spaces from the value, the same permissive
// parsing the original config applies to every environment override.
func clean(key string) string {
	return strings.Trim(os.Getenv(key), "\"' ")
}

func init() {
	LoadConfig()
}

// LoadConfig re-reads every environment override. Invalid values are
// logged and the previous (or zero) value is kept, rather than failing
// the process.
func LoadConfig() {
	if v := clean("GBNF_DOTALL"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			slog.Error("invalid setting, ignoring", "GBNF_DOTALL", v, "error", err)
		} else {
			dotall = b
		}
	}
}

// Dotall returns the current GBNF_DOTALL setting.
func Dotall() bool { return dotall }
