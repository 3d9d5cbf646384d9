// Package flagx helps several independent flag sets share one os.Args:
// each consumer filters out the flags it owns before parsing.
package flagx

import (
	"flag"
	"os"
	"strings"
)

// flagName strips the value from "-name=value" and folds "--name" to "-name".
func flagName(arg string) string {
	name, _, _ := strings.Cut(arg, "=")
	if strings.HasPrefix(name, "--") {
		name = name[1:]
	}
	return name
}

// FilterArgs keeps only the arguments that belong to allowedFlags, in order.
// A flag given as "-f value" keeps its value unless the next token is itself
// a flag; "-f=value" and "--f=value" are kept as a single token.
func FilterArgs(args []string, allowedFlags []string) []string {
	allowed := make(map[string]bool, len(allowedFlags))
	for _, f := range allowedFlags {
		allowed[flagName(f)] = true
	}

	filtered := []string{}
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if !strings.HasPrefix(arg, "-") || !allowed[flagName(arg)] {
			continue
		}
		filtered = append(filtered, arg)
		if strings.Contains(arg, "=") {
			continue
		}
		if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			i++
			filtered = append(filtered, args[i])
		}
	}
	return filtered
}

// ConfigFileFlag returns the value of -c / -config from os.Args, or "".
func ConfigFileFlag() string {
	var path string

	fs := flag.NewFlagSet("config-file", flag.ContinueOnError)
	fs.SetOutput(discard{})
	fs.StringVar(&path, "config", "", "path to JSON config file")
	fs.StringVar(&path, "c", "", "path to JSON config file (short)")
	_ = fs.Parse(FilterArgs(os.Args[1:], []string{"-c", "-config"}))

	return path
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }
