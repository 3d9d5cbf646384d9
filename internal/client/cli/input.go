package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dmitrijs2005/eventdrop/internal/client/config"
	"golang.org/x/term"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

// GetPassword prints a prompt to w and reads the admin password from the
// terminal without echo.
func GetPassword(w io.Writer) (string, error) {
	if _, err := fmt.Fprint(w, "Admin password: "); err != nil {
		return "", err
	}
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(pw)), nil
}

// CommandArgs drops the global flags (and -c / -config) with their values,
// leaving the command and its own arguments.
func CommandArgs(args []string) []string {
	owned := map[string]bool{"-c": true, "-config": true}
	for _, f := range config.GlobalFlags {
		owned[f] = true
	}

	out := []string{}
	for i := 0; i < len(args); i++ {
		arg := args[i]
		name, _, hasValue := strings.Cut(arg, "=")
		name = "-" + strings.TrimLeft(name, "-")
		if !strings.HasPrefix(arg, "-") || !owned[name] {
			out = append(out, arg)
			continue
		}
		if !hasValue && i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			i++
		}
	}
	return out
}
