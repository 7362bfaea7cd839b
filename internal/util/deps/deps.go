package deps

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Resolve returns an executable path for name. Names containing a path
// separator are checked on disk; bare names are looked up in PATH.
func Resolve(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("no command given")
	}
	if strings.ContainsRune(name, os.PathSeparator) {
		fi, err := os.Stat(name)
		if err != nil {
			return "", fmt.Errorf("could not find command at %q: %w", name, err)
		}
		if fi.IsDir() {
			return "", fmt.Errorf("%q is a directory", name)
		}
		return name, nil
	}
	p, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("could not find %q in PATH", name)
	}
	return p, nil
}
