package tlc

import (
	"fmt"
	"os"
	"path/filepath"
)

// LocateJar finds tla2tools.jar per spec.md §6's fixed lookup order:
// TLA2TOOLS_JAR env var, then ~/.tla/tla2tools.jar, then ./tla2tools.jar.
func LocateJar() (string, error) {
	if p := os.Getenv("TLA2TOOLS_JAR"); p != "" {
		if _, err := os.Stat(p); err != nil {
			return "", fmt.Errorf("TLA2TOOLS_JAR=%s: %w", p, err)
		}
		return p, nil
	}

	if home, err := os.UserHomeDir(); err == nil {
		candidate := filepath.Join(home, ".tla", "tla2tools.jar")
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}

	if _, err := os.Stat("./tla2tools.jar"); err == nil {
		return "./tla2tools.jar", nil
	}

	return "", fmt.Errorf("tla2tools.jar not found: set TLA2TOOLS_JAR, place it at ~/.tla/tla2tools.jar, or ./tla2tools.jar")
}
