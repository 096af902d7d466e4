package metrics

import (
	"fmt"
	"os"
	"path/filepath"

	prom "github.com/prometheus/client_golang/prometheus"
)

// WriteTextfile writes every metric in reg to path in the text exposition
// format, replacing the file atomically.
func WriteTextfile(reg *prom.Registry, path string) error {
	if reg == nil {
		return fmt.Errorf("metrics: nil registry")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("metrics: create %s: %w", filepath.Dir(path), err)
	}
	return prom.WriteToTextfile(path, reg)
}
