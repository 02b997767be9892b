package main

import (
	"fmt"
	"os"

	"github.com/convoy-ci/convoy/internal/metadata"
)

// validatePlanArgs rejects connector directories that do not exist or carry
// no descriptor, before any context is built.
func validatePlanArgs(dirs []string) error {
	for _, dir := range dirs {
		info, err := os.Stat(dir)
		if err != nil {
			return fmt.Errorf("connector directory %q: %w", dir, err)
		}
		if !info.IsDir() {
			return fmt.Errorf("connector directory %q is not a directory", dir)
		}
		if _, err := os.Stat(metadata.NewAccessor(dir).Path()); err != nil {
			return fmt.Errorf("connector directory %q has no %s", dir, metadata.FileName)
		}
	}
	return nil
}
