package simulation

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
)

// Killed reports whether killFile exists and, if so, removes it and
// logs the detection — a direct port of original_source/utils.cpp's
// killed(), the boundary contract spec §5 "Cancellation / timeouts"
// describes as the driver's responsibility, not the core's.
func Killed(killFile string) bool {
	if killFile == "" {
		return false
	}
	if _, err := os.Stat(killFile); err != nil {
		return false
	}
	log.Printf("simulation: found killfile %s", killFile)
	if err := os.Remove(killFile); err != nil {
		log.Printf("simulation: removing killfile %s: %v", killFile, err)
	}
	return true
}

// RemoveOldConfigs removes every entry directly under dir, including
// subdirectories and their contents, the Go equivalent of utils.cpp's
// remove_old_configs (which shells out to `rm -r <path>*`).
// os.ReadDir + os.RemoveAll avoids invoking a shell over a path built
// from configuration.
func RemoveOldConfigs(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("simulation: reading %s: %w", dir, err)
	}
	for _, e := range entries {
		path := filepath.Join(dir, e.Name())
		if err := os.RemoveAll(path); err != nil {
			return fmt.Errorf("simulation: removing %s: %w", path, err)
		}
	}
	return nil
}
