// Package props loads the optional KEY=VALUE override files that may sit next
// to an input template: <base>.properties for one input, common.properties
// shared by every input in the same directory.
package props

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// ForTemplate returns the override file paths for an input template in
// precedence order: the input-specific file first, then the shared one.
func ForTemplate(templatePath string) []string {
	dir := filepath.Dir(templatePath)
	base := strings.TrimSuffix(filepath.Base(templatePath), filepath.Ext(templatePath))
	return []string{
		filepath.Join(dir, base+".properties"),
		filepath.Join(dir, "common.properties"),
	}
}

// Load reads one KEY=VALUE file. A missing file yields a nil map and no
// error; a file that exists but cannot be read or parsed is an error.
func Load(path string) (map[string]string, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("override file %s: %w", path, err)
	}
	values, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("override file %s: %w", path, err)
	}
	return values, nil
}
