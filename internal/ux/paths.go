package ux

import (
	"os"
	"path/filepath"
)

// DirName is the per-project opsched directory
const DirName = ".opsched"

// PathDefaults provides defaults for the files opsched reads and writes
type PathDefaults struct {
	Dir string
}

// NewPathDefaults discovers the .opsched directory starting at start
func NewPathDefaults(start string) *PathDefaults {
	return &PathDefaults{Dir: DiscoverDir(start)}
}

// DiscoverDir walks up from start looking for a .opsched directory. The walk
// stops at the first directory containing .git or at the filesystem root;
// when nothing is found start/.opsched is returned.
func DiscoverDir(start string) string {
	dir := start
	for {
		candidate := filepath.Join(dir, DirName)
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate
		}

		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			break
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return filepath.Join(start, DirName)
}

// ConfigFile returns the default path to config.yaml
func (pd *PathDefaults) ConfigFile() string {
	return filepath.Join(pd.Dir, "config.yaml")
}

// ItemsFile returns the default work item file, preferring items.yaml over items.json
func (pd *PathDefaults) ItemsFile() string {
	yamlPath := filepath.Join(pd.Dir, "items.yaml")
	if _, err := os.Stat(yamlPath); err == nil {
		return yamlPath
	}
	jsonPath := filepath.Join(pd.Dir, "items.json")
	if _, err := os.Stat(jsonPath); err == nil {
		return jsonPath
	}
	return yamlPath
}

// ReportDir returns the default directory for run reports
func (pd *PathDefaults) ReportDir() string {
	return filepath.Join(pd.Dir, "runs")
}
