package plan

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/opsched/internal/errors"
)

// ItemFile is the on-disk form of a work item submission
type ItemFile struct {
	Items []WorkItem `json:"items" yaml:"items"`
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// LoadItems reads work items from a JSON or YAML file (chosen by extension)
// and validates them
func LoadItems(path string) ([]WorkItem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewPlanNotFoundError(path)
		}
		return nil, errors.Wrap(errors.ErrCodeFileReadFailed, "read item file", err)
	}

	var file ItemFile
	if isYAML(path) {
		err = yaml.Unmarshal(data, &file)
	} else {
		err = json.Unmarshal(data, &file)
	}
	if err != nil {
		format := "JSON"
		if isYAML(path) {
			format = "YAML"
		}
		return nil, errors.NewFileUnmarshalError(path, format, err)
	}

	if err := ValidateItems(file.Items); err != nil {
		return nil, fmt.Errorf("validate items: %w", err)
	}

	return file.Items, nil
}

// SaveItems writes work items to a JSON or YAML file (chosen by extension)
func SaveItems(items []WorkItem, path string) error {
	file := ItemFile{Items: items}

	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(file)
	} else {
		data, err = json.MarshalIndent(file, "", "  ")
	}
	if err != nil {
		return errors.Wrap(errors.ErrCodeFileMarshal, "marshal items", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return errors.Wrap(errors.ErrCodeFileWriteFailed, "write item file", err)
	}

	return nil
}
