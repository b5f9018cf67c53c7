package importer

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/alexanderramin/ambitions/internal/domain"
)

// ImportSchema is the top-level structure of a people-and-goals import file.
// Refs are local to the file; they never become ids.
type ImportSchema struct {
	People []PersonImport `json:"people,omitempty" yaml:"people,omitempty"`
	Goals  []GoalImport   `json:"goals" yaml:"goals"`
}

// PersonImport defines a directory entry. A manager is named either by an
// earlier ref in the same file or by the email of someone already in the
// directory.
type PersonImport struct {
	Ref          string `json:"ref" yaml:"ref"`
	Email        string `json:"email" yaml:"email"`
	Name         string `json:"name" yaml:"name"`
	AvatarURL    string `json:"avatar_url,omitempty" yaml:"avatar_url,omitempty"`
	ManagerRef   string `json:"manager_ref,omitempty" yaml:"manager_ref,omitempty"`
	ManagerEmail string `json:"manager_email,omitempty" yaml:"manager_email,omitempty"`
}

// GoalImport defines a goal. The parent is either an earlier goal ref or the
// id of a goal already stored.
type GoalImport struct {
	Ref          string               `json:"ref" yaml:"ref"`
	ParentRef    string               `json:"parent_ref,omitempty" yaml:"parent_ref,omitempty"`
	ParentID     string               `json:"parent_id,omitempty" yaml:"parent_id,omitempty"`
	OwnerEmail   string               `json:"owner_email" yaml:"owner_email"`
	Title        string               `json:"title" yaml:"title"`
	Description  string               `json:"description,omitempty" yaml:"description,omitempty"`
	GoalType     string               `json:"goal_type" yaml:"goal_type"`
	Status       string               `json:"status,omitempty" yaml:"status,omitempty"`
	Progress     int                  `json:"progress,omitempty" yaml:"progress,omitempty"`
	Achievements []domain.Achievement `json:"achievements,omitempty" yaml:"achievements,omitempty"`
	Actions      []domain.Action      `json:"actions,omitempty" yaml:"actions,omitempty"`
}

// LoadImportSchema reads an import file. .yaml and .yml files are parsed as
// YAML, anything else as JSON.
func LoadImportSchema(path string) (*ImportSchema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseImportSchema(data, filepath.Ext(path))
}

// ParseImportSchema decodes data in the format named by ext.
func ParseImportSchema(data []byte, ext string) (*ImportSchema, error) {
	var schema ImportSchema
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &schema); err != nil {
			return nil, fmt.Errorf("parsing import file: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &schema); err != nil {
			return nil, fmt.Errorf("parsing import file: %w", err)
		}
	}
	return &schema, nil
}
