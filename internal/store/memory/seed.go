package memory

import (
	"fmt"
	"os"

	"github.com/NomadCrew/feedback-desk/types"
	"gopkg.in/yaml.v3"
)

// seedFile is the on-disk layout of a seed file:
//
//	feedback:
//	  - id: 1
//	    name: John Doe
//	    ...
type seedFile struct {
	Feedback []*types.Feedback `yaml:"feedback"`
}

// LoadSeed reads feedback entries from a YAML seed file. Entries without a
// status start as new and entries without a category fall back to general.
func LoadSeed(path string) ([]*types.Feedback, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return ParseSeed(data)
}

// ParseSeed decodes seed file contents.
func ParseSeed(data []byte) ([]*types.Feedback, error) {
	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}

	seen := make(map[string]struct{}, len(f.Feedback))
	for i, fb := range f.Feedback {
		if fb == nil {
			return nil, fmt.Errorf("seed entry %d is empty", i)
		}
		if fb.ID != "" {
			if _, dup := seen[fb.ID]; dup {
				return nil, fmt.Errorf("seed entry %d: duplicate id %q", i, fb.ID)
			}
			seen[fb.ID] = struct{}{}
		}
		if fb.Status == "" {
			fb.Status = types.FeedbackStatusNew
		}
		if fb.Category == "" {
			fb.Category = types.FeedbackCategoryGeneral
		}
	}
	return f.Feedback, nil
}
