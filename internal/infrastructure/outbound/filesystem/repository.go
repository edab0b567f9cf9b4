package filesystem

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/sophialabs/stubwire/internal/domain/endpoint"
)

var _ endpoint.SeedRepository = (*SeedFileRepository)(nil)

// SeedFileRepository loads endpoint definitions from YAML and JSON files in
// a directory tree. Files are read-only seeds: authoring never writes back.
type SeedFileRepository struct {
	rootDir string
}

// NewSeedFileRepository creates a repository rooted at rootDir.
func NewSeedFileRepository(rootDir string) (*SeedFileRepository, error) {
	absRoot, err := filepath.Abs(rootDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve seed root directory: %w", err)
	}
	return &SeedFileRepository{rootDir: absRoot}, nil
}

// LoadAll walks the root directory for .yaml/.yml/.json files and returns
// the parsed definitions in deterministic (sorted path, in-file) order, so
// first-match routing is stable across reloads.
func (r *SeedFileRepository) LoadAll(_ context.Context) ([]*endpoint.Definition, error) {
	var files []string
	err := filepath.WalkDir(r.rootDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml", ".json":
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk seed directory: %w", err)
	}
	sort.Strings(files)

	var defs []*endpoint.Definition
	for _, path := range files {
		loaded, err := r.loadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
		defs = append(defs, loaded...)
	}
	return defs, nil
}

func (r *SeedFileRepository) loadFile(path string) ([]*endpoint.Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var seeds []seedDefinition
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		seeds, err = decodeJSONSeeds(data)
	} else {
		seeds, err = decodeYAMLSeeds(data)
	}
	if err != nil {
		return nil, err
	}

	defs := make([]*endpoint.Definition, 0, len(seeds))
	for i := range seeds {
		defs = append(defs, toDefinition(&seeds[i]))
	}
	return defs, nil
}

// decodeYAMLSeeds accepts a single definition document or a sequence.
func decodeYAMLSeeds(data []byte) ([]seedDefinition, error) {
	var list []seedDefinition
	if err := yaml.Unmarshal(data, &list); err == nil {
		return list, nil
	}

	var single seedDefinition
	if err := yaml.Unmarshal(data, &single); err != nil {
		return nil, fmt.Errorf("failed to parse YAML seed: %w", err)
	}
	return []seedDefinition{single}, nil
}

// decodeJSONSeeds accepts a single definition object or an array.
func decodeJSONSeeds(data []byte) ([]seedDefinition, error) {
	var list []seedDefinition
	if err := json.Unmarshal(data, &list); err == nil {
		return list, nil
	}

	var single seedDefinition
	if err := json.Unmarshal(data, &single); err != nil {
		return nil, fmt.Errorf("failed to parse JSON seed: %w", err)
	}
	return []seedDefinition{single}, nil
}

func toDefinition(s *seedDefinition) *endpoint.Definition {
	def := &endpoint.Definition{
		PathPattern:     s.EndpointID,
		Method:          s.Method,
		DefaultStatus:   s.StatusCode,
		DefaultDelayMs:  s.Delay,
		DefaultTemplate: s.ResponseTemplate,
		Engine:          s.Engine,
		Headers:         s.Headers,
		ContentType:     s.ContentType,
	}
	for _, sc := range s.Scenarios {
		def.Scenarios = append(def.Scenarios, endpoint.Scenario{
			Name:      sc.Name,
			Condition: sc.Condition,
			Status:    sc.StatusCode,
			DelayMs:   sc.Delay,
			Template:  sc.ResponseTemplate,
		})
	}
	if s.Policy != nil && s.Policy.RateLimit != nil {
		def.Policy = &endpoint.Policy{
			RateLimit: &endpoint.RateLimit{
				Rate:  s.Policy.RateLimit.Rate,
				Burst: s.Policy.RateLimit.Burst,
				Key:   s.Policy.RateLimit.Key,
			},
		}
	}
	return def
}
