// Package mapping resolves spreadsheet column headers to canonical schema
// field paths. A mapping document is a YAML file whose top-level "mappings"
// key holds an ordered mapping of entries, each carrying header-matching
// regular expressions and the dotted schema field they bind to. Document
// order is significant: when several entries could match a header, the one
// written first wins.
package mapping

import (
	"os"
	"regexp"
	"sync"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v2"

	"plxcli/internal/config"
	apperrors "plxcli/internal/errors"
)

// Entry is a single mapping rule as written in the YAML document.
type Entry struct {
	// Patterns are case-insensitive, unanchored regular expressions
	// matched against raw header text.
	Patterns []string `yaml:"patterns" validate:"required,min=1,dive,required"`
	// SchemaField is the dotted path the matched column binds to,
	// e.g. "price.value".
	SchemaField string `yaml:"schema_field" validate:"required"`
}

// rule is an Entry with its patterns compiled.
type rule struct {
	key      string
	patterns []*regexp.Regexp
	field    string
}

// Config is a parsed mapping document. The nil pointer behaves as "no
// mapping configured": every header resolves to itself.
type Config struct {
	// Source is the file the document was loaded from, empty for
	// documents parsed from memory.
	Source string

	rules []rule
}

var validate = validator.New()

// Parse parses a mapping document, preserving the order entries appear in.
// A document without a "mappings" key, or with an empty one, yields a nil
// Config without error: that is the "no mapping available" state.
func Parse(data []byte) (*Config, error) {
	var doc yaml.MapSlice
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, apperrors.NewMappingError("failed to parse mapping document", err)
	}

	var entries yaml.MapSlice
	for _, item := range doc {
		if key, ok := item.Key.(string); ok && key == "mappings" {
			if item.Value == nil {
				return nil, nil
			}
			entries, ok = item.Value.(yaml.MapSlice)
			if !ok {
				return nil, apperrors.NewMappingError("mappings key must hold a mapping of entries", nil)
			}
			break
		}
	}
	if len(entries) == 0 {
		return nil, nil
	}

	cfg := &Config{rules: make([]rule, 0, len(entries))}
	for _, item := range entries {
		key, ok := item.Key.(string)
		if !ok {
			return nil, apperrors.NewMappingError("mapping entry key must be a string", nil).
				WithContext("key", item.Key)
		}

		// Round-trip the item value through YAML to decode it into a
		// typed entry; MapSlice only gives us untyped nesting.
		raw, err := yaml.Marshal(item.Value)
		if err != nil {
			return nil, apperrors.NewMappingError("failed to read mapping entry", err).
				WithContext("entry", key)
		}
		var entry Entry
		if err := yaml.Unmarshal(raw, &entry); err != nil {
			return nil, apperrors.NewMappingError("mapping entry is not a rule", err).
				WithContext("entry", key)
		}
		if err := validate.Struct(entry); err != nil {
			return nil, apperrors.NewMappingError("invalid mapping entry", err).
				WithContext("entry", key)
		}

		r := rule{key: key, field: entry.SchemaField}
		for _, pattern := range entry.Patterns {
			re, err := regexp.Compile("(?i)" + pattern)
			if err != nil {
				return nil, apperrors.NewMappingError("invalid mapping pattern", err).
					WithContext("entry", key).
					WithContext("pattern", pattern)
			}
			r.patterns = append(r.patterns, re)
		}
		cfg.rules = append(cfg.rules, r)
	}

	return cfg, nil
}

// Load reads and parses a mapping document from disk. An empty path or a
// path that does not exist yields a nil Config without error: extraction
// then falls back to verbatim header names.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.NewMappingError("failed to read mapping file", err).
			WithContext("path", path)
	}

	cfg, err := Parse(data)
	if err != nil {
		if extractErr, ok := err.(*apperrors.ExtractError); ok {
			return nil, extractErr.WithContext("path", path)
		}
		return nil, err
	}
	if cfg != nil {
		cfg.Source = path
	}
	return cfg, nil
}

// Len reports how many rules the document defines.
func (c *Config) Len() int {
	if c == nil {
		return 0
	}
	return len(c.rules)
}

var defaultConfig = sync.OnceValues(func() (*Config, error) {
	paths, err := config.GetPaths()
	if err != nil {
		return nil, err
	}
	return Load(paths.ResolveMappingFile(""))
})

// Default returns the mapping document shipped next to the executable,
// loading it at most once. A missing document is not an error; callers get
// a nil Config and headers pass through verbatim.
func Default() (*Config, error) {
	return defaultConfig()
}
