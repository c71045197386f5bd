package ingest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrNotFound is returned when a required file or directory is missing:
// the rule config, the data root, or a project description with no provider.
var ErrNotFound = errors.New("not found")

// Rule binds a glob pattern to a tag. Any file whose relative path matches
// the pattern gets the tag.
type Rule struct {
	Match string `yaml:"match"`
	Tag   string `yaml:"tag"`
}

// RuleSet holds the pattern rules plus forced path→tag overrides.
// Forced lookups are keyed by the normalized relative path (see
// NormalizeRelPath); multiple forced entries for the same path accumulate.
type RuleSet struct {
	Patterns []Rule
	Forced   map[string]TagSet
}

type ruleConfig struct {
	Patterns []Rule       `yaml:"patterns"`
	Forced   []ForcedRule `yaml:"forced"`
}

// ForcedRule binds one exact relative path to a tag.
type ForcedRule struct {
	Path string `yaml:"path"`
	Tag  string `yaml:"tag"`
}

// NewRuleSet builds a RuleSet from decoded config entries. Entries missing
// either field are skipped; pattern syntax is not validated, a malformed
// glob simply never matches.
func NewRuleSet(patterns []Rule, forced []ForcedRule) *RuleSet {
	rs := &RuleSet{Forced: make(map[string]TagSet)}
	for _, p := range patterns {
		if p.Match == "" || p.Tag == "" {
			continue
		}
		rs.Patterns = append(rs.Patterns, p)
	}
	for _, f := range forced {
		if f.Path == "" || f.Tag == "" {
			continue
		}
		key := NormalizeRelPath(f.Path)
		if rs.Forced[key] == nil {
			rs.Forced[key] = make(TagSet)
		}
		rs.Forced[key].Add(f.Tag)
	}
	return rs
}

// LoadRules reads a rule config file. YAML is the default format; files
// with an .hcl extension are parsed as HCL blocks (see rules_hcl.go).
// A missing file is reported as ErrNotFound.
func LoadRules(path string) (*RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: ingestion config %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("read rules %s: %w", path, err)
	}
	if filepath.Ext(path) == ".hcl" {
		return parseRulesHCL(path, data)
	}
	var cfg ruleConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse rules %s: %w", path, err)
	}
	return NewRuleSet(cfg.Patterns, cfg.Forced), nil
}

// NormalizeRelPath canonicalizes a relative path for rule lookups:
// backslashes become slashes, surrounding whitespace is trimmed, and the
// result is lower-cased. Idempotent.
func NormalizeRelPath(rel string) string {
	return strings.ToLower(strings.TrimSpace(strings.ReplaceAll(rel, "\\", "/")))
}
