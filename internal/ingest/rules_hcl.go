package ingest

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// HCL form of the rule config. Equivalent to the YAML document:
//
//	pattern { match = "*.py"  tag = "code" }
//	forced  { path = "docs/notes.md"  tag = "important" }
type hclRuleConfig struct {
	Patterns []hclPattern `hcl:"pattern,block"`
	Forced   []hclForced  `hcl:"forced,block"`
	Remain   hcl.Body     `hcl:",remain"`
}

type hclPattern struct {
	Match *string `hcl:"match,optional"`
	Tag   *string `hcl:"tag,optional"`
}

type hclForced struct {
	Path *string `hcl:"path,optional"`
	Tag  *string `hcl:"tag,optional"`
}

func parseRulesHCL(filename string, data []byte) (*RuleSet, error) {
	file, diags := hclparse.NewParser().ParseHCL(data, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("parse rules %s: %w", filename, diags)
	}
	var cfg hclRuleConfig
	if diags := gohcl.DecodeBody(file.Body, nil, &cfg); diags.HasErrors() {
		return nil, fmt.Errorf("decode rules %s: %w", filename, diags)
	}

	// Incomplete blocks are skipped, same as the YAML loader.
	var patterns []Rule
	for _, p := range cfg.Patterns {
		if p.Match == nil || p.Tag == nil {
			continue
		}
		patterns = append(patterns, Rule{Match: *p.Match, Tag: *p.Tag})
	}
	var forced []ForcedRule
	for _, f := range cfg.Forced {
		if f.Path == nil || f.Tag == nil {
			continue
		}
		forced = append(forced, ForcedRule{Path: *f.Path, Tag: *f.Tag})
	}
	return NewRuleSet(patterns, forced), nil
}
