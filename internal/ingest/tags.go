package ingest

import (
	"sort"
	"strings"
)

// TagSet is a set of classification tags.
type TagSet map[string]struct{}

func (t TagSet) Add(tag string) { t[tag] = struct{}{} }

func (t TagSet) Has(tag string) bool {
	_, ok := t[tag]
	return ok
}

// Sorted returns the tags in lexical order, for display and wire payloads.
func (t TagSet) Sorted() []string {
	out := make([]string, 0, len(t))
	for tag := range t {
		out = append(out, tag)
	}
	sort.Strings(out)
	return out
}

// CollectTags evaluates the rule set against a file's relative path and
// returns the union of all matching tags. Pattern matching is
// case-insensitive; forced tags are looked up by the normalized path.
// An empty result is valid; not every file gets a tag.
func CollectTags(relPath string, rules *RuleSet) TagSet {
	tags := make(TagSet)
	lowered := strings.ToLower(relPath)
	for _, rule := range rules.Patterns {
		if matchGlob(strings.ToLower(rule.Match), lowered) {
			tags.Add(rule.Tag)
		}
	}
	for tag := range rules.Forced[NormalizeRelPath(relPath)] {
		tags.Add(tag)
	}
	return tags
}

// matchGlob reports whether the shell-style pattern matches name.
// Unlike path.Match, '*' crosses path separators: patterns apply to the
// whole relative path, not per segment. Supported syntax is '*', '?' and
// character classes ('[abc]', '[a-z]', '[!a-z]'). A malformed pattern
// never matches.
func matchGlob(pattern, name string) bool {
	p := []rune(pattern)
	s := []rune(name)

	pi, si := 0, 0
	star, mark := -1, 0
	for si < len(s) {
		if pi < len(p) {
			switch p[pi] {
			case '*':
				star, mark = pi, si
				pi++
				continue
			case '?':
				pi++
				si++
				continue
			case '[':
				if ok, width := matchClass(p[pi:], s[si]); ok {
					pi += width
					si++
					continue
				}
			default:
				if p[pi] == s[si] {
					pi++
					si++
					continue
				}
			}
		}
		// Mismatch: retry from the last '*', consuming one more rune.
		if star < 0 {
			return false
		}
		mark++
		si = mark
		pi = star + 1
	}
	for pi < len(p) && p[pi] == '*' {
		pi++
	}
	return pi == len(p)
}

// matchClass matches a single rune against a character class starting at
// p[0] == '['. Returns whether the rune matched and how many pattern runes
// the class spans. Only '!' negates; a leading '^' is an ordinary class
// member, as in fnmatch. An unterminated class matches nothing.
func matchClass(p []rune, c rune) (bool, int) {
	i := 1
	negate := false
	if i < len(p) && p[i] == '!' {
		negate = true
		i++
	}
	matched := false
	first := true
	for i < len(p) && (p[i] != ']' || first) {
		first = false
		lo := p[i]
		i++
		hi := lo
		if i+1 < len(p) && p[i] == '-' && p[i+1] != ']' {
			hi = p[i+1]
			i += 2
		}
		if lo <= c && c <= hi {
			matched = true
		}
	}
	if i >= len(p) {
		return false, 0
	}
	return matched != negate, i + 1
}
