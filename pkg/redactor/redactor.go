package redactor

import (
	"sort"

	"github.com/soundprediction/veridoc/pkg/policy"
	"github.com/soundprediction/veridoc/pkg/types"
)

// Redactor masks sensitive values according to the per-role masking policy.
type Redactor struct {
	registry *policy.Registry
}

// New creates a Redactor over the given pattern registry.
func New(registry *policy.Registry) *Redactor {
	return &Redactor{registry: registry}
}

// span is a claimed byte range [start, end) and the token that replaces it.
type span struct {
	start int
	end   int
	token string
}

// Mask replaces every sensitive value the role's masking policy covers with
// the pattern's mask token and reports which labels actually matched. Labels
// outside the role's policy are left untouched. Masking already-masked
// content is a no-op: mask tokens never match any registered pattern.
func (r *Redactor) Mask(content string, role types.CanonicalRole) (string, []string) {
	if content == "" {
		return content, nil
	}

	patterns := r.registry.PatternsFor(role)
	if len(patterns) == 0 {
		return content, nil
	}

	var (
		claimed []span
		labels  []string
		seen    = make(map[string]bool)
	)
	for _, p := range patterns {
		matched := false
		for _, m := range p.Matcher.FindAllStringIndex(content, -1) {
			if overlaps(claimed, m[0], m[1]) {
				continue
			}
			claimed = append(claimed, span{start: m[0], end: m[1], token: p.MaskTemplate})
			matched = true
		}
		if matched && !seen[p.Label] {
			seen[p.Label] = true
			labels = append(labels, p.Label)
		}
	}
	if len(claimed) == 0 {
		return content, nil
	}

	sort.Slice(claimed, func(i, j int) bool { return claimed[i].start < claimed[j].start })

	out := make([]byte, 0, len(content))
	prev := 0
	for _, s := range claimed {
		out = append(out, content[prev:s.start]...)
		out = append(out, s.token...)
		prev = s.end
	}
	out = append(out, content[prev:]...)
	return string(out), labels
}

func overlaps(claimed []span, start, end int) bool {
	for _, s := range claimed {
		if start < s.end && end > s.start {
			return true
		}
	}
	return false
}
