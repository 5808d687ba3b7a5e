// Package mapping holds the in-memory view of a mapping used by resolution.
package mapping

import (
	"github.com/yungbote/parammap-backend/internal/domain"
	"github.com/yungbote/parammap-backend/internal/mapping/transform"
)

// RuleSet indexes the rules of one mapping by input parameter. When two
// rules share an input parameter the later one wins.
type RuleSet struct {
	rules []domain.Rule
	index map[string]int
}

func NewRuleSet(rules []domain.Rule) *RuleSet {
	rs := &RuleSet{
		rules: make([]domain.Rule, len(rules)),
		index: make(map[string]int, len(rules)),
	}
	copy(rs.rules, rules)
	for i, r := range rs.rules {
		rs.index[r.InputParam] = i
	}
	return rs
}

func (rs *RuleSet) Lookup(input string) (domain.Rule, bool) {
	if rs == nil {
		return domain.Rule{}, false
	}
	i, ok := rs.index[input]
	if !ok {
		return domain.Rule{}, false
	}
	return rs.rules[i], true
}

// Rules returns every rule in stored order.
func (rs *RuleSet) Rules() []domain.Rule {
	if rs == nil {
		return []domain.Rule{}
	}
	out := make([]domain.Rule, len(rs.rules))
	copy(out, rs.rules)
	return out
}

func (rs *RuleSet) Len() int {
	if rs == nil {
		return 0
	}
	return len(rs.rules)
}

// Evaluate maps each requested parameter through its rule, in caller order.
// Parameters without a rule are skipped. Later parameters overwrite earlier
// ones that target the same output. The second return lists the rules hit.
func (rs *RuleSet) Evaluate(parameters []string, values map[string]any) (map[string]any, []domain.Rule) {
	resolved := make(map[string]any, len(parameters))
	used := make([]domain.Rule, 0, len(parameters))
	for _, name := range parameters {
		rule, ok := rs.Lookup(name)
		if !ok {
			continue
		}
		used = append(used, rule)
		resolved[rule.OutputParam] = transform.Apply(rule.TransformSpec(), values[name])
	}
	return resolved, used
}
