package classify

import (
	"fmt"
)

// Table is an immutable, validated rule table. It is constructed once by
// Load and passed explicitly into every classification call; there is no
// process-wide registry, so tables for several grammars or configurations
// coexist freely.
type Table struct {
	groups  []compiledGroup
	byName  map[string]int
	ruleSum int
}

// compiledGroup carries one feature group with its per-node-type indexes,
// built once at load so classification never rescans the full rule list.
type compiledGroup struct {
	name    string
	rules   []*Rule
	byType  map[string][]int
	byToken map[string][]int
}

// Load validates and compiles an ordered sequence of feature groups into a
// Table. The group order given here is the activation order. Load fails with
// a ConfigError on duplicate group names, invalid patterns, categories
// outside the closed enumeration, and ambiguous same-group rule pairs
// (identical pattern, different category, no override and no priority
// difference).
func Load(groups ...Group) (*Table, error) {
	if len(groups) == 0 {
		return nil, &ConfigError{Reason: errNoGroups.Error()}
	}

	table := &Table{
		groups: make([]compiledGroup, 0, len(groups)),
		byName: make(map[string]int, len(groups)),
	}

	for _, group := range groups {
		if group.Name == "" {
			return nil, &ConfigError{Reason: errEmptyGroupName.Error()}
		}

		if _, exists := table.byName[group.Name]; exists {
			return nil, &ConfigError{Group: group.Name, Reason: "duplicate group name"}
		}

		compiled, err := compileGroup(group)
		if err != nil {
			return nil, err
		}

		table.byName[group.Name] = len(table.groups)
		table.groups = append(table.groups, compiled)
		table.ruleSum += len(compiled.rules)
	}

	return table, nil
}

// compileGroup validates one group's rules and builds its indexes.
func compileGroup(group Group) (compiledGroup, error) {
	compiled := compiledGroup{
		name:    group.Name,
		rules:   make([]*Rule, 0, len(group.Rules)),
		byType:  make(map[string][]int, len(group.Rules)),
		byToken: make(map[string][]int),
	}

	seen := make(map[string]int, len(group.Rules))

	for idx := range group.Rules {
		rule := group.Rules[idx]

		if err := validateRule(group.Name, rule); err != nil {
			return compiledGroup{}, err
		}

		if priorIdx, dup := seen[rule.Pattern.key()]; dup {
			if err := checkAmbiguity(group.Name, compiled.rules[priorIdx], &rule); err != nil {
				return compiledGroup{}, err
			}
		} else {
			seen[rule.Pattern.key()] = idx
		}

		indexRule(&compiled, &rule, idx)
		compiled.rules = append(compiled.rules, &rule)
	}

	return compiled, nil
}

// validateRule checks one rule's pattern and category.
func validateRule(groupName string, rule Rule) error {
	if err := rule.Pattern.Validate(); err != nil {
		return &ConfigError{Group: groupName, Rule: rule.Name, Reason: err.Error()}
	}

	if !rule.Category.Known() {
		return &ConfigError{
			Group:  groupName,
			Rule:   rule.Name,
			Reason: fmt.Sprintf("unknown category %q", rule.Category),
		}
	}

	return nil
}

// checkAmbiguity rejects two same-group rules that target an identical
// pattern with different categories and no way to pick a winner.
func checkAmbiguity(groupName string, prior, next *Rule) error {
	if prior.Category == next.Category {
		return nil
	}

	if prior.Override || next.Override {
		return nil
	}

	if prior.Priority != next.Priority {
		return nil
	}

	return &ConfigError{
		Group: groupName,
		Rule:  next.Name,
		Reason: fmt.Sprintf("ambiguous with rule %q: identical pattern, categories %q vs %q",
			prior.Name, prior.Category, next.Category),
	}
}

// indexRule files the rule under its node type, or under each literal for
// typeless token-set rules.
func indexRule(compiled *compiledGroup, rule *Rule, idx int) {
	if rule.Pattern.Type != "" {
		compiled.byType[rule.Pattern.Type] = append(compiled.byType[rule.Pattern.Type], idx)

		return
	}

	for _, token := range rule.Pattern.Tokens {
		compiled.byToken[token] = append(compiled.byToken[token], idx)
	}
}

// Groups returns the group names in activation order.
func (table *Table) Groups() []string {
	names := make([]string, len(table.groups))
	for idx := range table.groups {
		names[idx] = table.groups[idx].name
	}

	return names
}

// Len returns the total number of rules across all groups.
func (table *Table) Len() int {
	return table.ruleSum
}

// RulesFor returns the rules of the active groups concatenated in the
// groups' declared activation order.
func (table *Table) RulesFor(active Activation) []*Rule {
	out := make([]*Rule, 0, table.ruleSum)

	for idx := range table.groups {
		if !active.Has(table.groups[idx].name) {
			continue
		}

		out = append(out, table.groups[idx].rules...)
	}

	return out
}

// Activation is a validated set of active feature groups for one table.
// The zero value activates nothing.
type Activation struct {
	members map[string]struct{}
}

// Has reports whether the named group is active.
func (activation Activation) Has(name string) bool {
	_, ok := activation.members[name]

	return ok
}

// names returns the active group names in the table's activation order.
func (activation Activation) names(table *Table) []string {
	var out []string

	for idx := range table.groups {
		if activation.Has(table.groups[idx].name) {
			out = append(out, table.groups[idx].name)
		}
	}

	return out
}

// Activate validates the requested group names against the table and returns
// a new Activation. An unknown name fails with a ConfigError and no partial
// state: any previously held Activation value is untouched.
func (table *Table) Activate(names ...string) (Activation, error) {
	members := make(map[string]struct{}, len(names))

	for _, name := range names {
		if _, known := table.byName[name]; !known {
			return Activation{}, &ConfigError{Group: name, Reason: "unknown feature group"}
		}

		members[name] = struct{}{}
	}

	return Activation{members: members}, nil
}

// ActivateAll returns an Activation covering every group in the table.
func (table *Table) ActivateAll() Activation {
	members := make(map[string]struct{}, len(table.groups))
	for idx := range table.groups {
		members[table.groups[idx].name] = struct{}{}
	}

	return Activation{members: members}
}

// ActiveNames returns the active group names in activation order.
func (table *Table) ActiveNames(activation Activation) []string {
	return activation.names(table)
}
