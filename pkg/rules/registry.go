package rules

import (
	"fmt"
	"maps"
	"sort"
	"sync"

	"github.com/aiseeq/paramprune/pkg/core"
)

// Registry holds all registered rules
type Registry struct {
	rules map[string]Rule
	mu    sync.RWMutex
}

var globalRegistry = NewRegistry()

// NewRegistry creates a new rule registry
func NewRegistry() *Registry {
	return &Registry{rules: make(map[string]Rule)}
}

// Register adds a rule to the registry
func (r *Registry) Register(rule Rule) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := rule.Name()
	if _, exists := r.rules[name]; exists {
		return fmt.Errorf("rule %q already registered", name)
	}
	r.rules[name] = rule
	return nil
}

// Get returns a rule by name
func (r *Registry) Get(name string) (Rule, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rule, ok := r.rules[name]
	return rule, ok
}

// All returns all registered rules sorted by category, then by name
func (r *Registry) All() []Rule {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rules := make([]Rule, 0, len(r.rules))
	for _, rule := range r.rules {
		rules = append(rules, rule)
	}
	sort.Slice(rules, func(i, j int) bool {
		if rules[i].Category() != rules[j].Category() {
			return rules[i].Category() < rules[j].Category()
		}
		return rules[i].Name() < rules[j].Name()
	})
	return rules
}

// GetEnabled returns rules that are enabled according to config, in the
// same order as All
func (r *Registry) GetEnabled(cfg *core.Config) []Rule {
	var enabled []Rule
	for _, rule := range r.All() {
		if cfg.IsRuleEnabled(rule.Category(), rule.Name()) {
			enabled = append(enabled, rule)
		}
	}
	return enabled
}

// ConfigureAll hands every rule its settings from cfg. Category settings
// apply to each rule of the category and rule settings override them key by
// key. A rule without settings is reset to its defaults.
func (r *Registry) ConfigureAll(cfg *core.Config) error {
	for _, rule := range r.All() {
		settings := make(map[string]any)
		maps.Copy(settings, cfg.Categories[rule.Category()].Settings)
		maps.Copy(settings, cfg.RuleSettings(rule.Category(), rule.Name()))

		if err := rule.Configure(settings); err != nil {
			return fmt.Errorf("categories.%s.rules.%s.settings: %w", rule.Category(), rule.Name(), err)
		}
	}
	return nil
}

// Register adds a rule to the global registry
func Register(rule Rule) error {
	return globalRegistry.Register(rule)
}

// Get returns a rule from the global registry
func Get(name string) (Rule, bool) {
	return globalRegistry.Get(name)
}

// All returns all rules from the global registry
func All() []Rule {
	return globalRegistry.All()
}

// GetEnabled returns enabled rules from the global registry
func GetEnabled(cfg *core.Config) []Rule {
	return globalRegistry.GetEnabled(cfg)
}

// ConfigureAll configures all rules in the global registry
func ConfigureAll(cfg *core.Config) error {
	return globalRegistry.ConfigureAll(cfg)
}

// GlobalRegistry returns the global registry instance
func GlobalRegistry() *Registry {
	return globalRegistry
}
