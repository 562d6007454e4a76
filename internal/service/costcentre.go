package service

import (
	"strings"

	"github.com/andy/kihopunch/internal/config"
)

// CostCentreResolver picks the customer cost centre for a punch description
type CostCentreResolver struct {
	rules    []config.CostCentreRule
	fallback int64
}

// NewCostCentreResolver creates a resolver from the configured rules
func NewCostCentreResolver(rules []config.CostCentreRule, fallback int64) *CostCentreResolver {
	return &CostCentreResolver{rules: rules, fallback: fallback}
}

// Resolve returns the ID of the first rule matching description, or the
// default cost centre. Zero means nothing is configured.
func (r *CostCentreResolver) Resolve(description string) int64 {
	for _, rule := range r.rules {
		if strings.Contains(description, rule.Contains) {
			return rule.ID
		}
	}
	return r.fallback
}
