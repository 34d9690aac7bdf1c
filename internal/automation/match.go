package automation

import (
	"strings"

	"github.com/engagemate-api/internal/models"
)

// FindMatchingRule returns the first active rule whose keyword occurs in text.
// Matching is case-insensitive substring containment, so a short keyword can
// match inside a longer word. Rules with an empty keyword never match.
func FindMatchingRule(rules []models.AutomationRule, text string) (models.AutomationRule, bool) {
	lower := strings.ToLower(text)
	for _, rule := range rules {
		if !rule.IsActive || rule.Keyword == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(rule.Keyword)) {
			return rule, true
		}
	}
	return models.AutomationRule{}, false
}

// FindAsset looks up an asset by id
func FindAsset(assets []models.Asset, id string) (models.Asset, bool) {
	for _, asset := range assets {
		if asset.ID == id {
			return asset, true
		}
	}
	return models.Asset{}, false
}
