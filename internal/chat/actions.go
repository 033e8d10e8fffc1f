package chat

import (
	"strings"

	"github.com/Dan9191/advisory-service/internal/models"
)

// ExtractActions returns the call-to-action buttons whose keywords appear in
// the message. Each rule yields at most one action, in rule order.
func ExtractActions(message string, rules []ActionRule) []models.Action {
	lower := strings.ToLower(message)
	var actions []models.Action
	seen := make(map[string]bool)
	for _, rule := range rules {
		if seen[rule.Path] {
			continue
		}
		for _, kw := range rule.Keywords {
			if kw != "" && strings.Contains(lower, strings.ToLower(kw)) {
				actions = append(actions, models.Action{Label: rule.Label, Path: rule.Path})
				seen[rule.Path] = true
				break
			}
		}
	}
	return actions
}
