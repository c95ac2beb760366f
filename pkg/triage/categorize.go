package triage

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// Categorize assigns the triage bucket and priority tier from the scores
// and the raw text. The checks run in a fixed order and the first match
// wins: spam beats everything, urgent beats follow-up, follow-up beats
// admin. An email matching both "urgent" and "follow up" is urgent.
func Categorize(urgencyScore, businessRelevance int, subject, body string, keywords []string) (Category, Priority) {
	text := subject + " " + body

	if hasAnyTerm(text, spamLexicon) {
		return CategorySpam, PriorityLow
	}

	if urgencyScore >= urgentCategoryThreshold || hasUrgentPhrase(keywords, text) {
		return CategoryUrgent, PriorityUrgent
	}

	if hasAnyTerm(text, followUpLexicon) {
		if urgencyScore >= 50 {
			return CategoryFollowUp, PriorityHigh
		}
		return CategoryFollowUp, PriorityMedium
	}

	if hasAnyTerm(text, adminLexicon) {
		if urgencyScore < 10 {
			return CategoryAdmin, PriorityLow
		}
		return CategoryAdmin, PriorityMedium
	}

	if businessRelevance >= highRelevanceThreshold {
		return CategoryStandard, PriorityHigh
	}
	if businessRelevance >= mediumRelevanceThreshold {
		return CategoryStandard, PriorityMedium
	}
	return CategoryStandard, PriorityLow
}

// RecommendActions derives the action-required flag and the suggested
// next steps from the assigned category. Each category has a small fixed
// menu. An explicit action-request keyword ("please confirm", "response
// required") forces the flag on for every category except spam, where
// actionRequired=false is the stronger invariant.
func RecommendActions(category Category, priority Priority, keywords []string) (bool, []string) {
	var actionRequired bool
	var actions []string

	switch category {
	case CategoryUrgent:
		actionRequired = true
		actions = []string{
			"Respond immediately",
			"Call the customer if there is no reply within the hour",
		}
	case CategoryFollowUp:
		actionRequired = true
		actions = []string{
			"Check previous correspondence",
			"Respond with update",
		}
	case CategoryAdmin:
		actionRequired = keywordInLexicon(keywords, deadlineLexicon)
		actions = []string{"File for reference"}
		if actionRequired {
			actions = append(actions, "Check the due date against your calendar")
		}
	case CategorySpam:
		return false, []string{"Mark as spam"}
	default:
		if priority == PriorityHigh {
			actionRequired = true
			actions = []string{
				"Review and respond within 24 hours",
				"Add to the job pipeline if quoting",
			}
		} else {
			actions = []string{"Review when time permits"}
		}
	}

	if keywordInLexicon(keywords, actionRequestLexicon) {
		actionRequired = true
	}

	return actionRequired, actions
}

func keywordInLexicon(keywords, lexicon []string) bool {
	set := lo.SliceToMap(lexicon, func(term string) (string, struct{}) {
		return term, struct{}{}
	})
	for _, k := range keywords {
		if _, ok := set[k]; ok {
			return true
		}
	}
	return false
}

// buildReasoning composes the short human-readable explanation stored on
// an analysis. The "urgent keywords" wording is relied on by downstream
// consumers whenever urgent terms matched, so it must not be rephrased.
func buildReasoning(category Category, urgencyScore, businessRelevance int, subject, body string) string {
	text := subject + " " + body
	urgentMatches := MatchKeywords(text, urgentLexicon)

	parts := make([]string, 0, 3)
	if len(urgentMatches) > 0 {
		parts = append(parts, fmt.Sprintf("Matched %d urgent keywords (%s)",
			len(urgentMatches), strings.Join(urgentMatches, ", ")))
	}

	switch category {
	case CategorySpam:
		parts = append(parts, "spam indicators found in the text")
	case CategoryUrgent:
		parts = append(parts, fmt.Sprintf("urgency score %d is at or above the urgent threshold", urgencyScore))
	case CategoryFollowUp:
		parts = append(parts, "sender is chasing a previous conversation")
	case CategoryAdmin:
		parts = append(parts, "administrative paperwork with no urgency signals")
	default:
		parts = append(parts, fmt.Sprintf("business relevance %d from sender domain and keyword matches", businessRelevance))
	}

	return strings.Join(parts, "; ")
}
