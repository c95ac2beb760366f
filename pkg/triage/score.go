package triage

import (
	"strings"
	"time"
)

// Scoring increments. Calibrated so that a single urgent phrase plus a
// couple of supporting keywords lands a fresh email at or above the
// urgent-category threshold of 70.
const (
	urgentFirstMatchBonus = 45
	urgentExtraMatchBonus = 15
	urgentExtraMatchCap   = 30
	timePressureBonus     = 12

	relevanceBase            = 30
	businessDomainBonus      = 20
	australianDomainBonus    = 10
	businessKeywordBonus     = 8
	businessKeywordBonusCap  = 40
	urgentCategoryThreshold  = 70
	highRelevanceThreshold   = 60
	mediumRelevanceThreshold = 40
)

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// ScoreUrgency rates how time-critical an email is on a 0-100 scale from
// its text and age. Empty text always scores 0, and a more recent email
// never scores lower than an older one with the same content.
func ScoreUrgency(subject, body string, receivedAt, now time.Time) int {
	if strings.TrimSpace(subject) == "" && strings.TrimSpace(body) == "" {
		return 0
	}

	text := subject + " " + body
	score := 0

	urgentMatches := MatchKeywords(text, urgentLexicon)
	if len(urgentMatches) > 0 {
		score += urgentFirstMatchBonus
		extra := (len(urgentMatches) - 1) * urgentExtraMatchBonus
		if extra > urgentExtraMatchCap {
			extra = urgentExtraMatchCap
		}
		score += extra
	}

	if hasAnyTerm(text, timePressureLexicon) {
		score += timePressureBonus
	}

	score += recencyBonus(receivedAt, now)

	return clampScore(score)
}

// recencyBonus is a step function of email age, non-increasing as the
// email gets older. A zero receivedAt means the timestamp was missing or
// unparseable; such emails get no bonus rather than an error.
func recencyBonus(receivedAt, now time.Time) int {
	if receivedAt.IsZero() {
		return 0
	}
	age := now.Sub(receivedAt)
	switch {
	case age <= 15*time.Minute:
		return 15
	case age <= time.Hour:
		return 10
	case age <= 4*time.Hour:
		return 6
	case age <= 24*time.Hour:
		return 3
	default:
		return 0
	}
}

// ScoreBusinessRelevance rates how work-related an email is on a 0-100
// scale. Every email starts at the base of 30; sender domain heuristics
// and business keyword matches raise it from there.
func ScoreBusinessRelevance(from, subject, body string) int {
	score := relevanceBase

	domain := senderDomain(from)
	if domain != "" && !isConsumerDomain(domain) {
		score += businessDomainBonus
		if isAustralianBusinessDomain(domain) {
			score += australianDomainBonus
		}
	}

	text := subject + " " + body
	matched := len(MatchKeywords(text, businessLexicon)) + len(MatchKeywords(text, tradeLexicon))
	keywordScore := matched * businessKeywordBonus
	if keywordScore > businessKeywordBonusCap {
		keywordScore = businessKeywordBonusCap
	}
	score += keywordScore

	return clampScore(score)
}

var consumerDomains = map[string]struct{}{
	"gmail.com":      {},
	"googlemail.com": {},
	"yahoo.com":      {},
	"yahoo.com.au":   {},
	"hotmail.com":    {},
	"outlook.com":    {},
	"live.com":       {},
	"icloud.com":     {},
	"bigpond.com":    {},
	"aol.com":        {},
	"protonmail.com": {},
}

// senderDomain extracts the domain from a free-text From header, which
// may be a bare address or "Name <email>". Malformed input yields "".
func senderDomain(from string) string {
	addr := from
	if start := strings.LastIndex(from, "<"); start != -1 {
		if end := strings.Index(from[start:], ">"); end != -1 {
			addr = from[start+1 : start+end]
		}
	}
	at := strings.LastIndex(addr, "@")
	if at == -1 || at == len(addr)-1 {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(addr[at+1:]))
}

func isConsumerDomain(domain string) bool {
	_, ok := consumerDomains[domain]
	return ok
}

func isAustralianBusinessDomain(domain string) bool {
	for _, suffix := range []string{".com.au", ".gov.au", ".edu.au", ".org.au", ".net.au"} {
		if strings.HasSuffix(domain, suffix) {
			return true
		}
	}
	return false
}

// ScoreSentiment derives an optional tone tag from the sentiment
// lexicons. It returns nil when the text carries no clear signal.
func ScoreSentiment(subject, body string) *string {
	text := subject + " " + body
	positive := len(MatchKeywords(text, positiveLexicon))
	negative := len(MatchKeywords(text, negativeLexicon))

	var tag string
	switch {
	case positive == 0 && negative == 0:
		return nil
	case negative > positive:
		tag = "negative"
	case positive > negative:
		tag = "positive"
	default:
		tag = "neutral"
	}
	return &tag
}
