package triage

import (
	"regexp"
	"sort"
	"strings"
)

// Lexicons are static lower-case term lists matched case-insensitively
// against subject + " " + body. Matching is word-boundary aware so short
// entries like "bas" or "ato" do not fire inside "database" or "operator".

var urgentLexicon = []string{
	"emergency situation",
	"gas leak",
	"burst pipe",
	"power outage",
	"electrical fault",
	"no hot water",
	"safety hazard",
	"as soon as possible",
	"right away",
	"straight away",
	"response required",
	"by 5 pm",
	"emergency",
	"urgent",
	"asap",
	"critical",
	"immediately",
	"today",
	"flooding",
}

var businessLexicon = []string{
	"purchase order",
	"site visit",
	"progress claim",
	"invoice",
	"payment",
	"quote",
	"quotation",
	"estimate",
	"contract",
	"compliance",
	"inspection",
	"permit",
	"license",
	"licence",
	"tender",
	"variation",
	"remittance",
	"deposit",
	"booking",
}

var tradeLexicon = []string{
	"hot water system",
	"work order",
	"job site",
	"switchboard",
	"scaffolding",
	"plumbing",
	"plumber",
	"electrician",
	"electrical",
	"carpentry",
	"renovation",
	"maintenance",
	"installation",
	"repair",
	"roofing",
	"tiling",
	"concreting",
	"apprentice",
}

var spamLexicon = []string{
	"congratulations you won",
	"click here now",
	"limited time offer",
	"claim your prize",
	"unclaimed inheritance",
	"free money",
	"act now",
	"you have won",
	"you've won",
	"congratulations",
	"winner",
	"lottery",
	"hot singles",
}

var followUpLexicon = []string{
	"following up",
	"follow up",
	"follow-up",
	"checking in",
	"any update",
	"touching base",
	"haven't heard back",
	"circling back",
	"gentle reminder",
	"reminder",
}

var adminLexicon = []string{
	"bas statement",
	"tax",
	"bas",
	"ato",
	"statement",
	"notice",
	"renewal",
	"registration",
	"superannuation",
	"insurance",
	"payslip",
}

var actionRequestLexicon = []string{
	"please confirm",
	"response required",
	"let me know by",
	"please advise",
	"rsvp",
}

var deadlineLexicon = []string{
	"final notice",
	"due date",
	"cut-off",
	"overdue",
	"deadline",
	"due",
}

var timePressureLexicon = []string{
	"this morning",
	"this afternoon",
	"this arvo",
	"end of day",
	"right away",
	"straight away",
	"today",
	"tonight",
	"asap",
	"immediately",
	"by 5 pm",
	"eod",
}

var positiveLexicon = []string{
	"thank you",
	"thanks",
	"appreciate",
	"well done",
	"great job",
	"fantastic",
	"happy with",
	"legend",
}

var negativeLexicon = []string{
	"complaint",
	"not happy",
	"unhappy",
	"disappointed",
	"frustrated",
	"unacceptable",
	"poor quality",
	"still waiting",
	"terrible",
}

// keywordLexicons lists every lexicon whose matches are reported on an
// analysis. Time-pressure and sentiment terms influence scores but are not
// reported on their own.
var keywordLexicons = [][]string{
	urgentLexicon,
	businessLexicon,
	tradeLexicon,
	spamLexicon,
	followUpLexicon,
	adminLexicon,
	actionRequestLexicon,
	deadlineLexicon,
}

var (
	termPatterns  = map[string]*regexp.Regexp{}
	urgentTermSet = map[string]struct{}{}
)

func init() {
	lexicons := append([][]string{timePressureLexicon, positiveLexicon, negativeLexicon}, keywordLexicons...)
	for _, list := range lexicons {
		for _, term := range list {
			if _, ok := termPatterns[term]; ok {
				continue
			}
			termPatterns[term] = regexp.MustCompile(`\b` + regexp.QuoteMeta(term) + `\b`)
		}
	}
	for _, term := range urgentLexicon {
		urgentTermSet[term] = struct{}{}
	}
}

type keywordMatch struct {
	term  string
	index int
}

func findMatches(text string, list []string) []keywordMatch {
	lower := strings.ToLower(text)
	matches := make([]keywordMatch, 0, 4)
	for _, term := range list {
		loc := termPatterns[term].FindStringIndex(lower)
		if loc == nil {
			continue
		}
		matches = append(matches, keywordMatch{term: term, index: loc[0]})
	}
	sortByOccurrence(matches)
	return matches
}

// sortByOccurrence orders matches by first appearance in the text; matches
// starting at the same offset are ordered most specific first.
func sortByOccurrence(matches []keywordMatch) {
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].index != matches[j].index {
			return matches[i].index < matches[j].index
		}
		return len(matches[i].term) > len(matches[j].term)
	})
}

// MatchKeywords reports which lexicon entries appear in text, in order of
// first occurrence, in the lexicon's own casing.
func MatchKeywords(text string, list []string) []string {
	matches := findMatches(text, list)
	terms := make([]string, 0, len(matches))
	for _, m := range matches {
		terms = append(terms, m.term)
	}
	return terms
}

const maxKeywords = 10

// CollectKeywords merges the matches from every reported lexicon into the
// keyword list stored on an analysis: de-duplicated, ordered by first
// occurrence, and capped at maxKeywords keeping the most specific terms.
func CollectKeywords(subject, body string) []string {
	text := subject + " " + body

	all := make([]keywordMatch, 0, 8)
	seen := make(map[string]struct{})
	for _, list := range keywordLexicons {
		for _, m := range findMatches(text, list) {
			if _, ok := seen[m.term]; ok {
				continue
			}
			seen[m.term] = struct{}{}
			all = append(all, m)
		}
	}

	if len(all) > maxKeywords {
		sort.SliceStable(all, func(i, j int) bool {
			return len(all[i].term) > len(all[j].term)
		})
		all = all[:maxKeywords]
	}
	sortByOccurrence(all)

	terms := make([]string, 0, len(all))
	for _, m := range all {
		terms = append(terms, m.term)
	}
	return terms
}

func hasAnyTerm(text string, list []string) bool {
	lower := strings.ToLower(text)
	for _, term := range list {
		if termPatterns[term].MatchString(lower) {
			return true
		}
	}
	return false
}

// hasUrgentPhrase reports whether a multi-word urgent entry was matched.
// Single urgent words raise the score, but only a phrase forces the urgent
// category on its own.
func hasUrgentPhrase(keywords []string, text string) bool {
	for _, k := range keywords {
		if _, ok := urgentTermSet[k]; ok && strings.Contains(k, " ") {
			return true
		}
	}
	lower := strings.ToLower(text)
	for _, term := range urgentLexicon {
		if strings.Contains(term, " ") && termPatterns[term].MatchString(lower) {
			return true
		}
	}
	return false
}
