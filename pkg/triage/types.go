package triage

import "time"

// Category is the primary triage bucket for an analyzed email.
type Category string

const (
	CategoryUrgent   Category = "urgent"
	CategoryStandard Category = "standard"
	CategoryFollowUp Category = "follow-up"
	CategoryAdmin    Category = "admin"
	CategorySpam     Category = "spam"
)

// Priority is the coarser tier derived from category and scores, used for
// sorting and display.
type Priority string

const (
	PriorityUrgent Priority = "urgent"
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

const (
	TaskStatusPending = "pending"
	TaskStatusDone    = "done"
)

// RawEmail is the inbound record handed to the analyzer. It is never
// persisted as-is; only the derived EmailAnalysis is stored.
type RawEmail struct {
	UserID      string    `json:"userId"`
	EmailID     string    `json:"emailId"`
	Subject     string    `json:"subject"`
	From        string    `json:"from"`
	Snippet     string    `json:"snippet"`
	BodyPreview string    `json:"bodyPreview,omitempty"`
	ReceivedAt  time.Time `json:"receivedAt"`
}

// EmailAnalysis is the persisted outcome of triaging one email. Scoring
// fields are immutable once created; only NotificationSent may change
// afterwards, and that flag is owned by the notification service.
type EmailAnalysis struct {
	ID                string    `json:"id"`
	EmailID           string    `json:"emailId"`
	UserID            string    `json:"userId"`
	Priority          Priority  `json:"priority"`
	Category          Category  `json:"category"`
	UrgencyScore      int       `json:"urgencyScore"`
	BusinessRelevance int       `json:"businessRelevance"`
	Sentiment         *string   `json:"sentiment,omitempty"`
	ActionRequired    bool      `json:"actionRequired"`
	Keywords          []string  `json:"keywords"`
	SuggestedActions  []string  `json:"suggestedActions"`
	Reasoning         string    `json:"reasoning"`
	NotificationSent  bool      `json:"notificationSent"`
	AnalyzedAt        time.Time `json:"analyzedAt"`
}

// AnalysisFilter narrows analysis queries. Zero values mean "any".
type AnalysisFilter struct {
	UserID        string
	Category      Category
	Priority      Priority
	AnalyzedAfter time.Time
	Limit         int
}

// TaskFilter narrows task counts for the morning brief.
type TaskFilter struct {
	UserID string
	Status string
}

// BatchSummary aggregates a batch-analysis result for API consumers.
type BatchSummary struct {
	Total               int              `json:"total"`
	UrgentCount         int              `json:"urgentCount"`
	HighPriorityCount   int              `json:"highPriorityCount"`
	ActionRequiredCount int              `json:"actionRequiredCount"`
	CategoryCounts      map[Category]int `json:"categoryCounts"`
}

// Brief is the morning digest delivered to a user.
type Brief struct {
	Title       string    `json:"title"`
	Sections    []Section `json:"sections"`
	Summary     string    `json:"summary"`
	GeneratedAt time.Time `json:"generatedAt"`
}

type Section struct {
	Heading  string   `json:"heading"`
	Items    []string `json:"items"`
	Priority Priority `json:"priority"`
}
