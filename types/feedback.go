package types

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// FeedbackStatus is the handling state of a feedback entry.
type FeedbackStatus string

const (
	FeedbackStatusNew        FeedbackStatus = "new"
	FeedbackStatusInProgress FeedbackStatus = "in-progress"
	FeedbackStatusResolved   FeedbackStatus = "resolved"
)

// IsValid reports whether s is one of the known statuses.
func (s FeedbackStatus) IsValid() bool {
	switch s {
	case FeedbackStatusNew, FeedbackStatusInProgress, FeedbackStatusResolved:
		return true
	}
	return false
}

// FeedbackStatuses lists the known statuses in workflow order.
var FeedbackStatuses = []FeedbackStatus{
	FeedbackStatusNew,
	FeedbackStatusInProgress,
	FeedbackStatusResolved,
}

// FeedbackCategory classifies what a feedback entry is about.
type FeedbackCategory string

const (
	FeedbackCategoryGeneral    FeedbackCategory = "general"
	FeedbackCategoryService    FeedbackCategory = "service"
	FeedbackCategoryProduct    FeedbackCategory = "product"
	FeedbackCategoryFeature    FeedbackCategory = "feature"
	FeedbackCategoryBug        FeedbackCategory = "bug"
	FeedbackCategoryCompliment FeedbackCategory = "compliment"
	FeedbackCategoryComplaint  FeedbackCategory = "complaint"
)

// FeedbackCategories lists the known categories in display order.
var FeedbackCategories = []FeedbackCategory{
	FeedbackCategoryGeneral,
	FeedbackCategoryService,
	FeedbackCategoryProduct,
	FeedbackCategoryFeature,
	FeedbackCategoryBug,
	FeedbackCategoryCompliment,
	FeedbackCategoryComplaint,
}

// FilterAll disables a status or category constraint in a FeedbackFilter.
const FilterAll = "all"

// Feedback represents a feedback entry.
type Feedback struct {
	ID        string           `json:"id" yaml:"id"`
	Name      string           `json:"name" yaml:"name"`
	Email     string           `json:"email" yaml:"email"`
	Subject   string           `json:"subject" yaml:"subject"`
	Message   string           `json:"message" yaml:"message"`
	Rating    int              `json:"rating" yaml:"rating"`
	Category  FeedbackCategory `json:"category" yaml:"category"`
	Status    FeedbackStatus   `json:"status" yaml:"status"`
	CreatedAt time.Time        `json:"created_at" yaml:"created_at"`
}

// Clone returns a copy that shares no state with f.
func (f *Feedback) Clone() *Feedback {
	if f == nil {
		return nil
	}
	clone := *f
	return &clone
}

// FeedbackDraft is a candidate feedback entry as entered by a submitter.
type FeedbackDraft struct {
	Name     string           `json:"name"`
	Email    string           `json:"email"`
	Subject  string           `json:"subject"`
	Message  string           `json:"message"`
	Rating   int              `json:"rating"`
	Category FeedbackCategory `json:"category,omitempty"`
}

// EmptyDraft returns the draft a fresh form starts from.
func EmptyDraft() FeedbackDraft {
	return FeedbackDraft{Category: FeedbackCategoryGeneral}
}

// Normalized trims free text fields and applies the default category. The
// email is left untouched so that surrounding whitespace fails the pattern.
func (d FeedbackDraft) Normalized() FeedbackDraft {
	d.Name = strings.TrimSpace(d.Name)
	d.Subject = strings.TrimSpace(d.Subject)
	d.Message = strings.TrimSpace(d.Message)
	if d.Category == "" {
		d.Category = FeedbackCategoryGeneral
	}
	return d
}

// ToFeedback finalizes a validated draft into a new feedback entry.
func (d FeedbackDraft) ToFeedback(id string, createdAt time.Time) *Feedback {
	n := d.Normalized()
	return &Feedback{
		ID:        id,
		Name:      n.Name,
		Email:     strings.TrimSpace(n.Email),
		Subject:   n.Subject,
		Message:   n.Message,
		Rating:    n.Rating,
		Category:  n.Category,
		Status:    FeedbackStatusNew,
		CreatedAt: createdAt,
	}
}

// FeedbackFilter narrows a feedback listing. Empty Status or Category, or
// FilterAll, leaves that dimension unconstrained; an empty Search matches all.
type FeedbackFilter struct {
	Search   string `form:"search" json:"search"`
	Status   string `form:"status" json:"status"`
	Category string `form:"category" json:"category"`
}

// MatchAllFilter returns the filter that selects the whole collection.
func MatchAllFilter() FeedbackFilter {
	return FeedbackFilter{Status: FilterAll, Category: FilterAll}
}

// Matches reports whether fb satisfies every constraint of the filter. The
// search term is matched case-insensitively against name, email and subject.
func (f FeedbackFilter) Matches(fb *Feedback) bool {
	if f.Status != "" && f.Status != FilterAll && string(fb.Status) != f.Status {
		return false
	}
	if f.Category != "" && f.Category != FilterAll && string(fb.Category) != f.Category {
		return false
	}
	if f.Search == "" {
		return true
	}
	term := strings.ToLower(f.Search)
	return strings.Contains(strings.ToLower(fb.Name), term) ||
		strings.Contains(strings.ToLower(fb.Email), term) ||
		strings.Contains(strings.ToLower(fb.Subject), term)
}

// FeedbackStats aggregates the full feedback collection.
type FeedbackStats struct {
	Total      int     `json:"total"`
	New        int     `json:"new"`
	InProgress int     `json:"in_progress"`
	Resolved   int     `json:"resolved"`
	AvgRating  float64 `json:"avg_rating"`
}

// NewFeedbackStats builds stats from raw counters. The average rating is
// rounded to one decimal place and is 0 for an empty collection.
func NewFeedbackStats(total, newCount, inProgress, resolved int, ratingSum int64) *FeedbackStats {
	stats := &FeedbackStats{
		Total:      total,
		New:        newCount,
		InProgress: inProgress,
		Resolved:   resolved,
	}
	if total > 0 {
		avg := decimal.NewFromInt(ratingSum).
			Div(decimal.NewFromInt(int64(total))).
			Round(1)
		stats.AvgRating, _ = avg.Float64()
	}
	return stats
}

// FeedbackStatusUpdate is the request body for changing a feedback status.
type FeedbackStatusUpdate struct {
	Status FeedbackStatus `json:"status" binding:"required"`
}
