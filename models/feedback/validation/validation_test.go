package validation

import (
	"strings"
	"testing"

	"github.com/NomadCrew/feedback-desk/types"
	"github.com/stretchr/testify/assert"
)

func validDraft() types.FeedbackDraft {
	return types.FeedbackDraft{
		Name:     "Ann",
		Email:    "ann@x.com",
		Subject:  "Hi",
		Message:  "This is a test message",
		Rating:   4,
		Category: types.FeedbackCategoryProduct,
	}
}

func TestValidate_ValidDraft(t *testing.T) {
	errs := Validate(validDraft())
	assert.True(t, errs.Valid())
	assert.Empty(t, errs)
}

func TestValidate_EmptyDraft(t *testing.T) {
	errs := Validate(types.EmptyDraft())
	assert.Equal(t, FieldErrors{
		"name":    "Name is required",
		"email":   "Email is required",
		"subject": "Subject is required",
		"message": "Message is required",
		"rating":  "Please provide a rating",
	}, errs)
	assert.Equal(t, []string{"email", "message", "name", "rating", "subject"}, errs.Fields())
}

func TestValidate_Fields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(d *types.FeedbackDraft)
		field  string
		want   string
	}{
		{"blank name", func(d *types.FeedbackDraft) { d.Name = "   " }, "name", "Name is required"},
		{"blank email", func(d *types.FeedbackDraft) { d.Email = " " }, "email", "Email is required"},
		{"email without tld", func(d *types.FeedbackDraft) { d.Email = "ann@x" }, "email", "Please enter a valid email"},
		{"email with spaces", func(d *types.FeedbackDraft) { d.Email = " ann@x.com" }, "email", "Please enter a valid email"},
		{"email with two ats", func(d *types.FeedbackDraft) { d.Email = "a@b@c.d" }, "email", "Please enter a valid email"},
		{"blank subject", func(d *types.FeedbackDraft) { d.Subject = "\t" }, "subject", "Subject is required"},
		{"blank message", func(d *types.FeedbackDraft) { d.Message = "  " }, "message", "Message is required"},
		{"short message", func(d *types.FeedbackDraft) { d.Message = "too short" }, "message", "Message should be at least 10 characters"},
		{"short after trim", func(d *types.FeedbackDraft) { d.Message = "  123456789  " }, "message", "Message should be at least 10 characters"},
		{"long message", func(d *types.FeedbackDraft) { d.Message = strings.Repeat("a", 501) }, "message", "Message must be at most 500 characters"},
		{"unset rating", func(d *types.FeedbackDraft) { d.Rating = 0 }, "rating", "Please provide a rating"},
		{"rating too high", func(d *types.FeedbackDraft) { d.Rating = 6 }, "rating", "Rating must be between 1 and 5"},
		{"negative rating", func(d *types.FeedbackDraft) { d.Rating = -1 }, "rating", "Rating must be between 1 and 5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := validDraft()
			tt.mutate(&d)
			errs := Validate(d)
			assert.Equal(t, FieldErrors{tt.field: tt.want}, errs)
		})
	}
}

func TestValidate_Boundaries(t *testing.T) {
	d := validDraft()
	d.Message = strings.Repeat("a", 10)
	assert.True(t, Validate(d).Valid())

	d.Message = strings.Repeat("é", 500)
	assert.True(t, Validate(d).Valid(), "length counts characters, not bytes")

	d.Rating = 1
	assert.True(t, Validate(d).Valid())
	d.Rating = 5
	assert.True(t, Validate(d).Valid())
}

func TestValidate_CategoryIgnored(t *testing.T) {
	d := validDraft()
	d.Category = ""
	assert.True(t, Validate(d).Valid())

	d.Category = "anything"
	assert.True(t, Validate(d).Valid())
}
