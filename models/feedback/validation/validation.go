// Package validation checks feedback drafts and reports one human readable
// message per invalid field.
package validation

import (
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/NomadCrew/feedback-desk/types"
	"github.com/go-playground/validator/v10"
)

const (
	MessageMinLength = 10
	MessageMaxLength = 500
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// FieldErrors maps a json field name to its message. An empty map means the
// draft is acceptable.
type FieldErrors map[string]string

// Valid reports whether no field failed.
func (e FieldErrors) Valid() bool {
	return len(e) == 0
}

// Fields returns the failing field names in sorted order.
func (e FieldErrors) Fields() []string {
	names := make([]string, 0, len(e))
	for name := range e {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// draftRules holds what is checked. Free text is trimmed before it gets
// here; the email is not, so surrounding whitespace fails the pattern.
type draftRules struct {
	Name    string `json:"name" validate:"notblank"`
	Email   string `json:"email" validate:"notblank,feedback_email"`
	Subject string `json:"subject" validate:"notblank"`
	Message string `json:"message" validate:"notblank,min=10,max=500"`
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = v.RegisterValidation("feedback_email", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	})
	return v
}

// Validate checks draft and returns the messages for every failing field.
// Category is never validated.
func Validate(draft types.FeedbackDraft) FieldErrors {
	n := draft.Normalized()
	rules := draftRules{
		Name:    n.Name,
		Email:   n.Email,
		Subject: n.Subject,
		Message: n.Message,
		Rating:  n.Rating,
	}

	errs := FieldErrors{}
	err := validate.Struct(rules)
	if err == nil {
		return errs
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		// Only reachable with a malformed rules struct.
		panic(err)
	}
	for _, fe := range verrs {
		if _, seen := errs[fe.Field()]; seen {
			continue
		}
		errs[fe.Field()] = message(fe.Field(), fe.Tag())
	}
	return errs
}

func message(field, tag string) string {
	switch field {
	case "name":
		return "Name is required"
	case "email":
		if tag == "feedback_email" {
			return "Please enter a valid email"
		}
		return "Email is required"
	case "subject":
		return "Subject is required"
	case "message":
		switch tag {
		case "min":
			return "Message should be at least 10 characters"
		case "max":
			return "Message must be at most 500 characters"
		}
		return "Message is required"
	case "rating":
		if tag == "required" {
			return "Please provide a rating"
		}
		return "Rating must be between 1 and 5"
	}
	return "Invalid value"
}
