package middleware

// contextKey defines a type for context keys to avoid collisions.
type contextKey string

const (
	// StaffIDKey holds the authenticated staff id (string) in the gin context.
	StaffIDKey contextKey = "staff_id"
)
