package domain

// User is the authenticated identity as reported by the backend.
// Timestamps arrive as ISO-8601 strings or null and are kept verbatim.
type User struct {
	ID        int64   `json:"id"`
	Email     string  `json:"email"`
	FullName  *string `json:"full_name,omitempty"`
	CreatedAt *string `json:"created_at,omitempty"`
	UpdatedAt *string `json:"updated_at,omitempty"`
}
