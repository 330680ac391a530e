package models

import "time"

// Contact channels a customer can leave for an inquiry
const (
	ContactTypeInstagram = "instagram"
	ContactTypeWhatsApp  = "whatsapp"
)

// Inquiry workflow states
const (
	SubmissionStatusNew       = "new"
	SubmissionStatusContacted = "contacted"
	SubmissionStatusClosed    = "closed"
)

type ContactSubmission struct {
	ID           string    `json:"id"`
	ProductID    string    `json:"productId"`
	ContactType  string    `json:"contactType"`
	ContactValue string    `json:"contactValue"`
	Message      *string   `json:"message"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"createdAt"`
	ProductTitle string    `json:"productTitle,omitempty"`
}

// DashboardStats is the admin landing page summary.
type DashboardStats struct {
	ActiveProducts int `json:"activeProducts"`
	NewSubmissions int `json:"newSubmissions"`
}
