package alerts

import "time"

// Task type constants
const (
	TaskWelcomeEmail      = "email:welcome"
	TaskVerifyEmail       = "email:verify"
	TaskPasswordOTP       = "email:password_otp"
	TaskNotificationEmail = "email:notification"
	TaskProjectAlert      = "email:project_alert"
)

// Common envelope for email-like notifications
type EmailEnvelope struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Welcome email payload
type WelcomeEmailPayload struct {
	Name     string        `json:"name"`
	Email    string        `json:"email"`
	Envelope EmailEnvelope `json:"envelope"`
	SentAt   time.Time     `json:"sent_at"`
}

// Email verification payload
type VerifyEmailPayload struct {
	Name     string        `json:"name"`
	Email    string        `json:"email"`
	Token    string        `json:"token"`
	Envelope EmailEnvelope `json:"envelope"`
	SentAt   time.Time     `json:"sent_at"`
}

// Password reset OTP payload
type PasswordOTPPayload struct {
	Name      string        `json:"name"`
	Email     string        `json:"email"`
	Envelope  EmailEnvelope `json:"envelope"`
	Requested time.Time     `json:"requested"`
}

// In-app notification mirrored to email
type NotificationEmailPayload struct {
	NotificationID string        `json:"notification_id"`
	Type           string        `json:"type"`
	ProjectID      string        `json:"project_id"`
	Email          string        `json:"email"`
	Envelope       EmailEnvelope `json:"envelope"`
	SentAt         time.Time     `json:"sent_at"`
}

// Saved-alert match payload (new project matching a saved search)
type ProjectAlertPayload struct {
	AlertID      string        `json:"alert_id"`
	ProjectID    string        `json:"project_id"`
	ProjectTitle string        `json:"project_title"`
	Email        string        `json:"email"`
	Envelope     EmailEnvelope `json:"envelope"`
	SentAt       time.Time     `json:"sent_at"`
}
