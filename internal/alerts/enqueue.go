package alerts

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/hibiken/asynq"

	"github.com/projecthub-dev/projecthub/internal/domain"
)

// Queue satisfies the enqueuer interfaces the handlers and the notification
// dispatcher consume. The zero value uses the shared client set up by Init.
type Queue struct{}

func baseURL() string {
	if appURL == "" {
		return "http://localhost:3000"
	}
	return strings.TrimRight(appURL, "/")
}

func enqueue(taskType string, payload any, queue string) error {
	if client == nil {
		return fmt.Errorf("alerts: queue not initialized")
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = client.Enqueue(asynq.NewTask(taskType, b), asynq.Queue(queue))
	return err
}

// EnqueueWelcomeEmail schedules a welcome email to a new user.
func (Queue) EnqueueWelcomeEmail(name, email string) error {
	env := EmailEnvelope{
		To:      email,
		Subject: fmt.Sprintf("Welcome to ProjectHub, %s!", name),
		Body: fmt.Sprintf("Hi %s, thanks for joining ProjectHub.\n\nOpen ProjectHub: %s\n\nIf the link doesn't work, copy and paste the URL above.",
			name, baseURL()),
	}
	return enqueue(TaskWelcomeEmail, WelcomeEmailPayload{
		Name: name, Email: email, Envelope: env, SentAt: time.Now(),
	}, "emails")
}

// EnqueueVerifyEmail schedules the email-address verification message.
func (Queue) EnqueueVerifyEmail(name, email, token string) error {
	link := fmt.Sprintf("%s/verify-email?token=%s", baseURL(), token)
	env := EmailEnvelope{
		To:      email,
		Subject: "Verify your email address",
		Body: fmt.Sprintf("Hello %s,\n\nPlease confirm your email address by opening the link below:\n%s\n\nIf you did not create a ProjectHub account, no action is required.",
			name, link),
	}
	return enqueue(TaskVerifyEmail, VerifyEmailPayload{
		Name: name, Email: email, Token: token, Envelope: env, SentAt: time.Now(),
	}, "emails")
}

// EnqueueOTPEmail schedules the password-reset code.
func (Queue) EnqueueOTPEmail(name, email, otp string) error {
	env := EmailEnvelope{
		To:      email,
		Subject: "Your password reset code",
		Body: fmt.Sprintf("Hello %s,\n\nYour ProjectHub password reset code is:\n\n%s\n\nThe code expires in 10 minutes. If you did not request a reset, no action is required.",
			name, otp),
	}
	return enqueue(TaskPasswordOTP, PasswordOTPPayload{
		Name: name, Email: email, Envelope: env, Requested: time.Now(),
	}, "emails")
}

// EnqueueNotificationEmail mirrors an in-app notification to the recipient's
// inbox.
func (Queue) EnqueueNotificationEmail(n domain.Notification, name, email string) error {
	link := fmt.Sprintf("%s/projects/%s", baseURL(), n.ProjectID)
	env := EmailEnvelope{
		To:      email,
		Subject: fmt.Sprintf("ProjectHub: %s", n.Message),
		Body: fmt.Sprintf("Hello %s,\n\n%s\n\nView the project: %s",
			name, n.Message, link),
	}
	return enqueue(TaskNotificationEmail, NotificationEmailPayload{
		NotificationID: n.ID,
		Type:           n.Type,
		ProjectID:      n.ProjectID,
		Email:          email,
		Envelope:       env,
		SentAt:         time.Now(),
	}, "emails")
}

// EnqueueProjectAlert tells a saved-search owner about a matching new project.
func (Queue) EnqueueProjectAlert(alert domain.SavedAlert, project domain.Project, name, email string) error {
	link := fmt.Sprintf("%s/projects/%s", baseURL(), project.ID)
	env := EmailEnvelope{
		To:      email,
		Subject: fmt.Sprintf("New project matching \"%s\"", alert.Name),
		Body: fmt.Sprintf("Hello %s,\n\nA new project matches your saved alert \"%s\":\n\n%s\n%s",
			name, alert.Name, project.Title, link),
	}
	return enqueue(TaskProjectAlert, ProjectAlertPayload{
		AlertID:      alert.ID,
		ProjectID:    project.ID,
		ProjectTitle: project.Title,
		Email:        email,
		Envelope:     env,
		SentAt:       time.Now(),
	}, "alerts")
}
