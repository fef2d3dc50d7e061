package alerts

import (
	"context"
	"encoding/json"

	"github.com/hibiken/asynq"

	"github.com/projecthub-dev/projecthub/internal/config"
	"github.com/projecthub-dev/projecthub/internal/logger"
)

var (
	client *asynq.Client
	server *asynq.Server
	appURL string
)

// Init starts the Asynq server and initializes a shared client.
func Init(cfg *config.Config) {
	appURL = cfg.Server.AppURL
	ConfigureMailer(cfg.Mail)

	opts := asynq.RedisClientOpt{Addr: cfg.Redis.Addr}
	client = asynq.NewClient(opts)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskWelcomeEmail, handleWelcomeEmail)
	mux.HandleFunc(TaskVerifyEmail, handleVerifyEmail)
	mux.HandleFunc(TaskPasswordOTP, handlePasswordOTP)
	mux.HandleFunc(TaskNotificationEmail, handleNotificationEmail)
	mux.HandleFunc(TaskProjectAlert, handleProjectAlert)

	server = asynq.NewServer(opts, asynq.Config{
		Concurrency: 5,
		Queues: map[string]int{
			"emails": 10,
			"alerts": 5,
		},
	})
	go func() {
		if err := server.Run(mux); err != nil {
			logger.Error("asynq server stopped: %v", err)
		}
	}()

	logger.Info("asynq initialized (addr=%s)", cfg.Redis.Addr)
}

// Close releases client and stops server.
func Close() {
	if client != nil {
		_ = client.Close()
	}
	if server != nil {
		server.Shutdown()
	}
}

func handleWelcomeEmail(_ context.Context, t *asynq.Task) error {
	var p WelcomeEmailPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return err
	}
	if err := SendEmail(p.Email, p.Envelope.Subject, p.Envelope.Body); err != nil {
		logger.Error("mail: welcome send failed: %v", err)
		return err
	}
	logger.Info("mail: welcome sent to=%s", p.Email)
	return nil
}

func handleVerifyEmail(_ context.Context, t *asynq.Task) error {
	var p VerifyEmailPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return err
	}
	if err := SendEmail(p.Email, p.Envelope.Subject, p.Envelope.Body); err != nil {
		logger.Error("mail: verification send failed: %v", err)
		return err
	}
	logger.Info("mail: verification sent to=%s", p.Email)
	return nil
}

func handlePasswordOTP(_ context.Context, t *asynq.Task) error {
	var p PasswordOTPPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return err
	}
	if err := SendEmail(p.Email, p.Envelope.Subject, p.Envelope.Body); err != nil {
		logger.Error("mail: otp send failed: %v", err)
		return err
	}
	logger.Info("mail: otp sent to=%s", p.Email)
	return nil
}

func handleNotificationEmail(_ context.Context, t *asynq.Task) error {
	var p NotificationEmailPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return err
	}
	if err := SendEmail(p.Email, p.Envelope.Subject, p.Envelope.Body); err != nil {
		logger.Error("mail: notification send failed: %v", err)
		return err
	}
	logger.Info("mail: notification sent type=%s to=%s", p.Type, p.Email)
	return nil
}

func handleProjectAlert(_ context.Context, t *asynq.Task) error {
	var p ProjectAlertPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return err
	}
	if err := SendEmail(p.Email, p.Envelope.Subject, p.Envelope.Body); err != nil {
		logger.Error("mail: project alert send failed: %v", err)
		return err
	}
	logger.Info("mail: project alert sent alert=%s to=%s", p.AlertID, p.Email)
	return nil
}
