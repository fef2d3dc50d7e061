package alerts

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

type plunkSendBody struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
	From    string `json:"from,omitempty"`
}

// sendViaPlunk performs the HTTP request to the Plunk API
func sendViaPlunk(to, subject, body string) error {
	if mailCfg.PlunkAPIKey == "" {
		return fmt.Errorf("plunk not configured: set mail.plunk_api_key")
	}
	apiURL := mailCfg.PlunkAPIURL
	if apiURL == "" {
		apiURL = "https://api.useplunk.com/v1/send"
	}

	payload := plunkSendBody{To: to, Subject: subject, Body: body, From: mailCfg.From}
	b, _ := json.Marshal(payload)
	req, err := http.NewRequest(http.MethodPost, apiURL, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+mailCfg.PlunkAPIKey)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if msg, readErr := io.ReadAll(resp.Body); readErr == nil && len(msg) > 0 {
			return fmt.Errorf("plunk send failed: status=%d body=%s", resp.StatusCode, msg)
		}
		return fmt.Errorf("plunk send failed: status=%d", resp.StatusCode)
	}
	return nil
}
