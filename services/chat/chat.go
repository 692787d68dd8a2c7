// Package chatsvc holds the notification channels posting to chat platforms.
package chatsvc

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"
	"github.com/sendgrid/rest"
)

const footer = "Semillero Digital - Insights Dashboard"

// postJSON posts payload to url and fails on any non-2xx response.
func postJSON(ctx context.Context, url string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, "encoding payload")
	}
	req := rest.Request{
		Method:  rest.Post,
		BaseURL: url,
		Headers: map[string]string{"Content-Type": "application/json"},
		Body:    body,
	}
	res, err := rest.SendWithContext(ctx, req)
	if err != nil {
		return errors.Wrap(err, "posting message")
	}
	if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
		return errors.Errorf("posting message - status: %d - body: %s", res.StatusCode, res.Body)
	}
	return nil
}
