package canvas

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"

	"canvasassist/models"
)

// Service is a client for the Canvas proxy API. Every response is wrapped in
// a {success, data, error} envelope; authentication travels as institute_url
// and token query parameters. The http.Client is shared for the service's
// lifetime.
type Service struct {
	apiURL       string
	token        string
	instituteURL string
	httpClient   *http.Client
	verbose      bool
}

func NewService(apiURL, token, instituteURL string, verbose bool) *Service {
	log.Printf("[INFO] Canvas client initialized with API URL: %s", apiURL)
	log.Printf("[INFO] Using institute URL: %s", instituteURL)

	return &Service{
		apiURL:       apiURL,
		token:        token,
		instituteURL: instituteURL,
		httpClient:   &http.Client{},
		verbose:      verbose,
	}
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

// doRequest issues a request against the proxy API and decodes the envelope's
// data field into out. Passing a nil out discards the data.
func (s *Service) doRequest(ctx context.Context, method, endpoint string, body any, out any) error {
	reqURL := s.apiURL + endpoint

	params := url.Values{}
	params.Set("institute_url", s.instituteURL)
	params.Set("token", s.token)

	if s.verbose {
		log.Printf("[INFO] Making %s request to %s", method, reqURL)
	}

	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL+"?"+params.Encode(), reqBody)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		log.Printf("[ERROR] Network error when connecting to Canvas API: %v", err)
		return fmt.Errorf("network error when connecting to Canvas API: %w", err)
	}
	defer resp.Body.Close()

	responseText, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read Canvas API response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		log.Printf("[ERROR] Canvas API error (%d): %s", resp.StatusCode, responseText)
		return fmt.Errorf("Canvas API error (%d): %s", resp.StatusCode, responseText)
	}

	var env envelope
	if err := json.Unmarshal(responseText, &env); err != nil {
		return fmt.Errorf("failed to decode Canvas API response: %w", err)
	}

	if !env.Success {
		message := env.Error
		if message == "" {
			message = "Unknown error"
		}
		log.Printf("[ERROR] Canvas API error: %s", message)
		return fmt.Errorf("Canvas API error: %s", message)
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("failed to decode Canvas API data: %w", err)
		}
	}

	return nil
}

func (s *Service) GetUserProfile(ctx context.Context) (*models.UserProfile, error) {
	log.Printf("[INFO] Retrieving user profile")

	profile := &models.UserProfile{}
	if err := s.doRequest(ctx, http.MethodGet, "/users/self", nil, profile); err != nil {
		return nil, err
	}
	return profile, nil
}
