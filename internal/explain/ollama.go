package explain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"vigil/internal/platform/config"
)

// Ollama generates explanations through an ollama text-generation endpoint.
// No client-level timeout: the per-call deadline is owned by the caller so
// the screening engine's explanation budget is the single source of truth.
type Ollama struct {
	host   string
	model  string
	client *http.Client
}

func NewOllama(cfg config.Ollama) *Ollama {
	return &Ollama{
		host:   cfg.Host,
		model:  cfg.GenerateModel,
		client: &http.Client{},
	}
}

type generateRequest struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	Stream  bool           `json:"stream"`
	Options map[string]any `json:"options,omitempty"`
}

type generateResponse struct {
	Response string `json:"response"`
}

func (o *Ollama) Explain(ctx context.Context, queryName string, match MatchedEntity) (string, error) {
	body, err := json.Marshal(generateRequest{
		Model:   o.model,
		Prompt:  buildPrompt(queryName, match),
		Stream:  false,
		Options: map[string]any{"temperature": 0.7},
	})
	if err != nil {
		return "", fmt.Errorf("marshal generate request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.host+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build generate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("explanation provider: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("explanation provider: status %d: %s", resp.StatusCode, payload)
	}

	var decoded generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("explanation provider: decode response: %w", err)
	}
	return strings.TrimSpace(decoded.Response), nil
}

func buildPrompt(queryName string, match MatchedEntity) string {
	dob := "unknown"
	if match.DateOfBirth != nil {
		dob = match.DateOfBirth.Format("2006-01-02")
	}
	return fmt.Sprintf(
		"Analyze the risk of an individual named '%s' who matches a watchlist entry: "+
			"Unique ID: %s, Name: %s, Date of Birth: %s, Risk Category: %s. "+
			"Provide a brief explanation of why this match might indicate a risk.",
		queryName, match.UniqueID, match.Name, dob, match.RiskCategory,
	)
}
