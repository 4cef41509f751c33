package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"vigil/internal/platform/config"
	"vigil/pkg/sentinel"
)

// Ollama is the production Provider backed by an ollama embeddings endpoint.
type Ollama struct {
	host   string
	model  string
	dim    int
	client *http.Client
}

// NewOllama builds an embedding client from configuration. The configured
// dimension is applied to every vector before it leaves this package.
func NewOllama(cfg config.Ollama, dim int) *Ollama {
	return &Ollama{
		host:  cfg.Host,
		model: cfg.EmbedModel,
		dim:   dim,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type embedRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type embedResponse struct {
	Embedding []float32 `json:"embedding"`
}

func (o *Ollama) Embed(ctx context.Context, text string) ([]float32, error) {
	body, err := json.Marshal(embedRequest{Model: o.model, Prompt: text})
	if err != nil {
		return nil, fmt.Errorf("marshal embed request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.host+"/api/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build embed request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embedding provider: %w: %w", sentinel.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("embedding provider: %w: status %d: %s", sentinel.ErrUnavailable, resp.StatusCode, payload)
	}

	var decoded embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("embedding provider: %w: decode response: %w", sentinel.ErrUnavailable, err)
	}
	if len(decoded.Embedding) == 0 {
		return nil, fmt.Errorf("embedding provider: %w: empty embedding", sentinel.ErrUnavailable)
	}

	return normalizeDim(decoded.Embedding, o.dim), nil
}
