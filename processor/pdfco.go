// Package processor implements the document processor: it extracts text from
// an uploaded PDF via the PDF.co API and repairs corrupted Romanian
// diacritics. The processor is purely functional; it holds no state and
// never touches the artifact store.
package processor

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/diacritfix/diacritfix/types"
)

// Config configures the PDF.co client.
type Config struct {
	// APIKey authenticates against the PDF.co API.
	APIKey string `yaml:"api_key" env:"API_KEY"`
	// BaseURL is the API root, overridable for tests.
	BaseURL string `yaml:"base_url" env:"BASE_URL"`
	// Timeout bounds each round trip to the API.
	Timeout time.Duration `yaml:"timeout" env:"TIMEOUT"`
}

// DefaultConfig returns the default processor configuration.
func DefaultConfig() Config {
	return Config{
		BaseURL: "https://api.pdf.co/v1",
		Timeout: 60 * time.Second,
	}
}

// PDFCo is a PDF.co API client implementing the document processor.
type PDFCo struct {
	cfg    Config
	client *http.Client
	logger *zap.Logger
}

// NewPDFCo creates a PDF.co processor client.
func NewPDFCo(cfg Config, logger *zap.Logger) *PDFCo {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultConfig().BaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PDFCo{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: logger.With(zap.String("component", "processor")),
	}
}

// preview bounds how much of the original and repaired text is included in
// the delivered report.
const preview = 500

// Process uploads the raw PDF bytes, extracts their text, repairs the
// diacritics, and returns the repaired-document report. It fails before
// anything is stored, so a processor error never leaves a partial artifact.
func (p *PDFCo) Process(ctx context.Context, data []byte, name string) (*types.ProcessedDocument, error) {
	if len(data) == 0 {
		return nil, types.NewError(types.ErrMissingInput, "document content is empty")
	}

	fileURL, err := p.upload(ctx, data)
	if err != nil {
		return nil, err
	}

	original, err := p.extractText(ctx, fileURL)
	if err != nil {
		return nil, err
	}

	repaired := RepairDiacritics(original)
	p.logger.Info("document processed",
		zap.String("name", name),
		zap.Int("original_len", len(original)),
		zap.Int("repaired_len", len(repaired)),
	)

	report := fmt.Sprintf(
		"PDF repaired successfully!\nOriginal file: %s\n\nOriginal text (first %d chars):\n%s\n\nFixed text (first %d chars):\n%s\n",
		name, preview, truncate(original, preview), preview, truncate(repaired, preview),
	)

	return &types.ProcessedDocument{
		Content:     []byte(report),
		DisplayName: name,
	}, nil
}

// upload pushes the file to PDF.co temporary storage and returns its URL.
func (p *PDFCo) upload(ctx context.Context, data []byte) (string, error) {
	body := base64.StdEncoding.EncodeToString(data)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		strings.TrimRight(p.cfg.BaseURL, "/")+"/file/upload",
		strings.NewReader(body))
	if err != nil {
		return "", types.NewError(types.ErrProcessingFailed, "build upload request").WithCause(err)
	}
	req.Header.Set("x-api-key", p.cfg.APIKey)
	req.Header.Set("Content-Type", "application/octet-stream")

	var out struct {
		URL     string `json:"url"`
		Error   bool   `json:"error"`
		Message string `json:"message"`
	}
	if err := p.do(req, &out); err != nil {
		return "", err
	}
	if out.Error || out.URL == "" {
		return "", types.NewError(types.ErrProcessingFailed, apiMessage(out.Message, "file upload rejected"))
	}
	return out.URL, nil
}

// extractText converts the uploaded PDF to inline text.
func (p *PDFCo) extractText(ctx context.Context, fileURL string) (string, error) {
	payload, _ := json.Marshal(map[string]any{
		"url":    fileURL,
		"inline": true,
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		strings.TrimRight(p.cfg.BaseURL, "/")+"/pdf/convert/to/text",
		bytes.NewReader(payload))
	if err != nil {
		return "", types.NewError(types.ErrProcessingFailed, "build convert request").WithCause(err)
	}
	req.Header.Set("x-api-key", p.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	var out struct {
		Text    string `json:"text"`
		Error   bool   `json:"error"`
		Message string `json:"message"`
	}
	if err := p.do(req, &out); err != nil {
		return "", err
	}
	if out.Error {
		return "", types.NewError(types.ErrProcessingFailed, apiMessage(out.Message, "text extraction rejected"))
	}
	return out.Text, nil
}

// do executes the request and decodes the JSON response, mapping transport
// failures and non-2xx statuses to the upstream error taxonomy.
func (p *PDFCo) do(req *http.Request, out any) error {
	resp, err := p.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(req.Context().Err(), context.DeadlineExceeded) {
			return types.NewError(types.ErrUpstreamTimeout, "document processor timed out").
				WithRetryable(true).WithCause(err)
		}
		return types.NewError(types.ErrProcessingFailed, "document processor unreachable").
			WithRetryable(true).WithCause(err)
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return types.NewError(types.ErrProcessingFailed, "malformed processor response").WithCause(err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return types.NewError(types.ErrProcessingFailed,
			fmt.Sprintf("document processor returned status %d", resp.StatusCode))
	}
	return nil
}

func apiMessage(msg, fallback string) string {
	if msg != "" {
		return msg
	}
	return fallback
}

// truncate returns at most n runes of s.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
