package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"borderland-arena/internal/domain"
	"borderland-arena/pkg/errors"
	"borderland-arena/pkg/logger"
	"borderland-arena/pkg/metrics"
)

const (
	StatusAccepted         = 3
	StatusCompilationError = 6
	StatusRuntimeError     = 11

	maxSourceBytes = 64 * 1024
)

// pistonLanguages maps the language ids clients send to Piston runtimes
var pistonLanguages = map[int]string{
	63: "javascript",
	71: "python",
	62: "java",
	54: "cpp",
}

type pistonFile struct {
	Content string `json:"content"`
}

type pistonRequest struct {
	Language string       `json:"language"`
	Version  string       `json:"version"`
	Files    []pistonFile `json:"files"`
	Stdin    string       `json:"stdin"`
}

type pistonStage struct {
	Stdout string `json:"stdout"`
	Stderr string `json:"stderr"`
	Code   *int   `json:"code"`
}

type pistonResponse struct {
	Language string       `json:"language"`
	Run      pistonStage  `json:"run"`
	Compile  *pistonStage `json:"compile,omitempty"`
}

// SandboxClient runs code on a Piston instance
type SandboxClient struct {
	url        string
	httpClient *http.Client
	logger     *logger.Logger
}

// NewSandboxClient creates a new Piston client
func NewSandboxClient(pistonURL string, timeout time.Duration, logger *logger.Logger) *SandboxClient {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &SandboxClient{
		url: pistonURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// PistonLanguage resolves a language id; unknown ids run as javascript
func PistonLanguage(languageID int) string {
	if lang, ok := pistonLanguages[languageID]; ok {
		return lang
	}
	return "javascript"
}

// Execute runs the source and maps Piston's output to an ExecuteResult
func (s *SandboxClient) Execute(ctx context.Context, req *domain.ExecuteRequest) (*domain.ExecuteResult, error) {
	if strings.TrimSpace(req.Source) == "" {
		return nil, errors.NewValidationError("source is required", nil)
	}
	if len(req.Source) > maxSourceBytes {
		return nil, errors.NewValidationError("source is too large", map[string]interface{}{
			"max_bytes": maxSourceBytes,
		})
	}

	language := PistonLanguage(req.LanguageID)
	start := time.Now()

	resp, err := s.call(ctx, &pistonRequest{
		Language: language,
		Version:  "*",
		Files:    []pistonFile{{Content: req.Source}},
		Stdin:    req.Stdin,
	})
	metrics.SandboxDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.SandboxExecutions.WithLabelValues(language, "error").Inc()
		s.logger.WithError(err).WithField("language", language).Error("Sandbox execution failed")
		return nil, errors.NewExternalError("Code execution is unavailable", err)
	}

	result := mapPistonResponse(resp, language)
	metrics.SandboxExecutions.WithLabelValues(language, result.Status.Description).Inc()

	s.logger.WithFields(map[string]interface{}{
		"language": language,
		"status":   result.Status.ID,
	}).Debug("Sandbox execution finished")

	return result, nil
}

func (s *SandboxClient) call(ctx context.Context, body *pistonRequest) (*pistonResponse, error) {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call Piston: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Piston returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var pistonResp pistonResponse
	if err := json.Unmarshal(respBody, &pistonResp); err != nil {
		return nil, fmt.Errorf("failed to parse Piston response: %w", err)
	}
	return &pistonResp, nil
}

func mapPistonResponse(resp *pistonResponse, language string) *domain.ExecuteResult {
	result := &domain.ExecuteResult{
		Stdout:   resp.Run.Stdout,
		Stderr:   resp.Run.Stderr,
		Language: language,
		Status:   domain.ExecutionStatus{ID: StatusAccepted, Description: "Accepted"},
	}

	if resp.Compile != nil {
		result.CompileOutput = resp.Compile.Stderr
		if resp.Compile.Code != nil && *resp.Compile.Code != 0 {
			result.Status = domain.ExecutionStatus{ID: StatusCompilationError, Description: "Compilation Error"}
			return result
		}
	}

	if (resp.Run.Code != nil && *resp.Run.Code != 0) || resp.Run.Stderr != "" {
		result.Status = domain.ExecutionStatus{ID: StatusRuntimeError, Description: "Runtime Error"}
	}
	return result
}
