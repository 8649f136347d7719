// Package aiagent is the HTTP client for the external agent platform that
// performs OCR, CV structuring, intake comparison, house formatting and QA.
package aiagent

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ehstaff/ehstaff-backend/internal/cv/domain"
	apperrors "github.com/ehstaff/ehstaff-backend/pkg/errors"
)

// QAPassThreshold is the minimum score the agent must report for a record
// to be considered ready without reviewer attention.
const QAPassThreshold = 0.8

// Client invokes tasks on a single configured agent.
type Client struct {
	baseURL    string
	agentID    string
	apiKey     string
	httpClient *http.Client
}

// New creates an agent client. Timeout covers a single invoke round trip;
// structuring large CVs can take tens of seconds.
func New(baseURL, agentID, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		agentID: agentID,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Available reports whether the client is configured to reach an agent.
func (c *Client) Available() bool {
	return c.baseURL != "" && c.agentID != ""
}

// ExtractTextFromImage runs OCR over a scanned document.
func (c *Client) ExtractTextFromImage(ctx context.Context, imageData []byte) (*OCRResult, error) {
	resp, err := c.invoke(ctx, TaskOCR, map[string]any{
		"image_base64": base64.StdEncoding.EncodeToString(imageData),
	})
	if err != nil {
		return nil, err
	}
	confidence := 1.0
	if resp.Data.Confidence != nil {
		confidence = *resp.Data.Confidence
	}
	return &OCRResult{Text: resp.Data.Text, Confidence: confidence}, nil
}

// ConvertToStructuredData asks the agent to parse raw CV text into a
// candidate record.
func (c *Client) ConvertToStructuredData(ctx context.Context, text string) (*ParseResult, error) {
	resp, err := c.invoke(ctx, TaskParseCV, map[string]any{
		"text": text,
	})
	if err != nil {
		return nil, err
	}
	if resp.Data.ParsedData == nil {
		return nil, apperrors.StructuringUnavailable(fmt.Errorf("agent returned no parsed data"))
	}
	return &ParseResult{
		StructuredData: resp.Data.ParsedData,
		Errors:         resp.Data.Errors,
	}, nil
}

// CompareAndAdjustContent reconciles a parsed record with intake form data.
func (c *Client) CompareAndAdjustContent(ctx context.Context, cv *domain.CandidateRecord, intake map[string]any) (*CompareResult, error) {
	resp, err := c.invoke(ctx, TaskCompareIntake, map[string]any{
		"original_data": cv,
		"intake_form":   intake,
	})
	if err != nil {
		return nil, err
	}
	adjusted := resp.Data.AdjustedData
	if adjusted == nil {
		adjusted = cv
	}
	return &CompareResult{
		AdjustedData: adjusted,
		AppliedRules: resp.Data.AppliedRules,
	}, nil
}

// ApplyFormattingStandards applies the agency's house template via the agent.
func (c *Client) ApplyFormattingStandards(ctx context.Context, cv *domain.CandidateRecord, template map[string]any) (*FormatResult, error) {
	resp, err := c.invoke(ctx, TaskFormatCV, map[string]any{
		"cv_data":  cv,
		"template": template,
	})
	if err != nil {
		return nil, err
	}
	formatted := resp.Data.FormattedCV
	if formatted == nil {
		formatted = cv
	}
	return &FormatResult{
		FormattedData:    formatted,
		ValidationErrors: resp.Data.ValidationErrors,
	}, nil
}

// PerformQualityAssurance scores a finished record.
func (c *Client) PerformQualityAssurance(ctx context.Context, cv *domain.CandidateRecord) (*QAResult, error) {
	resp, err := c.invoke(ctx, TaskQA, map[string]any{
		"cv_data": cv,
	})
	if err != nil {
		return nil, err
	}
	return &QAResult{
		Score:           resp.Data.QAScore,
		Passed:          resp.Data.QAScore >= QAPassThreshold,
		Issues:          resp.Data.Issues,
		Recommendations: resp.Data.Recommendations,
		Suggestions:     resp.Data.Suggestions,
	}, nil
}

// ProcessCV chains OCR, parse, compare, format and QA. The OCR stage
// runs only for image input; text extracted upstream skips straight to
// parsing.
func (c *Client) ProcessCV(ctx context.Context, text string, image []byte, intake map[string]any) (*PipelineResult, error) {
	var ocr *OCRResult
	if len(image) > 0 {
		var err error
		ocr, err = c.ExtractTextFromImage(ctx, image)
		if err != nil {
			return nil, err
		}
		text = ocr.Text
	}
	parsed, err := c.ConvertToStructuredData(ctx, text)
	if err != nil {
		return nil, err
	}
	compared, err := c.CompareAndAdjustContent(ctx, parsed.StructuredData, intake)
	if err != nil {
		return nil, err
	}
	formatted, err := c.ApplyFormattingStandards(ctx, compared.AdjustedData, map[string]any{})
	if err != nil {
		return nil, err
	}
	qa, err := c.PerformQualityAssurance(ctx, formatted.FormattedData)
	if err != nil {
		return nil, err
	}
	return &PipelineResult{
		OCR:       ocr,
		Parsed:    parsed,
		Compared:  compared,
		Formatted: formatted,
		QA:        qa,
	}, nil
}

func (c *Client) invoke(ctx context.Context, task string, payload map[string]any) (*agentResponse, error) {
	if !c.Available() {
		return nil, apperrors.StructuringUnavailable(fmt.Errorf("agent client not configured"))
	}

	body := make(map[string]any, len(payload)+1)
	for k, v := range payload {
		body[k] = v
	}
	body["task"] = task

	encoded, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("aiagent: encode %s request: %w", task, err)
	}

	url := fmt.Sprintf("%s/agents/%s/invoke", c.baseURL, c.agentID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("aiagent: create %s request: %w", task, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.StructuringUnavailable(fmt.Errorf("aiagent: %s request failed: %w", task, err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("aiagent: read %s response: %w", task, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, apperrors.StructuringUnavailable(
			fmt.Errorf("aiagent: %s returned %d: %s", task, resp.StatusCode, string(respBody)))
	}

	var parsed agentResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, apperrors.StructuringUnavailable(fmt.Errorf("aiagent: parse %s response: %w", task, err))
	}
	return &parsed, nil
}
