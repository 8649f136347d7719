package aiagent

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ehstaff/ehstaff-backend/internal/cv/domain"
	apperrors "github.com/ehstaff/ehstaff-backend/pkg/errors"
)

// fakeAgent records invocations and answers each task from canned data.
type fakeAgent struct {
	t         *testing.T
	lastAuth  string
	lastPath  string
	tasks     []string
	payloads  map[string]map[string]any
	responses map[string]map[string]any
	status    int
}

func (f *fakeAgent) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f.lastAuth = r.Header.Get("Authorization")
		f.lastPath = r.URL.Path

		var body map[string]any
		require.NoError(f.t, json.NewDecoder(r.Body).Decode(&body))
		task, _ := body["task"].(string)
		f.tasks = append(f.tasks, task)
		if f.payloads == nil {
			f.payloads = make(map[string]map[string]any)
		}
		f.payloads[task] = body

		if f.status != 0 {
			http.Error(w, "agent unavailable", f.status)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"data": f.responses[task]})
	}
}

func newTestClient(t *testing.T, agent *fakeAgent) (*Client, *httptest.Server) {
	srv := httptest.NewServer(agent.handler())
	t.Cleanup(srv.Close)
	return New(srv.URL, "agent-1", "secret-key", 5*time.Second), srv
}

func TestConvertToStructuredData(t *testing.T) {
	agent := &fakeAgent{t: t, responses: map[string]map[string]any{
		TaskParseCV: {
			"parsed_data": map[string]any{
				"personalInfo": map[string]any{"firstName": "John", "lastName": "Smith"},
			},
			"errors": []string{"missing email"},
		},
	}}
	client, _ := newTestClient(t, agent)

	result, err := client.ConvertToStructuredData(context.Background(), "John Smith\nHead Chef")
	require.NoError(t, err)

	assert.Equal(t, "John", result.StructuredData.PersonalInfo.FirstName)
	assert.Equal(t, []string{"missing email"}, result.Errors)
	assert.Equal(t, "Bearer secret-key", agent.lastAuth)
	assert.Equal(t, "/agents/agent-1/invoke", agent.lastPath)
}

func TestExtractTextFromImageDefaultsConfidence(t *testing.T) {
	agent := &fakeAgent{t: t, responses: map[string]map[string]any{
		TaskOCR: {"text": "scanned text"},
	}}
	client, _ := newTestClient(t, agent)

	result, err := client.ExtractTextFromImage(context.Background(), []byte{0xFF, 0xD8})
	require.NoError(t, err)

	assert.Equal(t, "scanned text", result.Text)
	assert.Equal(t, 1.0, result.Confidence)
	assert.Contains(t, agent.payloads[TaskOCR], "image_base64")
}

func TestCompareAndAdjustFallsBackToInput(t *testing.T) {
	agent := &fakeAgent{t: t, responses: map[string]map[string]any{
		TaskCompareIntake: {"applied_rules": []string{"salary harmonized"}},
	}}
	client, _ := newTestClient(t, agent)

	in := domain.EmptyCandidate()
	in.PersonalInfo.FirstName = "Jane"

	result, err := client.CompareAndAdjustContent(context.Background(), in, map[string]any{"salary": "45000"})
	require.NoError(t, err)

	assert.Same(t, in, result.AdjustedData)
	assert.Equal(t, []string{"salary harmonized"}, result.AppliedRules)
	assert.Contains(t, agent.payloads[TaskCompareIntake], "original_data")
	assert.Contains(t, agent.payloads[TaskCompareIntake], "intake_form")
}

func TestApplyFormattingStandardsPayload(t *testing.T) {
	agent := &fakeAgent{t: t, responses: map[string]map[string]any{
		TaskFormatCV: {"formatted_cv": map[string]any{
			"personalInfo": map[string]any{"firstName": "Jane"},
		}},
	}}
	client, _ := newTestClient(t, agent)

	result, err := client.ApplyFormattingStandards(context.Background(), domain.EmptyCandidate(), map[string]any{"font": "Palatino"})
	require.NoError(t, err)

	assert.Equal(t, "Jane", result.FormattedData.PersonalInfo.FirstName)
	assert.Contains(t, agent.payloads[TaskFormatCV], "cv_data")
	assert.Contains(t, agent.payloads[TaskFormatCV], "template")
}

func TestPerformQualityAssuranceThreshold(t *testing.T) {
	tests := []struct {
		name   string
		score  float64
		passed bool
	}{
		{"above threshold", 0.92, true},
		{"at threshold", 0.8, true},
		{"below threshold", 0.79, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			agent := &fakeAgent{t: t, responses: map[string]map[string]any{
				TaskQA: {
					"qa_score":        tt.score,
					"issues":          []string{"missing dates"},
					"recommendations": []string{"add employment dates"},
				},
			}}
			client, _ := newTestClient(t, agent)

			result, err := client.PerformQualityAssurance(context.Background(), domain.EmptyCandidate())
			require.NoError(t, err)
			assert.Equal(t, tt.passed, result.Passed)
			assert.Equal(t, []string{"missing dates"}, result.Issues)
			assert.Equal(t, []string{"add employment dates"}, result.Recommendations)
		})
	}
}

func TestProcessCVChainsAllTasks(t *testing.T) {
	agent := &fakeAgent{t: t, responses: map[string]map[string]any{
		TaskParseCV: {"parsed_data": map[string]any{
			"personalInfo": map[string]any{"firstName": "John"},
		}},
		TaskCompareIntake: {"adjusted_data": map[string]any{
			"personalInfo": map[string]any{"firstName": "John"},
		}},
		TaskFormatCV: {"formatted_cv": map[string]any{
			"personalInfo": map[string]any{"firstName": "John", "jobTitle": "Head Chef"},
		}},
		TaskQA: {"qa_score": 0.95},
	}}
	client, _ := newTestClient(t, agent)

	result, err := client.ProcessCV(context.Background(), "John Smith", nil, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{TaskParseCV, TaskCompareIntake, TaskFormatCV, TaskQA}, agent.tasks)
	assert.Nil(t, result.OCR)
	assert.Equal(t, "Head Chef", result.Formatted.FormattedData.PersonalInfo.JobTitle)
	assert.True(t, result.QA.Passed)
}

func TestProcessCVRunsOCRForImages(t *testing.T) {
	agent := &fakeAgent{t: t, responses: map[string]map[string]any{
		TaskOCR: {"text": "Jane Doe\nButler"},
		TaskParseCV: {"parsed_data": map[string]any{
			"personalInfo": map[string]any{"firstName": "Jane"},
		}},
		TaskCompareIntake: {},
		TaskFormatCV:      {},
		TaskQA:            {"qa_score": 0.9},
	}}
	client, _ := newTestClient(t, agent)

	result, err := client.ProcessCV(context.Background(), "", []byte{0xFF, 0xD8, 0xFF}, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{TaskOCR, TaskParseCV, TaskCompareIntake, TaskFormatCV, TaskQA}, agent.tasks)
	require.NotNil(t, result.OCR)
	assert.Equal(t, "Jane Doe\nButler", result.OCR.Text)
	assert.Equal(t, "Jane Doe\nButler", agent.payloads[TaskParseCV]["text"])
}

func TestInvokeErrorIsStructuringUnavailable(t *testing.T) {
	agent := &fakeAgent{t: t, status: http.StatusBadGateway}
	client, _ := newTestClient(t, agent)

	_, err := client.ProcessCV(context.Background(), "text", nil, nil)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrStructuringUnavailable))
}

func TestUnconfiguredClient(t *testing.T) {
	client := New("", "", "", 0)

	assert.False(t, client.Available())

	_, err := client.ConvertToStructuredData(context.Background(), "text")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrStructuringUnavailable))
}
