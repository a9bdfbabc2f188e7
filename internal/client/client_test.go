package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RevCBH/planrate/internal/dataset"
	"github.com/RevCBH/planrate/internal/feedback"
	"github.com/RevCBH/planrate/internal/plan"
)

const samplePlan = `{
	"session_id": "sess-1234567890",
	"plan_text": "1. pick up A\n2. stack A on B",
	"steps": [
		{"step_id": "step-1", "step_number": 1, "step_content": "pick up A"},
		{"step_id": "step-2", "step_number": 2, "step_content": "stack A on B"}
	],
	"metadata": {"model": "test-model"}
}`

func TestClient_Generate(t *testing.T) {
	var received plan.GenerateRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/generate-plan", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.Write([]byte(samplePlan))
	}))
	defer server.Close()

	c := New(server.URL+"/", "http://unused")
	p, err := c.Generate(context.Background(), plan.NewGenerateRequest("Stack block A on block B"))
	require.NoError(t, err)

	assert.Equal(t, "Stack block A on block B", received.Prompt)
	assert.Equal(t, plan.DefaultTemperature, received.Temperature)
	assert.Equal(t, plan.DefaultMaxTokens, received.MaxTokens)

	assert.Equal(t, "sess-1234567890", p.SessionID)
	require.Len(t, p.Steps, 2)
	assert.Equal(t, "step-2", p.Steps[1].StepID)
	assert.Equal(t, "test-model", p.Metadata["model"])
}

func TestClient_GenerateShortPromptSkipsNetwork(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	c := New(server.URL, server.URL)
	_, err := c.Generate(context.Background(), plan.NewGenerateRequest("short"))

	var reqErr *plan.RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, "Prompt must be at least 10 characters long.", reqErr.Error())
	assert.False(t, called, "no request should be sent")
}

func TestClient_GenerateRejectsMalformedPlan(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"session_id":"s","plan_text":"","steps":[
			{"step_id":"a","step_number":1,"step_content":"x"},
			{"step_id":"a","step_number":2,"step_content":"y"}]}`))
	}))
	defer server.Close()

	_, err := New(server.URL, server.URL).Generate(context.Background(), plan.NewGenerateRequest("a long enough prompt"))

	var remote *RemoteError
	require.ErrorAs(t, err, &remote)
	assert.ErrorIs(t, err, plan.ErrDuplicateStepID)
	assert.Equal(t, "Failed to generate plan. Please try again.", remote.UserMessage())
}

func TestClient_GenerateDetail(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{"string detail", 500, `{"detail":"Error generating plan: model overloaded"}`, "Error generating plan: model overloaded"},
		{"list detail", 422, `{"detail":[{"loc":["body","prompt"],"msg":"too short"}]}`, "too short"},
		{"no detail", 502, `<html>bad gateway</html>`, "Failed to generate plan. Please try again."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := New(server.URL, server.URL).Generate(context.Background(), plan.NewGenerateRequest("a long enough prompt"))

			var remote *RemoteError
			require.ErrorAs(t, err, &remote)
			assert.Equal(t, tt.status, remote.Status)
			assert.Equal(t, tt.message, UserMessage(err))
		})
	}
}

func TestClient_GenerateUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := New(url, url).Generate(context.Background(), plan.NewGenerateRequest("a long enough prompt"))

	var remote *RemoteError
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, 0, remote.Status)
	assert.NotNil(t, remote.Unwrap())
	assert.Equal(t, "Failed to generate plan. Please try again.", UserMessage(err))
}

func TestClient_Submit(t *testing.T) {
	var received map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/submit-feedback", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.Write([]byte(`{"success":true,"file_path":"archive.db#01J","dataset":{
			"session_id":"sess-1","human_feedback":[
				{"step_id":"step-1","step_number":1,"step_content":"pick up A","rating":"positive","reason":null}],
			"aggregated_metrics":{"total_steps":1,"positive_ratings":1,"negative_ratings":0,"overall_score":1.0}}}`))
	}))
	defer server.Close()

	c := New("http://unused", server.URL)
	result, err := c.Submit(context.Background(), dataset.Submission{
		SessionID: "sess-1",
		Prompt:    "Stack block A on block B",
		PlanText:  "1. pick up A",
		Feedback: []feedback.Record{
			{StepID: "step-1", StepNumber: 1, StepContent: "pick up A", Rating: feedback.RatingPositive},
		},
		Metadata: map[string]any{},
	})
	require.NoError(t, err)

	assert.Equal(t, "sess-1", received["session_id"])
	items := received["feedback"].([]any)
	require.Len(t, items, 1)
	item := items[0].(map[string]any)
	assert.Contains(t, item, "reason")
	assert.Nil(t, item["reason"])

	assert.Equal(t, "archive.db#01J", result.FilePath)
	assert.Equal(t, 100, result.Dataset.AggregatedMetrics.ScorePercent())
	assert.Len(t, result.Dataset.Items(), 1)
}

func TestClient_SubmitFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := New(server.URL, server.URL).Submit(context.Background(), dataset.Submission{SessionID: "s"})
	assert.Equal(t, "Failed to submit feedback. Please try again.", UserMessage(err))
}

func TestClient_SubmitWithoutDataset(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":false}`))
	}))
	defer server.Close()

	_, err := New(server.URL, server.URL).Submit(context.Background(), dataset.Submission{SessionID: "s"})
	var remote *RemoteError
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, OpSubmit, remote.Op)
}

func TestClient_Export(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/export-dataset/sess 1", r.URL.Path)
		assert.Equal(t, "csv", r.URL.Query().Get("format"))
		w.Header().Set("Content-Type", "text/csv")
		w.Write([]byte("session_id,step_id\n"))
	}))
	defer server.Close()

	body, err := New(server.URL, server.URL).Export(context.Background(), "sess 1", dataset.FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "session_id,step_id\n", string(body))
}

func TestClient_ExportNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"detail":"Dataset not found"}`))
	}))
	defer server.Close()

	_, err := New(server.URL, server.URL).Export(context.Background(), "missing", "")
	assert.Equal(t, "Dataset not found", UserMessage(err))
}

func TestClient_ExportRequiresSession(t *testing.T) {
	_, err := New("http://x", "http://x").Export(context.Background(), "", dataset.FormatJSON)
	assert.ErrorIs(t, err, ErrEmptySessionID)
}

func TestClient_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(server.URL, server.URL).Generate(ctx, plan.NewGenerateRequest("a long enough prompt"))
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestUserMessage(t *testing.T) {
	assert.Equal(t, "", UserMessage(nil))
	assert.Equal(t, "plain", UserMessage(errors.New("plain")))
	assert.Equal(t, "Failed to export dataset. Please try again.", (&RemoteError{Op: OpExport}).UserMessage())
}
