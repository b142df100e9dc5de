package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	s := New(Config{})
	ts := httptest.NewServer(s)
	t.Cleanup(ts.Close)
	return s, ts
}

func postJSON(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, r io.Reader) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(r).Decode(&v))
	return v
}

func TestRoot(t *testing.T) {
	_, ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode[map[string]string](t, resp.Body)
	assert.Contains(t, body["message"], "Scheduling simulator API")
}

func TestGetAlgorithms(t *testing.T) {
	_, ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/api/algorithms")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	algos := decode[[]AlgorithmInfo](t, resp.Body)
	ids := make([]string, len(algos))
	for i, a := range algos {
		ids[i] = a.ID
		assert.NotEmpty(t, a.Description)
	}
	for _, want := range []string{"SPT", "EDF", "Priority-First", "DPE (α=0.5)", "FCFS", "HRRN", "MLF"} {
		assert.Contains(t, ids, want)
	}
}

func TestGetScenarios(t *testing.T) {
	_, ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/api/scenarios")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	scenarios := decode[[]ScenarioInfo](t, resp.Body)
	require.Len(t, scenarios, 24)
	assert.Equal(t, "Light Load", scenarios[0].ID)
	assert.Equal(t, 2, scenarios[0].NumMachines)
	assert.NotEmpty(t, scenarios[0].Tasks)
}

func TestSimulate_FCFS(t *testing.T) {
	_, ts := newTestServer(t)
	resp := postJSON(t, ts.URL+"/api/simulate", `{
		"algorithm": "FCFS",
		"num_machines": 2,
		"tasks": [{"id": 1, "arrival_time": 0, "processing_time": 10, "priority": "HIGH",
		           "deadline": 20, "cpu_required": 1, "ram_required": 1}],
		"alpha": 0.7
	}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	result := decode[SimulationResult](t, resp.Body)
	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, "FCFS", result.Algorithm)
	assert.Equal(t, 1, result.TotalTasks)
	assert.Equal(t, 10.0, result.Makespan)
	require.Len(t, result.Tasks, 1)
	task := result.Tasks[0]
	assert.Equal(t, 1, task.ID)
	assert.Equal(t, "HIGH", task.Priority)
	require.NotNil(t, task.CompletionTime)
	assert.Equal(t, 10.0, *task.CompletionTime)
	assert.True(t, task.MeetsDeadline)
	assert.Len(t, result.Logs, 3)
}

func TestSimulate_GenericDPEUsesAlpha(t *testing.T) {
	_, ts := newTestServer(t)
	resp := postJSON(t, ts.URL+"/api/simulate", `{
		"algorithm": "DPE",
		"num_machines": 1,
		"alpha": 0.4,
		"tasks": [{"id": 1, "arrival_time": 0, "processing_time": 1, "priority": "LOW", "deadline": 5}]
	}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	result := decode[SimulationResult](t, resp.Body)
	assert.Equal(t, "DPE (α=0.4)", result.Algorithm)
}

func TestSimulate_NonPresetDPENameUsesAlpha(t *testing.T) {
	_, ts := newTestServer(t)
	tests := []struct {
		algorithm string
		alpha     string
		want      string
	}{
		{"DPE (α=0.4)", "0.4", "DPE (α=0.4)"},
		{"DPE-custom", "0.2", "DPE (α=0.2)"},
	}
	for _, tc := range tests {
		t.Run(tc.algorithm, func(t *testing.T) {
			body := `{"algorithm": "` + tc.algorithm + `", "num_machines": 1, "alpha": ` + tc.alpha + `,
				"tasks": [{"id": 1, "arrival_time": 0, "processing_time": 1, "priority": "LOW", "deadline": 5}]}`
			resp := postJSON(t, ts.URL+"/api/simulate", body)
			require.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Equal(t, tc.want, decode[SimulationResult](t, resp.Body).Algorithm)
		})
	}
}

func TestSimulate_StarvationScenario(t *testing.T) {
	_, ts := newTestServer(t)
	tasks := `[{"id": 1, "arrival_time": 0, "processing_time": 5, "priority": "LOW", "deadline": 16},
		{"id": 2, "arrival_time": 0, "processing_time": 2, "priority": "HIGH", "deadline": 20},
		{"id": 3, "arrival_time": 2, "processing_time": 2, "priority": "HIGH", "deadline": 22},
		{"id": 4, "arrival_time": 4, "processing_time": 2, "priority": "HIGH", "deadline": 24},
		{"id": 5, "arrival_time": 6, "processing_time": 2, "priority": "HIGH", "deadline": 26},
		{"id": 6, "arrival_time": 8, "processing_time": 2, "priority": "HIGH", "deadline": 28},
		{"id": 7, "arrival_time": 10, "processing_time": 2, "priority": "HIGH", "deadline": 30}]`

	pf := decode[SimulationResult](t, postJSON(t, ts.URL+"/api/simulate",
		`{"algorithm": "Priority-First", "num_machines": 1, "tasks": `+tasks+`}`).Body)
	assert.Equal(t, 0, pf.LowPriorityStats.MetDeadline)

	dpe := decode[SimulationResult](t, postJSON(t, ts.URL+"/api/simulate",
		`{"algorithm": "DPE (α=0.5)", "num_machines": 1, "tasks": `+tasks+`}`).Body)
	assert.Equal(t, 1, dpe.LowPriorityStats.MetDeadline)
	assert.Equal(t, 6, dpe.HighPriorityStats.MetDeadline)
}

func TestSimulate_ErrorStatuses(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantDetail string
	}{
		{"unknown algorithm", `{"algorithm": "Lottery", "num_machines": 1, "tasks": []}`,
			http.StatusNotFound, "Algorithm 'Lottery' not found"},
		{"malformed json", `{"algorithm": `, http.StatusBadRequest, "malformed request body"},
		{"zero machines", `{"algorithm": "EDF", "num_machines": 0, "tasks": []}`,
			http.StatusUnprocessableEntity, "at least one machine"},
		{"invalid alpha", `{"algorithm": "DPE", "num_machines": 1, "alpha": 2, "tasks": []}`,
			http.StatusUnprocessableEntity, "alpha"},
		{"bad priority", `{"algorithm": "EDF", "num_machines": 1, "tasks": [{"id": 1, "priority": "MEDIUM"}]}`,
			http.StatusBadRequest, "malformed request body"},
		{"duplicate ids", `{"algorithm": "EDF", "num_machines": 1, "tasks": [
			{"id": 1, "processing_time": 1, "priority": "HIGH", "deadline": 5},
			{"id": 1, "processing_time": 1, "priority": "LOW", "deadline": 5}]}`,
			http.StatusUnprocessableEntity, "duplicate task id"},
		{"too large for any machine", `{"algorithm": "EDF", "num_machines": 1, "tasks": [
			{"id": 1, "processing_time": 1, "priority": "HIGH", "deadline": 5, "cpu_required": 64}]}`,
			http.StatusUnprocessableEntity, "unschedulable"},
	}
	_, ts := newTestServer(t)
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp := postJSON(t, ts.URL+"/api/simulate", tc.body)
			assert.Equal(t, tc.wantStatus, resp.StatusCode)
			errResp := decode[ErrorResponse](t, resp.Body)
			assert.Contains(t, errResp.Detail, tc.wantDetail)
		})
	}
}

func TestSimulate_MethodNotAllowed(t *testing.T) {
	_, ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/api/simulate")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	_, ts := newTestServer(t)
	postJSON(t, ts.URL+"/api/simulate", `{"algorithm": "EDF", "num_machines": 1,
		"tasks": [{"id": 1, "processing_time": 3, "priority": "LOW", "deadline": 1}]}`)

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var buf bytes.Buffer
	_, err = io.Copy(&buf, resp.Body)
	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, `rtsched_simulations_total{outcome="ok",policy="EDF"} 1`)
	assert.Contains(t, out, `rtsched_deadline_misses_total{policy="EDF",priority="LOW"} 1`)
	assert.Contains(t, out, "rtsched_run_duration_seconds_bucket")
}
