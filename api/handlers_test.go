package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"devopsctl/runner"
	"devopsctl/runner/storage"
)

func newTestServer(t *testing.T) (*Server, *storage.Storage) {
	t.Helper()

	store, err := storage.NewStorage(":memory:")
	if err != nil {
		t.Fatalf("NewStorage: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	versionFile := filepath.Join(t.TempDir(), "VERSION")
	if err := os.WriteFile(versionFile, []byte("0.1.0\n"), 0644); err != nil {
		t.Fatalf("failed to write version file: %v", err)
	}

	cfg := &runner.Config{
		Package:     "svc",
		VersionFile: versionFile,
		ArtifactDir: filepath.Join(t.TempDir(), "dist"),
	}

	pipeline := runner.New(0)
	for _, name := range []string{"lint", "test"} {
		err := pipeline.Register(runner.Stage{
			Name: name,
			Action: func(ctx context.Context, rc runner.RunContext) (int, string, error) {
				return 0, "", nil
			},
		})
		if err != nil {
			t.Fatalf("Register: %v", err)
		}
	}

	return NewServer(cfg, pipeline, store), store
}

func TestGetStages(t *testing.T) {
	server, _ := newTestServer(t)
	ts := httptest.NewServer(server.Router())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/stages")
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var body struct {
		Package string   `json:"package"`
		Stages  []string `json:"stages"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Package != "svc" || len(body.Stages) != 2 || body.Stages[0] != "lint" {
		t.Errorf("body = %+v", body)
	}
}

func TestGetRunsEmpty(t *testing.T) {
	server, _ := newTestServer(t)
	ts := httptest.NewServer(server.Router())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/runs")
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
}

func TestGetRunNotFound(t *testing.T) {
	server, _ := newTestServer(t)
	ts := httptest.NewServer(server.Router())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/runs/12345")
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestPostRunUnknownStage(t *testing.T) {
	server, _ := newTestServer(t)
	ts := httptest.NewServer(server.Router())
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/api/run", "application/json", strings.NewReader(`{"stage":"deploy"}`))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestPostRunTriggersRun(t *testing.T) {
	server, store := newTestServer(t)
	ts := httptest.NewServer(server.Router())
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/api/run", "application/json", strings.NewReader(`{}`))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", resp.StatusCode)
	}

	// The run executes in the background; wait for it to be recorded.
	deadline := time.After(2 * time.Second)
	for {
		runs, err := store.GetRuns(10)
		if err != nil {
			t.Fatalf("GetRuns: %v", err)
		}
		if len(runs) == 1 && runs[0].Status != "running" {
			if runs[0].Status != "success" {
				t.Errorf("run status = %q, want success", runs[0].Status)
			}
			return
		}

		select {
		case <-deadline:
			t.Fatal("run was not recorded in time")
		case <-time.After(20 * time.Millisecond):
		}
	}
}
