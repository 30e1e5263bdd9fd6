package main

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/njchilds90/gosymint/mcp"
	"github.com/njchilds90/gosymint/risch"
	log "github.com/sirupsen/logrus"
)

func testServer(t *testing.T) *httptest.Server {
	t.Helper()
	logger := log.New()
	logger.SetOutput(io.Discard)
	srv := httptest.NewServer(newMux(mcp.NewHandler(risch.New(risch.DefaultOptions()), logger), logger))
	t.Cleanup(srv.Close)
	return srv
}

func TestTool_Post(t *testing.T) {
	srv := testServer(t)
	body := `{"tool":"integrate","params":{"expr":"1/x","var":"x"}}`
	res, err := http.Post(srv.URL+"/tool", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	defer res.Body.Close()
	var resp mcp.ToolResponse
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.String != "ln(x)" {
		t.Errorf("want ln(x), got %s (%s)", resp.String, resp.Error)
	}
}

func TestTool_RejectsBadRequests(t *testing.T) {
	srv := testServer(t)
	for _, body := range []string{
		`{"tool":"diff","bogus":1}`,
		`{"tool":"diff"}{"tool":"diff"}`,
		`not json`,
	} {
		res, err := http.Post(srv.URL+"/tool", "application/json", strings.NewReader(body))
		if err != nil {
			t.Fatal(err)
		}
		res.Body.Close()
		if res.StatusCode != http.StatusBadRequest {
			t.Errorf("%s: want 400, got %d", body, res.StatusCode)
		}
	}
}

func TestTool_MethodNotAllowed(t *testing.T) {
	srv := testServer(t)
	res, err := http.Get(srv.URL + "/tool")
	if err != nil {
		t.Fatal(err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("want 405, got %d", res.StatusCode)
	}
}

func TestSchemaAndHealth(t *testing.T) {
	srv := testServer(t)
	for _, path := range []string{"/schema", "/health"} {
		res, err := http.Get(srv.URL + path)
		if err != nil {
			t.Fatal(err)
		}
		var v map[string]any
		err = json.NewDecoder(res.Body).Decode(&v)
		res.Body.Close()
		if err != nil {
			t.Errorf("%s: %v", path, err)
		}
	}
}
