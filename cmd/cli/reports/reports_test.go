package reports

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/crucial707/threatwatch/internal/models"
)

// captureOutput helps capture stdout during command execution.
func captureOutput(t *testing.T, fn func()) string {
	t.Helper()

	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	fn()

	_ = w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	_, _ = buf.ReadFrom(r)
	return buf.String()
}

func TestListReports_TableOutput(t *testing.T) {
	reports := []models.Report{
		{ID: "r-1", MonitorID: "m-1", ItemCount: 12, ArtifactLocation: "http://files/report-a.pdf", CreatedAt: time.Now()},
		{ID: "r-2", MonitorID: "m-2", ItemCount: 0, ArtifactLocation: "http://files/report-b.pdf", CreatedAt: time.Now()},
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/reports" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(reports)
	}))
	defer srv.Close()

	_ = os.Setenv("THREATWATCH_API_URL", srv.URL)
	_ = os.Setenv("THREATWATCH_TOKEN", "test-token")
	defer os.Unsetenv("THREATWATCH_API_URL")
	defer os.Unsetenv("THREATWATCH_TOKEN")

	cmd := listReportsCmd()

	out := captureOutput(t, func() {
		cmd.Run(cmd, []string{})
	})

	if !strings.Contains(out, "report-a.pdf") || !strings.Contains(out, "report-b.pdf") {
		t.Fatalf("expected artifacts in output, got: %s", out)
	}
}
