package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/crucial707/threatwatch/internal/models"
	"github.com/crucial707/threatwatch/internal/search"
)

func TestRender(t *testing.T) {
	m := &models.Monitor{ID: "mon-1", Query: "acme (test) breach"}
	items := []search.ResultItem{
		{Title: "Leak report", URL: "https://example.com/a"},
		{Title: "Forum post", URL: "https://example.com/b"},
	}

	pdf := Render(m, items, time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))

	if !bytes.HasPrefix(pdf, []byte("%PDF-1.4")) {
		t.Errorf("missing PDF header: %q", pdf[:16])
	}
	if !bytes.HasSuffix(bytes.TrimSpace(pdf), []byte("%%EOF")) {
		t.Error("missing EOF marker")
	}
	// Content is an uncompressed text stream; parens in the query must be escaped.
	if !bytes.Contains(pdf, []byte(`acme \(test\) breach`)) {
		t.Error("query not rendered or not escaped")
	}
	if !bytes.Contains(pdf, []byte("Matches: 2")) {
		t.Error("item count not rendered")
	}
}

func TestRender_CapsItems(t *testing.T) {
	m := &models.Monitor{Query: "q"}
	items := make([]search.ResultItem, 50)
	for i := range items {
		items[i] = search.ResultItem{Title: "item"}
	}

	pdf := Render(m, items, time.Now())
	if !bytes.Contains(pdf, []byte("and 15 more")) {
		t.Error("overflow line missing")
	}
	if !bytes.Contains(pdf, []byte("Matches: 50")) {
		t.Error("full count missing")
	}
}

func TestFileName_UniquePerExecution(t *testing.T) {
	a := FileName("mon-1", time.Unix(0, 1))
	b := FileName("mon-1", time.Unix(0, 2))
	if a == b {
		t.Errorf("executions collide: %q", a)
	}
	if !strings.HasSuffix(a, ".pdf") || !strings.Contains(a, "mon-1") {
		t.Errorf("unexpected name: %q", a)
	}
}
