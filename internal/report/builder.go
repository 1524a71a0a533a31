// Package report renders a monitor's search results into a PDF artifact.
// The output is a deliberately minimal single-page document; layout polish
// belongs to a real rendering service, not this pipeline.
package report

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/crucial707/threatwatch/internal/models"
	"github.com/crucial707/threatwatch/internal/search"
)

// maxItems caps how many result lines fit on the single page.
const maxItems = 35

// Render produces the PDF bytes for one completed scan.
func Render(m *models.Monitor, items []search.ResultItem, generatedAt time.Time) []byte {
	lines := []string{
		"threatwatch scan report",
		fmt.Sprintf("Query: %s", m.Query),
		fmt.Sprintf("Generated: %s", generatedAt.UTC().Format(time.RFC3339)),
		fmt.Sprintf("Matches: %d", len(items)),
		"",
	}
	for i, it := range items {
		if i >= maxItems {
			lines = append(lines, fmt.Sprintf("... and %d more", len(items)-maxItems))
			break
		}
		line := it.Title
		if it.URL != "" {
			line += "  <" + it.URL + ">"
		}
		lines = append(lines, line)
	}
	return buildPDF(lines)
}

// FileName returns the artifact name for one scan execution. It embeds the
// execution timestamp, so a redelivered request produces a distinct artifact.
func FileName(monitorID string, executedAt time.Time) string {
	return fmt.Sprintf("report-%s-%d.pdf", monitorID, executedAt.UTC().UnixNano())
}

// buildPDF writes a single-page PDF with one Helvetica text line per entry.
func buildPDF(lines []string) []byte {
	var content bytes.Buffer
	content.WriteString("BT\n/F1 11 Tf\n72 740 Td\n")
	for i, line := range lines {
		if i > 0 {
			content.WriteString("0 -16 Td\n")
		}
		fmt.Fprintf(&content, "(%s) Tj\n", escapePDFText(line))
	}
	content.WriteString("ET\n")

	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 4 0 R >> >> /Contents 5 0 R >>",
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%sendstream", content.Len(), content.String()),
	}

	var out bytes.Buffer
	out.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = out.Len()
		fmt.Fprintf(&out, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := out.Len()
	fmt.Fprintf(&out, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&out, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&out, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return out.Bytes()
}

func escapePDFText(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`, "\n", " ", "\r", " ")
	return r.Replace(s)
}
