// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"fmt"
	"strings"
	"testing"
)

func TestInspectMinimalPDF(t *testing.T) {
	info, err := Inspect(buildMinimalPDF("Inspection fixture"))
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if info.Pages != 1 {
		t.Errorf("Pages = %d, want 1", info.Pages)
	}
	if info.Encrypted {
		t.Error("Encrypted = true for plain fixture")
	}
}

func TestInspectRejectsGarbage(t *testing.T) {
	tests := []struct {
		name    string
		payload []byte
	}{
		{"html error page", []byte("<html><body>503 maintenance</body></html>")},
		{"empty", nil},
		{"truncated header", []byte("%PDF-1.4")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Inspect(tt.payload); err == nil {
				t.Error("Inspect accepted a non-PDF payload")
			}
		})
	}
}

// buildMinimalPDF assembles a single-page PDF with one text stream, valid
// enough for a strict parser: catalog object, page tree, page, content
// stream, font, xref table.
func buildMinimalPDF(text string) []byte {
	escaped := strings.NewReplacer(`\`, `\\`, "(", `\(`, ")", `\)`).Replace(text)
	stream := "BT\n/F1 12 Tf\n72 720 Td\n(" + escaped + ") Tj\nET"

	var b strings.Builder
	b.WriteString("%PDF-1.4\n")

	offsets := make([]int, 6)

	offsets[1] = b.Len()
	b.WriteString("1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n")

	offsets[2] = b.Len()
	b.WriteString("2 0 obj\n<< /Type /Pages /Kids [3 0 R] /Count 1 >>\nendobj\n")

	offsets[3] = b.Len()
	b.WriteString("3 0 obj\n<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Contents 4 0 R /Resources << /Font << /F1 5 0 R >> >> >>\nendobj\n")

	offsets[4] = b.Len()
	fmt.Fprintf(&b, "4 0 obj\n<< /Length %d >>\nstream\n%s\nendstream\nendobj\n", len(stream), stream)

	offsets[5] = b.Len()
	b.WriteString("5 0 obj\n<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>\nendobj\n")

	xrefOffset := b.Len()
	b.WriteString("xref\n0 6\n")
	b.WriteString("0000000000 65535 f \n")
	for i := 1; i <= 5; i++ {
		fmt.Fprintf(&b, "%010d 00000 n \n", offsets[i])
	}
	fmt.Fprintf(&b, "trailer\n<< /Size 6 /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", xrefOffset)

	return []byte(b.String())
}
