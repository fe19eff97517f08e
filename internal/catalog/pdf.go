// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"bytes"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// PDFInfo summarizes a downloaded document payload.
type PDFInfo struct {
	// Pages is the document page count.
	Pages int

	// Encrypted reports whether the document carries an encryption
	// dictionary.
	Encrypted bool
}

// Inspect validates a PDF payload and reports its page count. The catalog
// occasionally serves truncated or HTML error payloads with a 200 status;
// inspection is how those surface.
func Inspect(payload []byte) (*PDFInfo, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(payload), conf)
	if err != nil {
		return nil, fmt.Errorf("pdfcpu read: %w", err)
	}

	return &PDFInfo{
		Pages:     ctx.PageCount,
		Encrypted: ctx.XRefTable.Encrypt != nil,
	}, nil
}
