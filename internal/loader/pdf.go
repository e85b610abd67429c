package loader

import (
	"bytes"
	"fmt"

	"github.com/jorge-barreto/augmentor/internal/failure"
	"github.com/ledongthuc/pdf"
)

func extractPDF(path string) (text string, err error) {
	// The pdf reader panics on some malformed files.
	defer func() {
		if r := recover(); r != nil {
			err = failure.External("loader", fmt.Errorf("reading %s: %v", path, r))
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return "", failure.External("loader", err)
	}
	defer f.Close()

	plain, err := r.GetPlainText()
	if err != nil {
		return "", failure.External("loader", err)
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(plain); err != nil {
		return "", failure.External("loader", err)
	}
	return buf.String(), nil
}
