// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"bytes"
	"testing"

	"github.com/klauspost/compress/zip"
)

// Zip builds an in-memory zip archive from alternating path and content
// arguments, preserving argument order.
func Zip(t testing.TB, pathsAndContents ...string) []byte {
	t.Helper()
	if len(pathsAndContents)%2 != 0 {
		t.Fatalf("Zip: odd number of arguments (%d)", len(pathsAndContents))
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for i := 0; i < len(pathsAndContents); i += 2 {
		w, err := zw.Create(pathsAndContents[i])
		if err != nil {
			t.Fatalf("Zip: create %s: %v", pathsAndContents[i], err)
		}
		if _, err := w.Write([]byte(pathsAndContents[i+1])); err != nil {
			t.Fatalf("Zip: write %s: %v", pathsAndContents[i], err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("Zip: close: %v", err)
	}
	return buf.Bytes()
}

// IndexHTML is a minimal entry document referencing /index.tsx.
const IndexHTML = `<html><head></head><body><script type="module" src="/index.tsx"></script></body></html>`
