package http

import (
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"strings"

	"housesplit/internal/core"
)

const maxBodyBytes = 1 << 20

// parseBlocks reads the three text blocks from a JSON body or a form post.
func parseBlocks(w http.ResponseWriter, r *http.Request) (core.Blocks, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	if isJSON(r.Header.Get("Content-Type")) {
		var b core.Blocks
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&b); err != nil {
			return core.Blocks{}, fmt.Errorf("decode json body: %w", err)
		}
		return sanitizeBlocks(b), nil
	}

	if err := r.ParseForm(); err != nil {
		return core.Blocks{}, fmt.Errorf("parse form: %w", err)
	}
	return sanitizeBlocks(core.Blocks{
		Families: r.PostForm.Get("families"),
		Stays:    r.PostForm.Get("stays"),
		Expenses: r.PostForm.Get("expenses"),
	}), nil
}

func sanitizeBlocks(b core.Blocks) core.Blocks {
	return core.Blocks{
		Families: sanitizeInput(b.Families),
		Stays:    sanitizeInput(b.Stays),
		Expenses: sanitizeInput(b.Expenses),
	}
}

// sanitizeInput drops control characters other than tab and line breaks.
func sanitizeInput(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, s)
}

func isJSON(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	return err == nil && mt == "application/json"
}

// wantsJSON reports whether the client asked for a JSON response.
func wantsJSON(r *http.Request) bool {
	if r.URL.Query().Get("format") == "json" {
		return true
	}
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		return true
	}
	return isJSON(r.Header.Get("Content-Type"))
}
