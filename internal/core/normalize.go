package core

// normalize.go cleans up pasted or uploaded stock sheets before parsing.
//
// Spreadsheet exports arrive with a UTF-8 BOM, as UTF-16 with a BOM, with
// stray invalid bytes, or with decomposed accents ("e" + U+0301). All of
// these are folded into plain NFC UTF-8 so barcodes and descriptions
// compare equal no matter which tool produced the file.

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ErrInputTooLarge is returned when a batch exceeds the configured size.
var ErrInputTooLarge = errors.New("input too large: import data exceeds the size limit")

// NewInputReader wraps r so that BOM-marked UTF-16 is decoded, a UTF-8 BOM
// is dropped and invalid UTF-8 is replaced with U+FFFD.
func NewInputReader(r io.Reader) io.Reader {
	return transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
}

// ReadInput reads at most limit bytes from r and normalizes them.
// A limit of zero or less disables the check.
func ReadInput(r io.Reader, limit int64) (string, error) {
	if limit > 0 {
		r = io.LimitReader(r, limit+1)
	}
	raw, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	if limit > 0 && int64(len(raw)) > limit {
		return "", ErrInputTooLarge
	}
	return NormalizeInput(raw)
}

// NormalizeInput decodes data to NFC UTF-8.
func NormalizeInput(data []byte) (string, error) {
	decoded, err := io.ReadAll(NewInputReader(strings.NewReader(string(data))))
	if err != nil {
		return "", fmt.Errorf("encoding error: %w", err)
	}
	s := string(decoded)
	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, string(utf8.RuneError))
	}
	return norm.NFC.String(s), nil
}
