// Package encoding provides text encoding utilities for Orbiter mesh files.
package encoding

import (
	"io"
	"strings"

	xencoding "golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// bom is the UTF-8 byte order mark some editors put in front of mesh files.
const bom = "\ufeff"

// LegacyToUTF8 converts Windows-1252 encoded bytes to a UTF-8 string.
// Returns the original string if conversion fails.
func LegacyToUTF8(data []byte) string {
	result, _, err := transform.Bytes(charmap.Windows1252.NewDecoder(), data)
	if err != nil {
		return string(data)
	}
	return string(result)
}

// UTF8ToLegacy converts a UTF-8 string to Windows-1252. Characters without
// a Windows-1252 form are replaced.
func UTF8ToLegacy(s string) []byte {
	result, _, err := transform.Bytes(legacyEncoder(), []byte(s))
	if err != nil {
		return []byte(s)
	}
	return result
}

// NewLegacyReader decodes a Windows-1252 stream to UTF-8.
func NewLegacyReader(r io.Reader) io.Reader {
	return charmap.Windows1252.NewDecoder().Reader(r)
}

// NewLegacyWriter encodes UTF-8 written to it as Windows-1252. The caller
// must Close it to flush buffered output.
func NewLegacyWriter(w io.Writer) io.WriteCloser {
	return transform.NewWriter(w, legacyEncoder())
}

func legacyEncoder() *xencoding.Encoder {
	return xencoding.ReplaceUnsupported(charmap.Windows1252.NewEncoder())
}

// TrimBOM removes a leading UTF-8 byte order mark.
func TrimBOM(s string) string {
	return strings.TrimPrefix(s, bom)
}

// SplitPath splits a texture or file path on both slash kinds and drops
// empty components.
func SplitPath(path string) []string {
	return strings.FieldsFunc(path, func(r rune) bool {
		return r == '/' || r == '\\'
	})
}

// NormalizeTexturePath normalizes a texture reference for comparison.
// Mesh files use backslashes and Windows paths are case-insensitive.
func NormalizeTexturePath(path string) string {
	path = strings.TrimSpace(path)
	path = strings.Join(SplitPath(path), "/")
	return strings.ToLower(path)
}
