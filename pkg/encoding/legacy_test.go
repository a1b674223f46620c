package encoding

import (
	"bytes"
	"io"
	"strings"
	"testing"
)

func TestLegacyRoundTrip(t *testing.T) {
	in := "Réacteur_Ø"
	enc := UTF8ToLegacy(in)
	if len(enc) != len([]rune(in)) {
		t.Fatalf("encoded length = %d, want one byte per rune (%d)", len(enc), len([]rune(in)))
	}
	if got := LegacyToUTF8(enc); got != in {
		t.Errorf("LegacyToUTF8 = %q, want %q", got, in)
	}
}

func TestLegacyReaderWriter(t *testing.T) {
	var buf bytes.Buffer
	w := NewLegacyWriter(&buf)
	if _, err := io.WriteString(w, "LABEL Café\n"); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if !bytes.Equal(buf.Bytes(), []byte("LABEL Caf\xe9\n")) {
		t.Fatalf("encoded = %q", buf.Bytes())
	}

	out, err := io.ReadAll(NewLegacyReader(&buf))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(out) != "LABEL Café\n" {
		t.Errorf("decoded = %q", out)
	}
}

func TestTrimBOM(t *testing.T) {
	if got := TrimBOM("\ufeffMSHX1"); got != "MSHX1" {
		t.Errorf("TrimBOM = %q", got)
	}
	if got := TrimBOM("MSHX1"); got != "MSHX1" {
		t.Errorf("TrimBOM changed plain input: %q", got)
	}
}

func TestNormalizeTexturePath(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{`DG\Panel.dds`, "dg/panel.dds"},
		{"dg/panel.dds", "dg/panel.dds"},
		{`  Textures\\Wing.DDS `, "textures/wing.dds"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := NormalizeTexturePath(tt.input); got != tt.expected {
			t.Errorf("NormalizeTexturePath(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestSplitPath(t *testing.T) {
	got := SplitPath(`C:\Orbiter/Textures\\dg\wing.dds`)
	want := []string{"C:", "Orbiter", "Textures", "dg", "wing.dds"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("SplitPath = %v, want %v", got, want)
	}
}
