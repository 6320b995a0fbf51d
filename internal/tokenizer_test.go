package internal

import "testing"

func TestTokenizer(t *testing.T) {
	tok, err := NewTokenizer("")
	if err != nil {
		t.Fatalf("NewTokenizer() error: %v", err)
	}

	if tok.Encoding() != DefaultEncoding {
		t.Errorf("Encoding() = %q, want %q", tok.Encoding(), DefaultEncoding)
	}
	if n := tok.Count(""); n != 0 {
		t.Errorf("Count(\"\") = %d, want 0", n)
	}

	text := "The quick brown fox jumps over the lazy dog."
	first := tok.Count(text)
	if first <= 0 || first > len(text) {
		t.Errorf("Count() = %d, want between 1 and %d", first, len(text))
	}
	if second := tok.Count(text); second != first {
		t.Errorf("Count() is not deterministic: %d then %d", first, second)
	}
}

func TestTokenizerUnknownEncoding(t *testing.T) {
	if _, err := NewTokenizer("no_such_encoding"); err == nil {
		t.Error("NewTokenizer() with an unknown encoding should fail")
	}
}
