package crypto

import (
	"encoding/base64"
	"encoding/hex"
	"testing"
)

func TestGenerateSecret(t *testing.T) {
	tests := []struct {
		name      string
		n         int
		enc       Encoding
		wantBytes int
		decode    func(string) ([]byte, error)
	}{
		{"base64", 48, EncodingBase64, 48, base64.RawURLEncoding.DecodeString},
		{"default encoding", 32, "", 32, base64.RawURLEncoding.DecodeString},
		{"hex", 32, EncodingHex, 32, hex.DecodeString},
		{"raised to minimum", 8, EncodingHex, MinSecretBytes, hex.DecodeString},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := GenerateSecret(tt.n, tt.enc)
			if err != nil {
				t.Fatalf("GenerateSecret() error = %v", err)
			}
			b, err := tt.decode(s)
			if err != nil {
				t.Fatalf("decode %q: %v", s, err)
			}
			if len(b) != tt.wantBytes {
				t.Errorf("decoded length = %d, want %d", len(b), tt.wantBytes)
			}
		})
	}
}

func TestGenerateSecret_UnknownEncoding(t *testing.T) {
	if _, err := GenerateSecret(32, "base32"); err == nil {
		t.Error("GenerateSecret() should reject an unknown encoding")
	}
}

func TestGenerateSecret_Unique(t *testing.T) {
	seen := make(map[string]bool)

	for i := 0; i < 100; i++ {
		s, err := GenerateSecret(MinSecretBytes, EncodingBase64)
		if err != nil {
			t.Fatalf("GenerateSecret() error = %v", err)
		}
		if seen[s] {
			t.Error("Generated duplicate secret")
		}
		seen[s] = true
	}
}
