package utils

import "testing"

func TestGenerateOTP(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		code, err := GenerateOTP()
		if err != nil {
			t.Fatalf("generate otp: %v", err)
		}
		if len(code) != 6 {
			t.Fatalf("expected 6 digits, got %q", code)
		}
		for _, r := range code {
			if r < '0' || r > '9' {
				t.Fatalf("non-digit in otp %q", code)
			}
		}
		seen[code] = true
	}
	// 50 draws from a million values colliding into one would mean a broken generator
	if len(seen) < 2 {
		t.Fatalf("otp generator returned a constant value")
	}
}
