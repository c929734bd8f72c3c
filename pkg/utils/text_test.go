package utils

import "testing"

func TestTruncate(t *testing.T) {
	if Truncate("hello", 10) != "hello" {
		t.Error("short string unchanged")
	}
	if Truncate("hello world", 5) != "hello..." {
		t.Errorf("got %s", Truncate("hello world", 5))
	}
	if Truncate("x", 0) != "x" {
		t.Error("maxLen 0 returns as-is")
	}
}

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"ascii unchanged", "Shoei helmet", "Shoei helmet"},
		{"trims whitespace", "  kask  ", "kask"},
		{"arabic kaf unified", "كلاه", "کلاه"},
		{"arabic yeh unified", "موتوري", "موتوری"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeText(tt.in); got != tt.want {
				t.Errorf("NormalizeText(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestFoldForMatch(t *testing.T) {
	if FoldForMatch("  Shoei ") != "shoei" {
		t.Errorf("got %q", FoldForMatch("  Shoei "))
	}
}
