package common

import "testing"

func TestConstantTimeEquals(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want bool
	}{
		{"equal strings", "gateway-secret", "gateway-secret", true},
		{"both empty", "", "", true},
		{"different values same length", "abc", "abd", false},
		{"different lengths", "secret", "secret-but-longer", false},
		{"one empty", "secret", "", false},
		{"unicode", "пароль", "пароль", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ConstantTimeEquals(tt.a, tt.b); got != tt.want {
				t.Errorf("ConstantTimeEquals(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}
