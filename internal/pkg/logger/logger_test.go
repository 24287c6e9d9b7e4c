package logger

import "testing"

func TestRedactEmail(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "jane@example.com", want: "j***@example.com"},
		{in: "a@b.com", want: "a***@b.com"},
		{in: "  padded@example.com ", want: "p***@example.com"},
		{in: "not-an-email", want: "***"},
		{in: "", want: "***"},
		{in: "@example.com", want: "***"},
	}

	for _, tt := range tests {
		if got := RedactEmail(tt.in); got != tt.want {
			t.Fatalf("RedactEmail(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
