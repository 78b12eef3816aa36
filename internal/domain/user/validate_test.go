package user

import "testing"

func TestValidName(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want bool
	}{
		{"simple", "Alice", true},
		{"three letters exactly", "Bob", true},
		{"letters embedded in noise", "12Bobby34", true},
		{"too short", "Al", false},
		{"digits only", "12345", false},
		{"empty", "", false},
		{"short runs never add up", "a1b2c3", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ValidName(tc.in); got != tc.want {
				t.Fatalf("ValidName(%q) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestValidPassword(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want bool
	}{
		{"no special char", "abc12345", false},
		{"digit letter and special", "abc123!5", true},
		{"space counts as special", "abc123 5", true},
		{"too short", "a1!", false},
		{"too long", "abcdefg123456!aa", false},
		{"no digit", "abcdefg!", false},
		{"no letter", "1234567!", false},
		{"char outside alphabet", "abc123!5~", false},
		{"fifteen chars ok", "abcdefg123456!a", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ValidPassword(tc.in); got != tc.want {
				t.Fatalf("ValidPassword(%q) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}
