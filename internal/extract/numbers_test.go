package extract

import "testing"

func TestParseLocalizedNumber(t *testing.T) {
	tests := []struct {
		input string
		want  float64
		ok    bool
	}{
		{"1.000,50", 1000.50, true},
		{"50.000", 50000, true},
		{"1.234.567", 1234567, true},
		{"22,5", 22.5, true},
		{"3.5", 3.5, true},
		{"100", 100, true},
		{"€ 250", 250, true},
		{"", 0, false},
		{"abc", 0, false},
	}

	for _, tt := range tests {
		got, ok := parseLocalizedNumber(tt.input)
		if ok != tt.ok {
			t.Errorf("parseLocalizedNumber(%q) ok = %v, want %v", tt.input, ok, tt.ok)
			continue
		}
		if ok && got != tt.want {
			t.Errorf("parseLocalizedNumber(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestParseNumberWords(t *testing.T) {
	tests := []struct {
		input string
		want  float64
		ok    bool
	}{
		{"ventimila cinquecento", 20500, true},
		{"duemila", 2000, true},
		{"mille", 1000, true},
		{"cento", 100, true},
		{"cinquecento", 500, true},
		{"ventuno", 21, true},
		{"ventotto", 28, true},
		{"quarantacinque", 45, true},
		{"duecentocinquanta", 250, true},
		{"tremilacinquecento", 3500, true},
		{"un milione", 1e6, true},
		{"due milioni", 2e6, true},
		{"trenta e cinque", 35, true},
		{"fattura", 0, false},
	}

	for _, tt := range tests {
		got, ok := parseNumberWords(tt.input)
		if ok != tt.ok {
			t.Errorf("parseNumberWords(%q) ok = %v, want %v", tt.input, ok, tt.ok)
			continue
		}
		if ok && got != tt.want {
			t.Errorf("parseNumberWords(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestIsDotThousands(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"50.000", true},
		{"1.234.567", true},
		{"3.5", false},
		{"1234.567", false},
		{"50", false},
	}

	for _, tt := range tests {
		if got := isDotThousands(tt.input); got != tt.want {
			t.Errorf("isDotThousands(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}
