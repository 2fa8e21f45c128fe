package extract

import (
	"strconv"
	"strings"
)

// numberAtoms maps simple Italian number words to their values
var numberAtoms = map[string]float64{
	"zero":        0,
	"uno":         1,
	"un":          1,
	"una":         1,
	"due":         2,
	"tre":         3,
	"quattro":     4,
	"cinque":      5,
	"sei":         6,
	"sette":       7,
	"otto":        8,
	"nove":        9,
	"dieci":       10,
	"undici":      11,
	"dodici":      12,
	"tredici":     13,
	"quattordici": 14,
	"quindici":    15,
	"sedici":      16,
	"diciassette": 17,
	"diciotto":    18,
	"diciannove":  19,
	"venti":       20,
	"trenta":      30,
	"quaranta":    40,
	"cinquanta":   50,
	"sessanta":    60,
	"settanta":    70,
	"ottanta":     80,
	"novanta":     90,
	"cento":       100,
	"mille":       1000,
}

// elidedTens maps tens stems used before a vowel-initial unit
// (ventuno, trentotto) to their values
var elidedTens = map[string]float64{
	"vent":      20,
	"trent":     30,
	"quarant":   40,
	"cinquant":  50,
	"sessant":   60,
	"settant":   70,
	"ottant":    80,
	"novant":    90,
}

// parseLocalizedNumber canonicalizes a numeric string written with
// Italian separators to a float64. "1.000,50" -> 1000.50,
// "50.000" -> 50000, "22,5" -> 22.5, "3.5" -> 3.5.
func parseLocalizedNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, "€$ ")
	if s == "" {
		return 0, false
	}

	hasDot := strings.Contains(s, ".")
	hasComma := strings.Contains(s, ",")

	switch {
	case hasDot && hasComma:
		// Dots are thousands separators, comma is the decimal mark
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case hasComma:
		s = strings.Replace(s, ",", ".", 1)
	case hasDot:
		// A dot followed by exactly three digits per group is a
		// thousands separator ("50.000"), otherwise a decimal mark
		if isDotThousands(s) {
			s = strings.ReplaceAll(s, ".", "")
		}
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// isDotThousands reports whether s matches \d{1,3}(\.\d{3})+
func isDotThousands(s string) bool {
	groups := strings.Split(s, ".")
	if len(groups) < 2 {
		return false
	}
	if len(groups[0]) == 0 || len(groups[0]) > 3 {
		return false
	}
	for _, g := range groups[1:] {
		if len(g) != 3 {
			return false
		}
		for _, r := range g {
			if r < '0' || r > '9' {
				return false
			}
		}
	}
	return true
}

// parseNumberWords parses a phrase of Italian number words as the sum
// of its recognized words: "ventimila cinquecento" -> 20500. A
// standalone "milione"/"milioni" token multiplies the preceding group
// ("due milioni" -> 2000000). Returns false if no word in the phrase
// is a recognized number.
func parseNumberWords(phrase string) (float64, bool) {
	total, current := 0.0, 0.0
	recognized := false

	for _, word := range strings.Fields(strings.ToLower(phrase)) {
		word = strings.Trim(word, ".,;:")
		if word == "e" || word == "" {
			continue
		}
		if word == "milione" || word == "milioni" {
			if current == 0 {
				current = 1
			}
			total += current * 1e6
			current = 0
			recognized = true
			continue
		}
		if v, ok := parseNumberWord(word); ok {
			current += v
			recognized = true
		}
	}

	return total + current, recognized
}

// parseNumberWord parses a single, possibly compound, Italian number
// word: "cinquecento" -> 500, "ventimila" -> 20000, "duemilaquattro"
// -> 2004, "ventuno" -> 21.
func parseNumberWord(word string) (float64, bool) {
	if word == "" {
		return 0, false
	}
	if v, ok := numberAtoms[word]; ok {
		return v, true
	}

	// Millions: "milione"/"milioni" with an optional multiplier prefix
	for _, suffix := range []string{"milioni", "milione"} {
		if strings.HasSuffix(word, suffix) {
			prefix := strings.TrimSuffix(word, suffix)
			if prefix == "" || prefix == "un" {
				return 1e6, true
			}
			if v, ok := parseNumberWord(prefix); ok {
				return v * 1e6, true
			}
			return 0, false
		}
	}

	// Thousands: "<n>mila[rest]" or "mille[rest]"
	if idx := strings.Index(word, "mila"); idx > 0 {
		pre, ok := parseNumberWord(word[:idx])
		if !ok {
			return 0, false
		}
		rest := word[idx+len("mila"):]
		if rest == "" {
			return pre * 1000, true
		}
		if v, ok := parseNumberWord(rest); ok {
			return pre*1000 + v, true
		}
		return 0, false
	}
	if strings.HasPrefix(word, "mille") && word != "mille" {
		if v, ok := parseNumberWord(word[len("mille"):]); ok {
			return 1000 + v, true
		}
		return 0, false
	}

	// Hundreds: "[n]cento[rest]"
	if idx := strings.Index(word, "cento"); idx >= 0 {
		pre := 1.0
		if idx > 0 {
			v, ok := parseNumberWord(word[:idx])
			if !ok {
				return 0, false
			}
			pre = v
		}
		rest := word[idx+len("cento"):]
		if rest == "" {
			return pre * 100, true
		}
		if v, ok := parseNumberWord(rest); ok {
			return pre*100 + v, true
		}
		return 0, false
	}

	// Tens with a unit: full form ("ventidue") or elided before a
	// vowel ("ventuno", "ventotto")
	for stem, tens := range elidedTens {
		if !strings.HasPrefix(word, stem) {
			continue
		}
		rest := strings.TrimPrefix(word, stem)
		if v, ok := numberAtoms[rest]; ok && v < 10 {
			return tens + v, true
		}
		// Full tens form keeps the final vowel: "venti"+"due"
		for full, fv := range numberAtoms {
			if fv == tens && strings.HasPrefix(word, full) {
				if v, ok := numberAtoms[strings.TrimPrefix(word, full)]; ok && v < 10 {
					return tens + v, true
				}
			}
		}
	}

	return 0, false
}
