package extract

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dmarchetti/responsa/internal/model"
)

// candidate is a fact proposed by one matcher, with the span it
// consumed in the source text.
type candidate struct {
	start int
	end   int
	fact  model.AtomicFact
}

// matcher proposes facts of one category from raw text. Matchers are
// applied in order, most specific first; the extractor suppresses
// candidates whose span overlaps an already accepted match in the
// same category.
type matcher interface {
	Name() string
	Find(text string, now time.Time) []candidate
}

// regexMatcher is a matcher backed by a compiled pattern
type regexMatcher struct {
	name       string
	re         *regexp.Regexp
	confidence float64
	build      func(text string, loc []int, confidence float64, now time.Time) (model.AtomicFact, bool)
}

func (m *regexMatcher) Name() string { return m.name }

func (m *regexMatcher) Find(text string, now time.Time) []candidate {
	var out []candidate
	for _, loc := range m.re.FindAllStringSubmatchIndex(text, -1) {
		fact, ok := m.build(text, loc, m.confidence, now)
		if !ok {
			continue
		}
		out = append(out, candidate{start: loc[0], end: loc[1], fact: fact})
	}
	return out
}

// group returns the text of submatch n, or "" when it did not participate
func group(text string, loc []int, n int) string {
	if 2*n+1 >= len(loc) || loc[2*n] < 0 {
		return ""
	}
	return text[loc[2*n]:loc[2*n+1]]
}

// defaultMatchers holds the compiled pattern tables, built once at
// process start and never mutated afterwards.
var defaultMatchers = buildMatchers()

func buildMatchers() map[model.FactKind][]matcher {
	return map[model.FactKind][]matcher{
		model.KindMonetaryAmount:       monetaryMatchers(),
		model.KindDate:                 dateMatchers(),
		model.KindLegalEntity:          legalEntityMatchers(),
		model.KindProfessionalCategory: categoryMatchers(),
		model.KindGeographic:           geographicMatchers(),
	}
}

func monetaryMatchers() []matcher {
	return []matcher{
		// Amount with an appended fractional unit is tried before any
		// bare-amount pattern.
		&regexMatcher{
			name:       "amount_with_cents",
			re:         regexp.MustCompile(`(?i)\b(\d+(?:[.,]\d+)?)\s*euro\s+e\s+(\d{1,2})\s*centesim[oi]\b`),
			confidence: 0.95,
			build: func(text string, loc []int, conf float64, _ time.Time) (model.AtomicFact, bool) {
				whole, ok := parseLocalizedNumber(group(text, loc, 1))
				if !ok {
					return nil, false
				}
				cents, err := strconv.Atoi(group(text, loc, 2))
				if err != nil {
					return nil, false
				}
				return model.MonetaryAmount{
					FactBase: model.NewFactBase(text[loc[0]:loc[1]], loc[0], loc[1], conf),
					Amount:   whole + float64(cents)/100,
					Currency: "EUR",
				}, true
			},
		},
		&regexMatcher{
			name:       "amount_currency_suffix",
			re:         regexp.MustCompile(`(?i)\b(\d{1,3}(?:\.\d{3})+(?:,\d+)?|\d+(?:,\d+)?)\s*(?:euro|eur|€)`),
			confidence: 0.90,
			build:      buildAmount(1, "EUR", false),
		},
		&regexMatcher{
			name:       "amount_currency_prefix",
			re:         regexp.MustCompile(`€\s*(\d{1,3}(?:\.\d{3})+(?:,\d+)?|\d+(?:,\d+)?)`),
			confidence: 0.90,
			build:      buildAmount(1, "EUR", false),
		},
		&regexMatcher{
			name:       "percentage",
			re:         regexp.MustCompile(`(?i)\b(\d{1,3}(?:[.,]\d+)?)\s*(?:%|per\s?cento\b)`),
			confidence: 0.90,
			build:      buildAmount(1, "", true),
		},
		&wordNumberMatcher{confidence: 0.85},
		&regexMatcher{
			name:       "amount_thousands",
			re:         regexp.MustCompile(`\b\d{1,3}(?:\.\d{3})+(?:,\d+)?\b`),
			confidence: 0.70,
			build:      buildAmount(0, "", false),
		},
		&regexMatcher{
			name:       "amount_decimal_comma",
			re:         regexp.MustCompile(`\b\d+,\d+\b`),
			confidence: 0.60,
			build:      buildAmount(0, "", false),
		},
	}
}

// buildAmount returns a build function parsing submatch n as a
// localized number
func buildAmount(n int, currency string, percentage bool) func(string, []int, float64, time.Time) (model.AtomicFact, bool) {
	return func(text string, loc []int, conf float64, _ time.Time) (model.AtomicFact, bool) {
		v, ok := parseLocalizedNumber(group(text, loc, n))
		if !ok {
			return nil, false
		}
		return model.MonetaryAmount{
			FactBase:     model.NewFactBase(text[loc[0]:loc[1]], loc[0], loc[1], conf),
			Amount:       v,
			Currency:     currency,
			IsPercentage: percentage,
		}, true
	}
}

func dateMatchers() []matcher {
	return []matcher{
		&regexMatcher{
			name:       "date_month_name",
			re:         regexp.MustCompile(`(?i)\b(\d{1,2})°?\s+(gennaio|febbraio|marzo|aprile|maggio|giugno|luglio|agosto|settembre|ottobre|novembre|dicembre)(?:\s+(\d{4}))?\b`),
			confidence: 0.95,
			build: func(text string, loc []int, conf float64, now time.Time) (model.AtomicFact, bool) {
				day, _ := strconv.Atoi(group(text, loc, 1))
				month, ok := monthNumber(strings.ToLower(group(text, loc, 2)))
				if !ok {
					return nil, false
				}
				// A date without an explicit year defaults to the current year
				year := now.Year()
				if y := group(text, loc, 3); y != "" {
					year, _ = strconv.Atoi(y)
				}
				iso, ok := canonicalISODate(year, month, day)
				if !ok {
					return nil, false
				}
				return model.DateFact{
					FactBase: model.NewFactBase(text[loc[0]:loc[1]], loc[0], loc[1], conf),
					ISODate:  iso,
				}, true
			},
		},
		&regexMatcher{
			name:       "date_numeric",
			re:         regexp.MustCompile(`\b(\d{1,2})[/\-.](\d{1,2})[/\-.](\d{4})\b`),
			confidence: 0.90,
			build: func(text string, loc []int, conf float64, _ time.Time) (model.AtomicFact, bool) {
				day, _ := strconv.Atoi(group(text, loc, 1))
				month, _ := strconv.Atoi(group(text, loc, 2))
				year, _ := strconv.Atoi(group(text, loc, 3))
				iso, ok := canonicalISODate(year, month, day)
				if !ok {
					return nil, false
				}
				return model.DateFact{
					FactBase: model.NewFactBase(text[loc[0]:loc[1]], loc[0], loc[1], conf),
					ISODate:  iso,
				}, true
			},
		},
		&regexMatcher{
			name:       "tax_year",
			re:         regexp.MustCompile(`(?i)\banno\s+(?:d['’]imposta|fiscale)\s+(\d{4})\b`),
			confidence: 0.90,
			build: func(text string, loc []int, conf float64, _ time.Time) (model.AtomicFact, bool) {
				year, err := strconv.Atoi(group(text, loc, 1))
				if err != nil {
					return nil, false
				}
				return model.DateFact{
					FactBase: model.NewFactBase(text[loc[0]:loc[1]], loc[0], loc[1], conf),
					TaxYear:  year,
				}, true
			},
		},
		&regexMatcher{
			name:       "duration",
			re:         regexp.MustCompile(`(?i)\b(\d+)\s+(giorni|giorno|settimane|settimana|mesi|mese|anni|anno)\b`),
			confidence: 0.80,
			build: func(text string, loc []int, conf float64, _ time.Time) (model.AtomicFact, bool) {
				v, err := strconv.Atoi(group(text, loc, 1))
				if err != nil {
					return nil, false
				}
				unit, ok := durationUnits[strings.ToLower(group(text, loc, 2))]
				if !ok {
					return nil, false
				}
				return model.DateFact{
					FactBase:      model.NewFactBase(text[loc[0]:loc[1]], loc[0], loc[1], conf),
					DurationValue: float64(v),
					DurationUnit:  unit,
				}, true
			},
		},
		&regexMatcher{
			name:       "relative_expression",
			re:         regexp.MustCompile(`(?i)(` + tableAlternation(relativeExpressions) + `)`),
			confidence: 0.70,
			build: func(text string, loc []int, conf float64, _ time.Time) (model.AtomicFact, bool) {
				rel, ok := relativeExpressions[strings.ToLower(group(text, loc, 1))]
				if !ok {
					return nil, false
				}
				return model.DateFact{
					FactBase:           model.NewFactBase(text[loc[0]:loc[1]], loc[0], loc[1], conf),
					RelativeExpression: rel,
				}, true
			},
		},
		&regexMatcher{
			name:       "bare_year",
			re:         regexp.MustCompile(`\b((?:19|20)\d{2})\b`),
			confidence: 0.55,
			build: func(text string, loc []int, conf float64, _ time.Time) (model.AtomicFact, bool) {
				year, err := strconv.Atoi(group(text, loc, 1))
				if err != nil {
					return nil, false
				}
				return model.DateFact{
					FactBase: model.NewFactBase(text[loc[0]:loc[1]], loc[0], loc[1], conf),
					TaxYear:  year,
				}, true
			},
		},
	}
}

func legalEntityMatchers() []matcher {
	return []matcher{
		&regexMatcher{
			name:       "codice_fiscale",
			re:         regexp.MustCompile(`(?i)\b([a-z]{6}\d{2}[a-z]\d{2}[a-z]\d{3}[a-z])\b`),
			confidence: 0.95,
			build: func(text string, loc []int, conf float64, _ time.Time) (model.AtomicFact, bool) {
				return model.LegalEntity{
					FactBase:      model.NewFactBase(text[loc[0]:loc[1]], loc[0], loc[1], conf),
					EntityType:    "identifier",
					CanonicalForm: "CODICE_FISCALE",
					Identifier:    strings.ToUpper(group(text, loc, 1)),
				}, true
			},
		},
		&regexMatcher{
			name:       "partita_iva",
			re:         regexp.MustCompile(`(?i)\b(?:partita\s+iva|p\.?\s?iva)\s*:?\s*(\d{11})\b`),
			confidence: 0.95,
			build: func(text string, loc []int, conf float64, _ time.Time) (model.AtomicFact, bool) {
				return model.LegalEntity{
					FactBase:      model.NewFactBase(text[loc[0]:loc[1]], loc[0], loc[1], conf),
					EntityType:    "identifier",
					CanonicalForm: "PARTITA_IVA",
					Identifier:    group(text, loc, 1),
				}, true
			},
		},
		&regexMatcher{
			name:       "document_type",
			re:         regexp.MustCompile(`(?i)\b(` + tableAlternation(documentTypes) + `)\b`),
			confidence: 0.85,
			build:      buildTableEntity("document_type", documentTypes),
		},
		&regexMatcher{
			name:       "company_type_dotted",
			re:         regexp.MustCompile(`(?i)\bs\.(?:r\.l\.s\.|r\.l\.|p\.a\.|n\.c\.|a\.s\.)`),
			confidence: 0.90,
			build: func(text string, loc []int, conf float64, _ time.Time) (model.AtomicFact, bool) {
				raw := strings.ToLower(text[loc[0]:loc[1]])
				canonical, ok := companyTypes[raw]
				if !ok {
					// Fall back through the undotted form
					canonical, ok = companyTypes[strings.ReplaceAll(raw, ".", "")]
					if !ok {
						canonical = strings.ToUpper(strings.ReplaceAll(raw, ".", ""))
					}
				}
				return model.LegalEntity{
					FactBase:      model.NewFactBase(text[loc[0]:loc[1]], loc[0], loc[1], conf),
					EntityType:    "company_type",
					CanonicalForm: canonical,
				}, true
			},
		},
		&regexMatcher{
			name:       "company_type",
			re:         regexp.MustCompile(`(?i)\b(srls|srl|spa|snc|sas|ditta individuale|impresa familiare|societ[aà] semplice)\b`),
			confidence: 0.90,
			build:      buildTableEntity("company_type", companyTypes),
		},
	}
}

// buildTableEntity returns a build function canonicalizing the whole
// match through a lookup table, uppercasing unmapped values.
func buildTableEntity(entityType string, table map[string]string) func(string, []int, float64, time.Time) (model.AtomicFact, bool) {
	return func(text string, loc []int, conf float64, _ time.Time) (model.AtomicFact, bool) {
		raw := strings.ToLower(text[loc[0]:loc[1]])
		canonical, ok := table[raw]
		if !ok {
			canonical = strings.ToUpper(strings.ReplaceAll(raw, " ", "_"))
		}
		return model.LegalEntity{
			FactBase:      model.NewFactBase(text[loc[0]:loc[1]], loc[0], loc[1], conf),
			EntityType:    entityType,
			CanonicalForm: canonical,
		}, true
	}
}

func categoryMatchers() []matcher {
	return []matcher{
		&regexMatcher{
			name:       "fiscal_regime",
			re:         regexp.MustCompile(`(?i)\b(` + tableAlternation(regimeCategories) + `)\b`),
			confidence: 0.80,
			build: func(text string, loc []int, conf float64, _ time.Time) (model.AtomicFact, bool) {
				raw := strings.ToLower(text[loc[0]:loc[1]])
				canonical, ok := regimeCategories[raw]
				if !ok {
					canonical = strings.ToUpper(strings.ReplaceAll(raw, " ", "_"))
				}
				return model.ProfessionalCategory{
					FactBase:      model.NewFactBase(text[loc[0]:loc[1]], loc[0], loc[1], conf),
					Category:      raw,
					CanonicalForm: canonical,
				}, true
			},
		},
	}
}

func geographicMatchers() []matcher {
	return []matcher{
		geoMatcher("region", regions, 0.85),
		geoMatcher("city", cities, 0.80),
		geoMatcher("country", countries, 0.80),
	}
}

func geoMatcher(scope string, table map[string]string, conf float64) matcher {
	return &regexMatcher{
		name:       "geo_" + scope,
		re:         regexp.MustCompile(`(?i)\b(` + tableAlternation(table) + `)\b`),
		confidence: conf,
		build: func(text string, loc []int, conf float64, _ time.Time) (model.AtomicFact, bool) {
			canonical, ok := table[strings.ToLower(text[loc[0]:loc[1]])]
			if !ok {
				return nil, false
			}
			return model.GeographicInfo{
				FactBase:      model.NewFactBase(text[loc[0]:loc[1]], loc[0], loc[1], conf),
				Scope:         scope,
				CanonicalForm: canonical,
			}, true
		},
	}
}

// tableAlternation builds a regex alternation from the keys of a
// lookup table, longest first so RE2's leftmost-first alternation
// prefers the most specific entry.
func tableAlternation(table map[string]string) string {
	keys := make([]string, 0, len(table))
	for k := range table {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	for i, k := range keys {
		keys[i] = regexp.QuoteMeta(k)
	}
	return strings.Join(keys, "|")
}

// wordNumberMatcher finds runs of spelled-out Italian number words and
// canonicalizes them as the sum of the recognized words
// ("ventimila cinquecento" -> 20500).
type wordNumberMatcher struct {
	confidence float64
}

func (m *wordNumberMatcher) Name() string { return "amount_number_words" }

var wordToken = regexp.MustCompile(`[a-zA-ZàèéìòùÀÈÉÌÒÙ']+`)

func (m *wordNumberMatcher) Find(text string, _ time.Time) []candidate {
	tokens := wordToken.FindAllStringIndex(text, -1)

	var out []candidate
	i := 0
	for i < len(tokens) {
		word := strings.ToLower(text[tokens[i][0]:tokens[i][1]])
		if _, ok := parseNumberWord(word); !ok {
			i++
			continue
		}

		// Extend the run over further number words, allowing a
		// connective "e" between them
		start, end := tokens[i][0], tokens[i][1]
		j := i + 1
		for j < len(tokens) {
			next := strings.ToLower(text[tokens[j][0]:tokens[j][1]])
			if next == "e" && j+1 < len(tokens) {
				if _, ok := parseNumberWord(strings.ToLower(text[tokens[j+1][0]:tokens[j+1][1]])); ok {
					end = tokens[j+1][1]
					j += 2
					continue
				}
				break
			}
			if _, ok := parseNumberWord(next); !ok {
				break
			}
			end = tokens[j][1]
			j++
		}

		value, ok := parseNumberWords(text[start:end])
		if ok && value > 0 {
			// Trailing "euro" marks the run as a monetary amount
			currency := ""
			runEnd := end
			if j < len(tokens) {
				after := strings.ToLower(text[tokens[j][0]:tokens[j][1]])
				if after == "euro" || after == "eur" {
					currency = "EUR"
					runEnd = tokens[j][1]
				}
			}
			// A lone small word ("una", "tre") is almost always an
			// article or counter, not an amount
			if j == i+1 && value < 20 && currency == "" {
				i = j
				continue
			}
			out = append(out, candidate{
				start: start,
				end:   runEnd,
				fact: model.MonetaryAmount{
					FactBase: model.NewFactBase(text[start:runEnd], start, runEnd, m.confidence),
					Amount:   value,
					Currency: currency,
				},
			})
		}
		i = j
	}
	return out
}
