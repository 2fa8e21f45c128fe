package extract

// Canonicalization lookup tables. Loaded once at process start and
// treated as read-only for the lifetime of the process.

// monthNames maps Italian month names to their 1-based number
var monthNames = map[string]int{
	"gennaio":   1,
	"febbraio":  2,
	"marzo":     3,
	"aprile":    4,
	"maggio":    5,
	"giugno":    6,
	"luglio":    7,
	"agosto":    8,
	"settembre": 9,
	"ottobre":   10,
	"novembre":  11,
	"dicembre":  12,
}

// durationUnits maps Italian duration units (singular and plural) to
// canonical unit names
var durationUnits = map[string]string{
	"giorno":    "day",
	"giorni":    "day",
	"settimana": "week",
	"settimane": "week",
	"mese":      "month",
	"mesi":      "month",
	"anno":      "year",
	"anni":      "year",
}

// companyTypes maps Italian legal company forms to canonical codes
var companyTypes = map[string]string{
	"s.r.l.":            "SRL",
	"srl":                "SRL",
	"s.r.l.s.":           "SRLS",
	"srls":               "SRLS",
	"s.p.a.":             "SPA",
	"spa":                "SPA",
	"s.n.c.":             "SNC",
	"snc":                "SNC",
	"s.a.s.":             "SAS",
	"sas":                "SAS",
	"ditta individuale":  "DITTA_INDIVIDUALE",
	"impresa familiare":  "IMPRESA_FAMILIARE",
	"societa semplice":   "SS",
	"società semplice":   "SS",
}

// documentTypes maps fiscal document names to canonical codes
var documentTypes = map[string]string{
	"fattura elettronica":   "FATTURA_ELETTRONICA",
	"fattura":               "FATTURA",
	"nota di credito":       "NOTA_CREDITO",
	"nota di debito":        "NOTA_DEBITO",
	"f24":                   "F24",
	"modello 730":           "MODELLO_730",
	"modello redditi":       "MODELLO_REDDITI",
	"certificazione unica":  "CU",
	"dichiarazione iva":     "DICHIARAZIONE_IVA",
	"lipe":                  "LIPE",
	"esterometro":           "ESTEROMETRO",
}

// regimeCategories maps fiscal regimes and tax categories to canonical
// forms. Unmapped category text falls back to an uppercased token.
var regimeCategories = map[string]string{
	"regime forfettario":   "FORFETTARIO",
	"forfettario":          "FORFETTARIO",
	"forfetario":           "FORFETTARIO",
	"regime ordinario":     "ORDINARIO",
	"regime semplificato":  "SEMPLIFICATO",
	"iva":                  "IVA",
	"irpef":                "IRPEF",
	"ires":                 "IRES",
	"irap":                 "IRAP",
	"inps":                 "INPS",
	"gestione separata":    "GESTIONE_SEPARATA",
	"ritenuta d'acconto":   "RITENUTA_ACCONTO",
	"cedolare secca":       "CEDOLARE_SECCA",
	"bollo":                "BOLLO",
}

// regions maps Italian region names to canonical forms
var regions = map[string]string{
	"lombardia":             "LOMBARDIA",
	"lazio":                 "LAZIO",
	"campania":              "CAMPANIA",
	"veneto":                "VENETO",
	"piemonte":              "PIEMONTE",
	"sicilia":               "SICILIA",
	"toscana":               "TOSCANA",
	"emilia-romagna":        "EMILIA_ROMAGNA",
	"emilia romagna":        "EMILIA_ROMAGNA",
	"puglia":                "PUGLIA",
	"calabria":              "CALABRIA",
	"sardegna":              "SARDEGNA",
	"liguria":               "LIGURIA",
	"marche":                "MARCHE",
	"abruzzo":               "ABRUZZO",
	"umbria":                "UMBRIA",
	"basilicata":            "BASILICATA",
	"molise":                "MOLISE",
	"friuli-venezia giulia": "FRIULI_VENEZIA_GIULIA",
	"trentino-alto adige":   "TRENTINO_ALTO_ADIGE",
	"valle d'aosta":         "VALLE_D_AOSTA",
}

// cities maps major Italian city names to canonical forms
var cities = map[string]string{
	"roma":    "ROMA",
	"milano":  "MILANO",
	"napoli":  "NAPOLI",
	"torino":  "TORINO",
	"bologna": "BOLOGNA",
	"firenze": "FIRENZE",
	"genova":  "GENOVA",
	"palermo": "PALERMO",
	"bari":    "BARI",
	"venezia": "VENEZIA",
	"verona":  "VERONA",
	"padova":  "PADOVA",
}

// countries maps country names relevant to cross-border fiscal
// questions to canonical forms
var countries = map[string]string{
	"italia":     "ITALIA",
	"san marino": "SAN_MARINO",
	"svizzera":   "SVIZZERA",
	"francia":    "FRANCIA",
	"germania":   "GERMANIA",
	"spagna":     "SPAGNA",
	"austria":    "AUSTRIA",
}

// relativeExpressions maps relative temporal phrases to canonical tokens
var relativeExpressions = map[string]string{
	"entro fine anno":   "end_of_year",
	"entro fine mese":   "end_of_month",
	"il prossimo anno":  "next_year",
	"l'anno prossimo":   "next_year",
	"l'anno scorso":     "last_year",
	"quest'anno":        "this_year",
	"questo mese":       "this_month",
	"oggi":              "today",
	"domani":            "tomorrow",
	"ieri":              "yesterday",
}
