package normalize

// Resolver maps normalized name variants to their canonical normalized form.
// The table is data, not logic: extending coverage never touches matching
// code. Inputs that are already canonical, or have no entry, pass through
// unchanged.
type Resolver struct {
	aliases map[string]string
	norm    *Normalizer
}

// NewResolver creates a Resolver over the given normalizer. If aliases is
// nil the built-in table is used.
func NewResolver(norm *Normalizer, aliases map[string]string) *Resolver {
	if aliases == nil {
		aliases = defaultAliases
	}
	return &Resolver{aliases: aliases, norm: norm}
}

// Canonical returns the canonical form of an already-normalized string.
func (r *Resolver) Canonical(normalized string) string {
	if canonical, ok := r.aliases[normalized]; ok {
		return canonical
	}
	return normalized
}

// CanonicalName normalizes a raw name and resolves it in one step. This is
// the form both matchers compare.
func (r *Resolver) CanonicalName(raw string) string {
	return r.Canonical(r.norm.Normalize(raw))
}

// defaultAliases covers provider-specific shorthand whose normalized form
// still differs from the canonical team name. Keys and values are normalized
// strings (the normalizer already expands "la"/"ny"/"okc" style prefixes, so
// only irregular variants need entries here).
var defaultAliases = map[string]string{
	// NBA
	"oklahoma city":          "oklahoma city thunder",
	"golden state":           "golden state warriors",
	"sixers":                 "philadelphia 76ers",
	"philadelphia sixers":    "philadelphia 76ers",
	"blazers":                "portland trail blazers",
	"portland blazers":       "portland trail blazers",
	"cavs":                   "cleveland cavaliers",
	"mavs":                   "dallas mavericks",
	"wolves":                 "minnesota timberwolves",
	"minnesota wolves":       "minnesota timberwolves",
	// NHL
	"las vegas golden knights": "vegas golden knights",
	"tampa bay":              "tampa bay lightning",
	// MLB
	"chi sox":                "chicago white sox",
	"d backs":                "arizona diamondbacks",
	"dbacks":                 "arizona diamondbacks",
}
