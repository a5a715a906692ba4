package identity

// FranchiseEntry maps a provider abbreviation to a franchise lineage and the
// current team identity to use on first sighting.
type FranchiseEntry struct {
	Franchise   string // lineage identity, city-independent
	DisplayName string
	City        string
}

// FranchiseTable is the sport-scoped abbreviation lookup. Unknown
// abbreviations are never guessed at; they come back "not found" and the row
// is skipped with a reason.
type FranchiseTable map[string]map[string]FranchiseEntry

// DefaultFranchiseTable covers the sports currently ingested. This is
// configuration data: extending a sport never touches registry logic.
func DefaultFranchiseTable() FranchiseTable {
	return FranchiseTable{
		"basketball_nba": {
			"ATL": {Franchise: "Hawks", DisplayName: "Atlanta Hawks", City: "Atlanta"},
			"BOS": {Franchise: "Celtics", DisplayName: "Boston Celtics", City: "Boston"},
			"BKN": {Franchise: "Nets", DisplayName: "Brooklyn Nets", City: "Brooklyn"},
			"CHA": {Franchise: "Hornets", DisplayName: "Charlotte Hornets", City: "Charlotte"},
			"CHI": {Franchise: "Bulls", DisplayName: "Chicago Bulls", City: "Chicago"},
			"CLE": {Franchise: "Cavaliers", DisplayName: "Cleveland Cavaliers", City: "Cleveland"},
			"DAL": {Franchise: "Mavericks", DisplayName: "Dallas Mavericks", City: "Dallas"},
			"DEN": {Franchise: "Nuggets", DisplayName: "Denver Nuggets", City: "Denver"},
			"DET": {Franchise: "Pistons", DisplayName: "Detroit Pistons", City: "Detroit"},
			"GSW": {Franchise: "Warriors", DisplayName: "Golden State Warriors", City: "San Francisco"},
			"HOU": {Franchise: "Rockets", DisplayName: "Houston Rockets", City: "Houston"},
			"IND": {Franchise: "Pacers", DisplayName: "Indiana Pacers", City: "Indianapolis"},
			"LAC": {Franchise: "Clippers", DisplayName: "Los Angeles Clippers", City: "Los Angeles"},
			"LAL": {Franchise: "Lakers", DisplayName: "Los Angeles Lakers", City: "Los Angeles"},
			"MEM": {Franchise: "Grizzlies", DisplayName: "Memphis Grizzlies", City: "Memphis"},
			"MIA": {Franchise: "Heat", DisplayName: "Miami Heat", City: "Miami"},
			"MIL": {Franchise: "Bucks", DisplayName: "Milwaukee Bucks", City: "Milwaukee"},
			"MIN": {Franchise: "Timberwolves", DisplayName: "Minnesota Timberwolves", City: "Minneapolis"},
			"NOP": {Franchise: "Pelicans", DisplayName: "New Orleans Pelicans", City: "New Orleans"},
			"NYK": {Franchise: "Knicks", DisplayName: "New York Knicks", City: "New York"},
			"OKC": {Franchise: "Thunder", DisplayName: "Oklahoma City Thunder", City: "Oklahoma City"},
			"ORL": {Franchise: "Magic", DisplayName: "Orlando Magic", City: "Orlando"},
			"PHI": {Franchise: "76ers", DisplayName: "Philadelphia 76ers", City: "Philadelphia"},
			"PHX": {Franchise: "Suns", DisplayName: "Phoenix Suns", City: "Phoenix"},
			"POR": {Franchise: "Trail Blazers", DisplayName: "Portland Trail Blazers", City: "Portland"},
			"SAC": {Franchise: "Kings", DisplayName: "Sacramento Kings", City: "Sacramento"},
			"SAS": {Franchise: "Spurs", DisplayName: "San Antonio Spurs", City: "San Antonio"},
			"TOR": {Franchise: "Raptors", DisplayName: "Toronto Raptors", City: "Toronto"},
			"UTA": {Franchise: "Jazz", DisplayName: "Utah Jazz", City: "Salt Lake City"},
			"WAS": {Franchise: "Wizards", DisplayName: "Washington Wizards", City: "Washington"},
		},
		"hockey_nhl": {
			"BOS": {Franchise: "Bruins", DisplayName: "Boston Bruins", City: "Boston"},
			"COL": {Franchise: "Avalanche", DisplayName: "Colorado Avalanche", City: "Denver"},
			"DET": {Franchise: "Red Wings", DisplayName: "Detroit Red Wings", City: "Detroit"},
			"EDM": {Franchise: "Oilers", DisplayName: "Edmonton Oilers", City: "Edmonton"},
			"NYR": {Franchise: "Rangers", DisplayName: "New York Rangers", City: "New York"},
			"TBL": {Franchise: "Lightning", DisplayName: "Tampa Bay Lightning", City: "Tampa"},
			"TOR": {Franchise: "Maple Leafs", DisplayName: "Toronto Maple Leafs", City: "Toronto"},
			"VGK": {Franchise: "Golden Knights", DisplayName: "Vegas Golden Knights", City: "Las Vegas"},
		},
	}
}

// Lookup resolves an abbreviation within a sport. The second return is false
// for sports or abbreviations the table does not know.
func (t FranchiseTable) Lookup(sport, abbrev string) (FranchiseEntry, bool) {
	byAbbrev, ok := t[sport]
	if !ok {
		return FranchiseEntry{}, false
	}
	entry, ok := byAbbrev[abbrev]
	return entry, ok
}

// ScoreboardRemap normalizes the authoritative scoreboard's abbreviations to
// the internal standard before comparison. The scoreboard provider shortens
// several keys inconsistently.
var ScoreboardRemap = map[string]map[string]string{
	"basketball_nba": {
		"GS":   "GSW",
		"SA":   "SAS",
		"NO":   "NOP",
		"NY":   "NYK",
		"UTAH": "UTA",
		"WSH":  "WAS",
		"PHO":  "PHX",
	},
	"hockey_nhl": {
		"TB":  "TBL",
		"VEG": "VGK",
	},
}

// RemapScoreboardAbbrev translates a scoreboard abbreviation to the internal
// one, passing unknown values through unchanged.
func RemapScoreboardAbbrev(sport, abbrev string) string {
	if table, ok := ScoreboardRemap[sport]; ok {
		if mapped, ok := table[abbrev]; ok {
			return mapped
		}
	}
	return abbrev
}
