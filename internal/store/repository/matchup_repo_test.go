package repository

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"testing"
)

// The filtered totals query is the only SQL here that joins two tables, so
// its aliased column references are checked against the schema instead of
// being trusted by eye.
func TestFilteredTotalsColumnsExistInSchema(t *testing.T) {
	schema, err := os.ReadFile("../schema.sql")
	if err != nil {
		t.Fatalf("read schema: %v", err)
	}

	columns := map[string]map[string]bool{
		"g": tableColumns(t, string(schema), "games"),
		"m": tableColumns(t, string(schema), "matchup_games"),
	}

	query := filteredTotalsQuery +
		fmt.Sprintf(filterByDecade, 4) +
		fmt.Sprintf(filterByPlayoff, 5) +
		" ORDER BY m.season_year, m.game_id"

	refs := regexp.MustCompile(`\b([gm])\.([a-z_]+)`).FindAllStringSubmatch(query, -1)
	if len(refs) == 0 {
		t.Fatal("no aliased column references found in query")
	}

	for _, ref := range refs {
		alias, column := ref[1], ref[2]
		if !columns[alias][column] {
			t.Errorf("query references %s.%s, which is not a column of the joined table", alias, column)
		}
	}
}

func tableColumns(t *testing.T, schema, table string) map[string]bool {
	t.Helper()

	re := regexp.MustCompile(`(?s)CREATE TABLE IF NOT EXISTS ` + table + ` \((.*?)\n\);`)
	match := re.FindStringSubmatch(schema)
	if match == nil {
		t.Fatalf("table %s not found in schema", table)
	}

	columns := make(map[string]bool)
	for _, line := range strings.Split(match[1], "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "UNIQUE", "CHECK", "PRIMARY", "FOREIGN", "CONSTRAINT":
			continue
		}
		columns[strings.ToLower(fields[0])] = true
	}
	return columns
}
