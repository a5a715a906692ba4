package matching

// trigramSet builds the set of overlapping 3-character substrings of s,
// padded with two leading and trailing spaces so short strings and word
// boundaries still produce comparable grams.
func trigramSet(s string) map[string]bool {
	if s == "" {
		return map[string]bool{}
	}
	padded := "  " + s + "  "
	runes := []rune(padded)
	grams := make(map[string]bool, len(runes))
	for i := 0; i+3 <= len(runes); i++ {
		grams[string(runes[i:i+3])] = true
	}
	return grams
}

// TrigramSimilarity returns the Jaccard similarity of the character-trigram
// sets of a and b, in [0,1]. Identical strings score 1, disjoint strings 0.
func TrigramSimilarity(a, b string) float64 {
	if a == b {
		if a == "" {
			return 0
		}
		return 1
	}

	setA := trigramSet(a)
	setB := trigramSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}

	intersection := 0
	for gram := range setA {
		if setB[gram] {
			intersection++
		}
	}

	union := len(setA) + len(setB) - intersection
	return float64(intersection) / float64(union)
}
