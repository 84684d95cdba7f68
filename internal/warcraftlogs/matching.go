package warcraftlogs

import (
	"strings"
	"unicode"

	"github.com/agext/levenshtein"
	"github.com/raidledger/api/internal/model"
)

// similarityThreshold gates fuzzy matches; below it a pair is considered
// unrelated.
const similarityThreshold = 0.8

// MatchResult partitions a report's participants against a team roster.
type MatchResult struct {
	// Matched maps participant name to the matched toon's username.
	Matched map[string]string `json:"matched"`
	// Unmatched lists roster toons with no participant in the report.
	Unmatched []string `json:"unmatched"`
	// Unknown lists participants that match no roster toon.
	Unknown []string `json:"unknown"`
}

// normalizeName lowercases a name and strips every non-alphanumeric rune, so
// "Crîtzilla" and "critzilla" compare equal after accent folding upstream.
func normalizeName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// MatchParticipants reconciles report participants with team toons. Exact
// normalized matches win; remaining pairs are scored with levenshtein
// similarity and accepted above the threshold, best score first.
func MatchParticipants(participants []Participant, toons []model.Toon) MatchResult {
	result := MatchResult{Matched: make(map[string]string)}

	normalizedToons := make(map[string]string, len(toons))
	for _, toon := range toons {
		normalizedToons[normalizeName(toon.Username)] = toon.Username
	}
	matchedToons := make(map[string]bool, len(toons))

	var unresolved []Participant
	for _, p := range participants {
		norm := normalizeName(p.Name)
		if username, ok := normalizedToons[norm]; ok && !matchedToons[username] {
			result.Matched[p.Name] = username
			matchedToons[username] = true
			continue
		}
		unresolved = append(unresolved, p)
	}

	for _, p := range unresolved {
		norm := normalizeName(p.Name)
		bestScore := 0.0
		bestToon := ""
		for toonNorm, username := range normalizedToons {
			if matchedToons[username] {
				continue
			}
			score := levenshtein.Similarity(norm, toonNorm, nil)
			if score > bestScore {
				bestScore = score
				bestToon = username
			}
		}
		if bestScore >= similarityThreshold {
			result.Matched[p.Name] = bestToon
			matchedToons[bestToon] = true
		} else {
			result.Unknown = append(result.Unknown, p.Name)
		}
	}

	for _, toon := range toons {
		if !matchedToons[toon.Username] {
			result.Unmatched = append(result.Unmatched, toon.Username)
		}
	}

	return result
}
