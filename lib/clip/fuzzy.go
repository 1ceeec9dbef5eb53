package clip

import (
	"sort"

	"github.com/junegunn/fzf/src/algo"
	"github.com/junegunn/fzf/src/util"
)

// fuzzySlab is reused across calls the way fzf's own finder reuses
// one per worker: allocating it per match is the dominant cost for
// small inputs like a chunk-name list.
var fuzzySlab = util.MakeSlab(100*1024, 2048)

// FuzzyFilter narrows names to those fzf's V2 algorithm scores above
// zero against pattern, sorted by descending score (ties broken by
// original order). An empty pattern returns names unchanged.
func FuzzyFilter(names []string, pattern string) []string {
	if pattern == "" {
		return names
	}
	runes := []rune(pattern)

	type scored struct {
		name  string
		score int
		index int
	}
	var matches []scored
	for i, name := range names {
		result, _ := algo.FuzzyMatchV2(false, true, util.RunesToChars([]rune(name)), runes, false, fuzzySlab)
		if result.Score > 0 {
			matches = append(matches, scored{name: name, score: int(result.Score), index: i})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].score > matches[j].score
	})

	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.name
	}
	return out
}
