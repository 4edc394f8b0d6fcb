package fuzzy

import "sort"

type MessageGroup struct {
	Template string   `json:"template"`
	Count    int      `json:"count"`
	Samples  []string `json:"samples"`
}

const DefaultSimilarityThreshold = 0.85
const maxSamplesPerGroup = 3

func Group(messages []string) []MessageGroup {
	return GroupWithThreshold(messages, DefaultSimilarityThreshold)
}

// GroupWithThreshold clusters messages by normalised template, then merges
// templates whose similarity reaches threshold. Groups are ordered by count,
// ties by first appearance.
func GroupWithThreshold(messages []string, threshold float64) []MessageGroup {
	var groups []*MessageGroup
	byTemplate := make(map[string]*MessageGroup)

	for _, msg := range messages {
		norm := Normalize(msg)
		g, ok := byTemplate[norm]
		if !ok {
			g = &MessageGroup{Template: norm}
			byTemplate[norm] = g
			groups = append(groups, g)
		}
		g.add(msg)
	}

	merged := merge(groups, threshold)

	result := make([]MessageGroup, len(merged))
	for i, g := range merged {
		result[i] = *g
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Count > result[j].Count
	})

	return result
}

func (g *MessageGroup) add(sample string) {
	g.Count++
	if len(g.Samples) < maxSamplesPerGroup {
		g.Samples = append(g.Samples, sample)
	}
}

func merge(groups []*MessageGroup, threshold float64) []*MessageGroup {
	var kept []*MessageGroup
	for _, g := range groups {
		target := -1
		for i, k := range kept {
			if similarity(k.Template, g.Template) >= threshold {
				target = i
				break
			}
		}
		if target == -1 {
			kept = append(kept, g)
			continue
		}
		kept[target].Count += g.Count
		for _, s := range g.Samples {
			if len(kept[target].Samples) < maxSamplesPerGroup {
				kept[target].Samples = append(kept[target].Samples, s)
			}
		}
	}
	return kept
}

func similarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	maxLen := max(len(a), len(b))
	if maxLen == 0 {
		return 1.0
	}
	return 1.0 - float64(levenshtein(a, b))/float64(maxLen)
}

func levenshtein(a, b string) int {
	la, lb := len(a), len(b)
	if la == 0 {
		return lb
	}
	if lb == 0 {
		return la
	}

	prev := make([]int, lb+1)
	curr := make([]int, lb+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= la; i++ {
		curr[0] = i
		for j := 1; j <= lb; j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(curr[j-1]+1, prev[j]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}

	return prev[lb]
}
