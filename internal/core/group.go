package core

import (
	"fmt"
	"sort"

	"github.com/abadojack/whatlanggo"
)

// GroupByCluster collects emails per cluster id, preserving input order within each cluster
func GroupByCluster(emails []CleanedEmail, labels []int) (map[int][]CleanedEmail, error) {
	if len(emails) != len(labels) {
		return nil, fmt.Errorf("%w: %d emails, %d labels", ErrMismatchedLength, len(emails), len(labels))
	}
	groups := make(map[int][]CleanedEmail)
	for i, label := range labels {
		groups[label] = append(groups[label], emails[i])
	}
	return groups, nil
}

// SortedClusterIDs returns the keys of groups in ascending order
func SortedClusterIDs[T any](groups map[int]T) []int {
	ids := make([]int, 0, len(groups))
	for id := range groups {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// TopTerms returns up to n vocabulary terms with the highest total weight among
// the rows assigned to cluster
func TopTerms(fm *FeatureMatrix, labels []int, cluster, n int) []string {
	if fm == nil || fm.Matrix == nil || n <= 0 {
		return nil
	}
	rows, cols := fm.Matrix.Dims()
	if rows != len(labels) {
		return nil
	}
	weights := make([]float64, cols)
	for i := 0; i < rows; i++ {
		if labels[i] != cluster {
			continue
		}
		row := fm.Matrix.RawRowView(i)
		for j, w := range row {
			weights[j] += w
		}
	}

	idx := make([]int, 0, cols)
	for j, w := range weights {
		if w > 0 {
			idx = append(idx, j)
		}
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return weights[idx[a]] > weights[idx[b]]
	})
	if len(idx) > n {
		idx = idx[:n]
	}
	terms := make([]string, len(idx))
	for i, j := range idx {
		terms[i] = fm.Vocabulary[j]
	}
	return terms
}

// DominantLanguage returns the ISO 639-1 code of the language detected for
// most of the given texts, or an empty string when none is reliable
func DominantLanguage(texts []string) string {
	votes := make(map[string]int)
	for _, text := range texts {
		if text == "" {
			continue
		}
		info := whatlanggo.Detect(text)
		if !info.IsReliable() {
			continue
		}
		votes[info.Lang.Iso6391()]++
	}
	best, bestVotes := "", 0
	for lang, n := range votes {
		if n > bestVotes || (n == bestVotes && lang < best) {
			best, bestVotes = lang, n
		}
	}
	return best
}
