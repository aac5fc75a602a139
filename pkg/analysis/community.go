package analysis

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/OFFIS-RIT/scholargraph/pkg/common"
)

const (
	maxLabelPropagationPasses = 100
	maxThemeLabels            = 3
)

// DetectCommunities groups nodes by weighted label propagation.
//
// Every node starts with its own label. Passes visit nodes in snapshot order
// and update labels in place; each neighbor votes for its current label with
// floor(weight*10) votes and a node only switches to a label that wins
// strictly. Propagation stops after a pass without changes or after 100
// passes. Groups with a single member are dropped and the rest are returned
// largest first.
func (a *Analyzer) DetectCommunities() []Community {
	n := len(a.nodes)
	labels := make([]int, n)
	for i := range labels {
		labels[i] = i
	}

	for pass := 0; pass < maxLabelPropagationPasses; pass++ {
		changed := false
		for i := 0; i < n; i++ {
			if len(a.adjacency[i]) == 0 {
				continue
			}

			votes := make(map[int]int, len(a.adjacency[i]))
			for _, nb := range a.adjacency[i] {
				votes[labels[nb.index]] += int(math.Floor(nb.weight * 10))
			}

			best, bestVotes, unique := -1, 0, false
			for label, count := range votes {
				switch {
				case count > bestVotes:
					best, bestVotes, unique = label, count, true
				case count == bestVotes:
					unique = false
				}
			}

			if unique && best != labels[i] {
				labels[i] = best
				changed = true
			}
		}
		if !changed {
			break
		}
	}

	groups := make(map[int][]int)
	var order []int
	for i, label := range labels {
		if _, ok := groups[label]; !ok {
			order = append(order, label)
		}
		groups[label] = append(groups[label], i)
	}

	communities := make([]Community, 0, len(order))
	for _, label := range order {
		members := groups[label]
		if len(members) < 2 {
			continue
		}
		ids := make([]string, 0, len(members))
		for _, m := range members {
			ids = append(ids, a.nodes[m].ID)
		}
		communities = append(communities, Community{
			Size:    len(members),
			Members: ids,
			Theme:   a.theme(members),
		})
	}

	sort.SliceStable(communities, func(i, j int) bool {
		return communities[i].Size > communities[j].Size
	})
	for i := range communities {
		communities[i].ID = i
	}

	return communities
}

func (a *Analyzer) theme(members []int) string {
	var names []string
	for _, m := range members {
		node := a.nodes[m]
		switch node.Type {
		case common.NodeTypeConcept, common.NodeTypeMethod:
			names = append(names, node.Label)
		case common.NodeTypePaper, common.NodeTypeAuthor:
		}
		if len(names) == maxThemeLabels {
			break
		}
	}

	if len(names) > 0 {
		return "Cluster: " + strings.Join(names, ", ")
	}
	return fmt.Sprintf("Research cluster (%d papers)", len(members))
}
