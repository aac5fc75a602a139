package graph

import (
	"fmt"

	"github.com/OFFIS-RIT/scholargraph/pkg/common"
)

// aggregate collects everything known about one derived node while records
// are scanned. Paper and domain lists keep first-seen order.
type aggregate struct {
	index     int
	label     string
	frequency int

	papers   []string
	paperSet map[string]struct{}

	domains   []string
	domainSet map[string]struct{}
}

func (a *aggregate) addPaper(paperID string) bool {
	if _, ok := a.paperSet[paperID]; ok {
		return false
	}
	a.paperSet[paperID] = struct{}{}
	a.papers = append(a.papers, paperID)
	return true
}

func (a *aggregate) addDomain(domain string) {
	if a.domainSet == nil {
		a.domainSet = make(map[string]struct{})
	}
	if _, ok := a.domainSet[domain]; ok {
		return
	}
	a.domainSet[domain] = struct{}{}
	a.domains = append(a.domains, domain)
}

func (a *aggregate) sharedPapers(other *aggregate) int {
	small, large := a, other
	if len(small.papers) > len(large.papers) {
		small, large = large, small
	}
	shared := 0
	for _, p := range small.papers {
		if _, ok := large.paperSet[p]; ok {
			shared++
		}
	}
	return shared
}

// registry hands out sequential ids for one node type.
type registry struct {
	nodeType common.NodeType
	order    []*aggregate
	byKey    map[string]*aggregate
}

func newRegistry(nodeType common.NodeType) *registry {
	return &registry{
		nodeType: nodeType,
		byKey:    make(map[string]*aggregate),
	}
}

func (r *registry) get(key, label string) *aggregate {
	if a, ok := r.byKey[key]; ok {
		return a
	}
	a := &aggregate{
		index:    len(r.order),
		label:    label,
		paperSet: make(map[string]struct{}),
	}
	r.byKey[key] = a
	r.order = append(r.order, a)
	return a
}

func (r *registry) id(a *aggregate) string {
	return fmt.Sprintf("%s_%d", r.nodeType, a.index)
}
