package domain

import (
	"slices"
	"strings"
)

// Filter keeps assets whose name or serial number contains query
// (case-insensitive) and whose status matches. An empty query and StatusAll
// match everything.
func Filter(assets []Asset, query string, status Status) []Asset {
	needle := strings.ToLower(query)
	out := make([]Asset, 0, len(assets))
	for _, a := range assets {
		if status != StatusAll && status != "" && a.Status != status {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(a.Name), needle) &&
			!strings.Contains(strings.ToLower(a.SerialNumber), needle) {
			continue
		}
		out = append(out, a)
	}
	return out
}

type AssetGroup struct {
	Type     string  `json:"type"`
	Assets   []Asset `json:"assets"`
	Expanded bool    `json:"expanded"`
}

func (g AssetGroup) Count() int { return len(g.Assets) }

var defaultExpandedTypes = []string{"Keyboard", "Mouse", "Monitor", "Laptop", "PC"}

// GroupExpansion tracks which type groups are open. The zero value treats every
// group as collapsed; use NewGroupExpansion for the default open set.
type GroupExpansion struct {
	open map[string]bool
}

func NewGroupExpansion() GroupExpansion {
	g := GroupExpansion{open: make(map[string]bool, len(defaultExpandedTypes))}
	for _, t := range defaultExpandedTypes {
		g.open[t] = true
	}
	return g
}

func (g GroupExpansion) IsOpen(assetType string) bool { return g.open[assetType] }

// Toggle flips one group and leaves the others alone.
func (g *GroupExpansion) Toggle(assetType string) {
	if g.open == nil {
		g.open = make(map[string]bool)
	}
	if g.open[assetType] {
		delete(g.open, assetType)
		return
	}
	g.open[assetType] = true
}

// Open returns the currently open types, sorted.
func (g GroupExpansion) Open() []string {
	out := make([]string, 0, len(g.open))
	for t := range g.open {
		out = append(out, t)
	}
	slices.Sort(out)
	return out
}

// GroupByType groups assets by type, sorted by type name. Types without
// members never produce a group.
func GroupByType(assets []Asset, expansion GroupExpansion) []AssetGroup {
	index := make(map[string]int)
	groups := make([]AssetGroup, 0)
	for _, a := range assets {
		i, ok := index[a.Type]
		if !ok {
			i = len(groups)
			index[a.Type] = i
			groups = append(groups, AssetGroup{Type: a.Type, Expanded: expansion.IsOpen(a.Type)})
		}
		groups[i].Assets = append(groups[i].Assets, a)
	}
	slices.SortStableFunc(groups, func(a, b AssetGroup) int { return strings.Compare(a.Type, b.Type) })
	return groups
}
