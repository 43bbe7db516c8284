package lscl

import (
	"sort"

	"github.com/samber/lo"
)

// FilterItem is either a Filter or a Branching, the two constituents of a
// Logstash filter pipeline extracted from (or rendered into) LSCL content.
type FilterItem interface {
	isFilterItem()
}

// Filter is a single named filter plugin invocation with its configuration.
type Filter struct {
	Name   string
	Config map[string]Data
}

func (Filter) isFilterItem() {}

// Branching is a set of conditional filter branches plus an optional
// default branch, mirroring a Conditions node projected into the filter
// domain.
type Branching struct {
	Branches []FilterBranch
	Default  []FilterItem
}

func (Branching) isFilterItem() {}

// FilterBranch is one (condition, items) arm of a Branching.
type FilterBranch struct {
	Condition Condition
	Items     []FilterItem
}

// FilterOption configures ParseFilters.
type FilterOption func(*filterOptions)

type filterOptions struct {
	atRoot *bool
}

// WithAtRoot selects where filters are looked for: true treats the
// top-level content as the filter list, false descends only into "filter"
// blocks, and leaving it unset (the default) descends into "filter" blocks
// with a fallback to the whole content if none is found.
func WithAtRoot(atRoot bool) FilterOption {
	return func(o *filterOptions) { o.atRoot = &atRoot }
}

// ParseFilters extracts Logstash filters from LSCL source text, a
// previously parsed []Node, or a single Block.
func ParseFilters(source any, opts ...FilterOption) ([]FilterItem, error) {
	var o filterOptions
	for _, opt := range opts {
		opt(&o)
	}

	content, err := filterContent(source, o)
	if err != nil {
		return nil, err
	}
	return extractFilters(content), nil
}

func filterContent(source any, o filterOptions) ([]Node, error) {
	switch v := source.(type) {
	case Block:
		if v.Name != "filter" {
			return nil, nil
		}
		return v.Content, nil
	case []Node:
		return selectFilterContent(v, o), nil
	case string:
		nodes, err := Parse(v)
		if err != nil {
			return nil, err
		}
		return selectFilterContent(nodes, o), nil
	default:
		return nil, nil
	}
}

func selectFilterContent(src []Node, o filterOptions) []Node {
	if o.atRoot != nil && *o.atRoot {
		return src
	}

	content := findFilterBlocks(src)
	if len(content) == 0 && o.atRoot == nil {
		return src
	}
	return content
}

// findFilterBlocks recursively collects the content of every block named
// "filter", descending through Conditions nodes along the way.
func findFilterBlocks(src []Node) []Node {
	var content []Node
	for _, element := range src {
		switch v := element.(type) {
		case Block:
			if v.Name == "filter" {
				content = append(content, v.Content...)
			}
		case Conditions:
			branches := make([]Branch, len(v.Branches))
			for i, b := range v.Branches {
				branches[i] = Branch{Condition: b.Condition, Body: findFilterBlocks(b.Body)}
			}
			var def *[]Node
			if v.Default != nil {
				found := findFilterBlocks(*v.Default)
				def = &found
			}
			content = append(content, Conditions{Branches: branches, Default: def})
		}
	}
	return content
}

func extractFilters(content []Node) []FilterItem {
	var result []FilterItem
	for _, element := range content {
		switch v := element.(type) {
		case Conditions:
			branches := make([]FilterBranch, len(v.Branches))
			for i, b := range v.Branches {
				branches[i] = FilterBranch{Condition: b.Condition, Items: extractFilters(b.Body)}
			}
			var def []FilterItem
			if v.Default != nil {
				def = extractFilters(*v.Default)
			}
			result = append(result, Branching{Branches: branches, Default: def})

		case Block:
			config := make(map[string]Data)
			for _, sub := range v.Content {
				if attr, ok := sub.(Attribute); ok {
					config[attr.Name] = attr.Value
				}
			}
			result = append(result, Filter{Name: v.Name, Config: config})
		}
	}
	return result
}

// RenderFilters renders a list of Logstash filters and branchings back into
// LSCL source text.
func RenderFilters(items []FilterItem) (string, error) {
	nodes := filtersToContent(items)
	return Render(nodes)
}

func filtersToContent(items []FilterItem) []Node {
	var content []Node
	for _, item := range items {
		switch v := item.(type) {
		case Filter:
			keys := lo.Keys(v.Config)
			sort.Strings(keys)
			attrs := make([]Node, len(keys))
			for i, key := range keys {
				attrs[i] = Attribute{Name: key, Value: v.Config[key]}
			}
			content = append(content, Block{Name: v.Name, Content: attrs})

		case Branching:
			branches := make([]Branch, len(v.Branches))
			for i, b := range v.Branches {
				branches[i] = Branch{Condition: b.Condition, Body: filtersToContent(b.Items)}
			}
			var def *[]Node
			if v.Default != nil {
				rendered := filtersToContent(v.Default)
				def = &rendered
			}
			content = append(content, Conditions{Branches: branches, Default: def})
		}
	}
	return content
}
