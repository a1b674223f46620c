package mesh

import (
	"fmt"
	"sort"
	"strings"
)

// SortMode selects the order in which groups are written.
type SortMode string

const (
	SortByOrder    SortMode = "SORTORDER"
	SortByNameAsc  SortMode = "GROUPNAMEASC"
	SortByNameDesc SortMode = "GROUPNAMEDESC"
)

// ParseSortMode accepts the mode names case-insensitively.
func ParseSortMode(s string) (SortMode, error) {
	switch m := SortMode(strings.ToUpper(strings.TrimSpace(s))); m {
	case SortByOrder, SortByNameAsc, SortByNameDesc:
		return m, nil
	case "":
		return SortByOrder, nil
	default:
		return "", fmt.Errorf("unknown sort mode %q", s)
	}
}

// SortGroups orders groups in place. Ties keep their original relative order.
func SortGroups(groups []*Group, mode SortMode) {
	switch mode {
	case SortByNameAsc:
		sort.SliceStable(groups, func(i, j int) bool {
			return groups[i].Name < groups[j].Name
		})
	case SortByNameDesc:
		sort.SliceStable(groups, func(i, j int) bool {
			return groups[i].Name > groups[j].Name
		})
	default:
		sort.SliceStable(groups, func(i, j int) bool {
			return groups[i].SortOrder < groups[j].SortOrder
		})
	}
}
