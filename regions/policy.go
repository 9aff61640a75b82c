package regions

import "github.com/screensanctum/screensanctum/detect"

// ApplyPolicy applies the template selection rule to regions built
// from items (same order, same length, as produced by Build). Policy
// only toggles selection, it never removes regions.
//
// URL regions: with flagQueryParamsOnly set, only query-bearing URLs
// stay selected; otherwise every URL is selected. All other types keep
// the selection they were built with.
func ApplyPolicy(items []detect.Item, regions []Region, flagQueryParamsOnly bool) {
	for i := range regions {
		if i >= len(items) {
			break
		}
		if regions[i].Type != detect.PiiURL {
			continue
		}
		if flagQueryParamsOnly {
			regions[i].Selected = items[i].HasQueryParams
		} else {
			regions[i].Selected = true
		}
	}
}
