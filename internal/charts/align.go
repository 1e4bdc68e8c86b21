package charts

import (
	"sort"

	"github.com/thoas/go-funk"

	"salesdash/internal/models"
)

// AlignSeries merges the period keys of every series into one sorted axis
// and re-indexes each series onto it. Periods a series has no value for
// are nil, so renderers draw a gap instead of a dip to zero.
func AlignSeries(series ...models.Series) ([]string, [][]*float64) {
	var all []string
	for _, s := range series {
		all = append(all, s.Periods...)
	}
	periods := funk.UniqString(all)
	sort.Strings(periods)

	aligned := make([][]*float64, len(series))
	for i, s := range series {
		byPeriod := make(map[string]float64, len(s.Periods))
		for j, p := range s.Periods {
			if j < len(s.Sales) {
				byPeriod[p] = s.Sales[j]
			}
		}
		row := make([]*float64, len(periods))
		for j, p := range periods {
			if v, ok := byPeriod[p]; ok {
				row[j] = Num(v)
			}
		}
		aligned[i] = row
	}
	return periods, aligned
}
