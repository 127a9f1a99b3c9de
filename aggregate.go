package tracker

import (
	"slices"

	"github.com/etnz/tracker/date"
	"github.com/shopspring/decimal"
)

// Series is a set of metrics summed per day, for charts and summaries.
type Series struct {
	Name    string
	Metrics []Metric
	Days    []date.Date
	Values  [][]decimal.NullDecimal // Values[metric][day]
}

// Column returns the values of metric m, nil if the series does not hold it.
func (s *Series) Column(m Metric) []decimal.NullDecimal {
	if i := slices.Index(s.Metrics, m); i >= 0 {
		return s.Values[i]
	}
	return nil
}

// Last returns the value of metric m on the last day.
func (s *Series) Last(m Metric) decimal.NullDecimal {
	col := s.Column(m)
	if len(col) == 0 {
		return null
	}
	return col[len(col)-1]
}

// AggregateByDay sums metrics over all rows of each day.
// Null values are skipped. A day where every value of a metric is null stays null.
func AggregateByDay(name string, rows []Valuation, metrics ...Metric) *Series {
	s := &Series{Name: name, Metrics: metrics, Values: make([][]decimal.NullDecimal, len(metrics))}
	index := make(map[date.Date]int)
	for _, r := range rows {
		i, ok := index[r.Date]
		if !ok {
			i = len(s.Days)
			index[r.Date] = i
			s.Days = append(s.Days, r.Date)
			for m := range metrics {
				s.Values[m] = append(s.Values[m], null)
			}
		}
		for m, metric := range metrics {
			v := r.Get(metric)
			if !v.Valid {
				continue
			}
			if acc := s.Values[m][i]; acc.Valid {
				s.Values[m][i] = add(acc, v)
			} else {
				s.Values[m][i] = v
			}
		}
	}
	s.sort()
	return s
}

// AggregateBySymbol returns one series per symbol, sorted by symbol.
func AggregateBySymbol(rows []Valuation, metrics ...Metric) []*Series {
	bySymbol := make(map[string][]Valuation)
	var symbols []string
	for _, r := range rows {
		if _, ok := bySymbol[r.Symbol]; !ok {
			symbols = append(symbols, r.Symbol)
		}
		bySymbol[r.Symbol] = append(bySymbol[r.Symbol], r)
	}
	slices.Sort(symbols)
	series := make([]*Series, 0, len(symbols))
	for _, symbol := range symbols {
		series = append(series, AggregateByDay(symbol, bySymbol[symbol], metrics...))
	}
	return series
}

// sort orders the days chronologically.
func (s *Series) sort() {
	order := make([]int, len(s.Days))
	for i := range order {
		order[i] = i
	}
	slices.SortFunc(order, func(a, b int) int { return s.Days[a].Compare(s.Days[b]) })
	days := make([]date.Date, len(order))
	for i, j := range order {
		days[i] = s.Days[j]
	}
	for m := range s.Values {
		col := make([]decimal.NullDecimal, len(order))
		for i, j := range order {
			col[i] = s.Values[m][j]
		}
		s.Values[m] = col
	}
	s.Days = days
}
