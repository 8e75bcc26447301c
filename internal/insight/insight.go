// Package insight derives forecasts and inventory analytics from the
// committed sales-event log. Everything here is pure computation over a
// document snapshot; no I/O.
package insight

import (
	"math"
	"sort"
	"time"

	"bukustok/backend/internal/domain"
)

const (
	windowDays       = 14
	forecastAlpha    = 0.35
	anomalyThreshold = 2.0
	leadTimeDays     = 7
	maxRecommended   = 5
)

// Prediction is the next-day and next-week sales forecast.
type Prediction struct {
	Daily        int    `json:"daily"`
	Weekly       int    `json:"weekly"`
	Trend        string `json:"trend"`
	TrendPercent int    `json:"trend_percent"`
	Confidence   int    `json:"confidence"`
}

// Anomaly marks a day whose sales total sits more than two standard
// deviations from the window mean.
type Anomaly struct {
	Day string `json:"day"`
	Qty int    `json:"qty"`
}

// Reorder is the suggested reorder point for one entry.
type Reorder struct {
	EntryID string `json:"entry_id"`
	Car     string `json:"car"`
	Point   int    `json:"point"`
}

// Classification buckets entries by cumulative share of sold quantity:
// A up to 70%, B up to 90%, C the tail.
type Classification struct {
	A []string `json:"a"`
	B []string `json:"b"`
	C []string `json:"c"`
}

type Summary struct {
	Enabled         bool                `json:"enabled"`
	Prediction      *Prediction         `json:"prediction,omitempty"`
	Anomalies       []Anomaly           `json:"anomalies"`
	ReorderPoints   []Reorder           `json:"reorder_points"`
	Classification  Classification      `json:"classification"`
	Recommendations map[string][]string `json:"recommendations"`
}

// dayKeys returns the last n UTC dates, oldest first.
func dayKeys(now time.Time, n int) []string {
	keys := make([]string, 0, n)
	for i := n - 1; i >= 0; i-- {
		keys = append(keys, now.UTC().AddDate(0, 0, -i).Format("2006-01-02"))
	}
	return keys
}

// dailySeries buckets sale quantities per day over the window. Restocks and
// events outside the window are ignored.
func dailySeries(events []domain.SalesEvent, now time.Time) ([]string, []int) {
	keys := dayKeys(now, windowDays)
	index := make(map[string]int, len(keys))
	for i, key := range keys {
		index[key] = i
	}

	series := make([]int, len(keys))
	for _, ev := range events {
		if ev.Type != domain.EventSale || ev.Qty <= 0 {
			continue
		}
		if i, ok := index[ev.TS.UTC().Format("2006-01-02")]; ok {
			series[i] += ev.Qty
		}
	}
	return keys, series
}

func exponentialSmoothing(series []int, alpha float64) float64 {
	if len(series) == 0 {
		return 0
	}
	forecast := float64(series[0])
	for _, v := range series[1:] {
		forecast = alpha*float64(v) + (1-alpha)*forecast
	}
	return forecast
}

// Predict forecasts tomorrow and the coming week from the 14-day sale
// series. Returns nil when the window holds no sales.
func Predict(events []domain.SalesEvent, now time.Time) *Prediction {
	_, series := dailySeries(events, now)

	total := 0
	for _, v := range series {
		total += v
	}
	if total <= 0 {
		return nil
	}

	daily := exponentialSmoothing(series, forecastAlpha)

	recent := avg(series[len(series)-3:])
	older := avg(series[:3])
	trend := "stable"
	if recent > older {
		trend = "up"
	} else if recent < older {
		trend = "down"
	}
	trendPercent := 0
	if older > 0 {
		trendPercent = int(math.Abs(math.Round((recent - older) / older * 100)))
	}

	nonZero := 0
	for _, v := range series {
		if v > 0 {
			nonZero++
		}
	}
	confidence := int(math.Round(50 + float64(nonZero)/windowDays*45))
	if confidence < 55 {
		confidence = 55
	}
	if confidence > 95 {
		confidence = 95
	}

	return &Prediction{
		Daily:        clampNonNegative(int(math.Round(daily))),
		Weekly:       clampNonNegative(int(math.Round(daily * 7))),
		Trend:        trend,
		TrendPercent: trendPercent,
		Confidence:   confidence,
	}
}

// DetectAnomalies flags window days whose z-score exceeds the threshold.
func DetectAnomalies(events []domain.SalesEvent, now time.Time) []Anomaly {
	keys, series := dailySeries(events, now)
	if len(series) == 0 {
		return []Anomaly{}
	}

	mean := avg(series)
	variance := 0.0
	for _, v := range series {
		variance += (float64(v) - mean) * (float64(v) - mean)
	}
	std := math.Sqrt(variance / float64(len(series)))
	if std == 0 {
		return []Anomaly{}
	}

	anomalies := []Anomaly{}
	for i, v := range series {
		if math.Abs((float64(v)-mean)/std) > anomalyThreshold {
			anomalies = append(anomalies, Anomaly{Day: keys[i], Qty: v})
		}
	}
	return anomalies
}

// ReorderPoint is lead-time demand plus safety stock, rounded up.
func ReorderPoint(avgDailySales float64, leadDays int, safetyStock float64) int {
	return int(math.Ceil(avgDailySales*float64(leadDays) + safetyStock))
}

// Classify runs ABC analysis over per-entry sold quantity.
func Classify(soldByEntry map[string]int) Classification {
	type valued struct {
		id    string
		value int
	}
	items := make([]valued, 0, len(soldByEntry))
	total := 0
	for id, value := range soldByEntry {
		items = append(items, valued{id, value})
		total += value
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].value != items[j].value {
			return items[i].value > items[j].value
		}
		return items[i].id < items[j].id
	})

	result := Classification{A: []string{}, B: []string{}, C: []string{}}
	if total == 0 {
		return result
	}

	cumulative := 0
	for _, item := range items {
		cumulative += item.value
		share := float64(cumulative) / float64(total)
		switch {
		case share <= 0.7:
			result.A = append(result.A, item.id)
		case share <= 0.9:
			result.B = append(result.B, item.id)
		default:
			result.C = append(result.C, item.id)
		}
	}
	return result
}

// Recommend scores co-occurring entries across baskets and returns the top
// related ids not already in current.
func Recommend(baskets [][]string, current []string) []string {
	coOccurrence := make(map[string]map[string]int)
	for _, basket := range baskets {
		for _, a := range basket {
			for _, b := range basket {
				if a == b {
					continue
				}
				if coOccurrence[a] == nil {
					coOccurrence[a] = make(map[string]int)
				}
				coOccurrence[a][b]++
			}
		}
	}

	inCart := make(map[string]bool, len(current))
	for _, id := range current {
		inCart[id] = true
	}

	scores := make(map[string]int)
	for _, id := range current {
		for related, count := range coOccurrence[id] {
			if !inCart[related] {
				scores[related] += count
			}
		}
	}

	type scored struct {
		id    string
		score int
	}
	ranked := make([]scored, 0, len(scores))
	for id, score := range scores {
		ranked = append(ranked, scored{id, score})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].id < ranked[j].id
	})

	out := []string{}
	for _, r := range ranked {
		if len(out) == maxRecommended {
			break
		}
		out = append(out, r.id)
	}
	return out
}

// Analyze builds the full summary for a document snapshot. A shop with
// predictions switched off gets a disabled summary with no computation.
func Analyze(doc *domain.Document, now time.Time) Summary {
	if !doc.Settings.AIPredictions {
		return Summary{
			Enabled:         false,
			Anomalies:       []Anomaly{},
			ReorderPoints:   []Reorder{},
			Classification:  Classification{A: []string{}, B: []string{}, C: []string{}},
			Recommendations: map[string][]string{},
		}
	}

	cutoff := now.UTC().AddDate(0, 0, -(windowDays - 1)).Format("2006-01-02")

	soldByEntry := make(map[string]int)
	soldRecent := make(map[string]int)
	basketsByDay := make(map[string][]string)
	for _, ev := range doc.SalesEvents {
		if ev.Type != domain.EventSale || ev.Qty <= 0 {
			continue
		}
		soldByEntry[ev.EntryID] += ev.Qty
		day := ev.TS.UTC().Format("2006-01-02")
		if day >= cutoff {
			soldRecent[ev.EntryID] += ev.Qty
			basketsByDay[day] = append(basketsByDay[day], ev.EntryID)
		}
	}

	baskets := make([][]string, 0, len(basketsByDay))
	for _, basket := range basketsByDay {
		baskets = append(baskets, basket)
	}

	entryByID := make(map[string]domain.Entry, len(doc.Entries))
	for _, entry := range doc.Entries {
		entryByID[entry.ID] = entry
	}

	reorders := []Reorder{}
	for id, sold := range soldRecent {
		entry, ok := entryByID[id]
		if !ok {
			continue
		}
		avgDaily := float64(sold) / windowDays
		reorders = append(reorders, Reorder{
			EntryID: id,
			Car:     entry.Car,
			Point:   ReorderPoint(avgDaily, leadTimeDays, 0),
		})
	}
	sort.Slice(reorders, func(i, j int) bool { return reorders[i].EntryID < reorders[j].EntryID })

	recommendations := make(map[string][]string)
	for id := range soldByEntry {
		if _, ok := entryByID[id]; !ok {
			continue
		}
		if related := Recommend(baskets, []string{id}); len(related) > 0 {
			recommendations[id] = related
		}
	}

	return Summary{
		Enabled:         true,
		Prediction:      Predict(doc.SalesEvents, now),
		Anomalies:       DetectAnomalies(doc.SalesEvents, now),
		ReorderPoints:   reorders,
		Classification:  Classify(soldByEntry),
		Recommendations: recommendations,
	}
}

func avg(series []int) float64 {
	if len(series) == 0 {
		return 0
	}
	sum := 0
	for _, v := range series {
		sum += v
	}
	return float64(sum) / float64(len(series))
}

func clampNonNegative(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
