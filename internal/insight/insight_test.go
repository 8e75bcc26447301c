package insight

import (
	"testing"
	"time"

	"bukustok/backend/internal/domain"
)

var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func saleOn(daysAgo int, entryID string, qty int) domain.SalesEvent {
	return domain.SalesEvent{
		ID:      "evt",
		TS:      testNow.AddDate(0, 0, -daysAgo),
		Type:    domain.EventSale,
		EntryID: entryID,
		Qty:     qty,
	}
}

func TestPredictReturnsNilWithoutSales(t *testing.T) {
	events := []domain.SalesEvent{
		{TS: testNow, Type: domain.EventRestock, EntryID: "e1", Qty: 5},
		saleOn(30, "e1", 4),
	}
	if p := Predict(events, testNow); p != nil {
		t.Fatalf("expected nil prediction, got %+v", p)
	}
}

func TestPredictRisingSeries(t *testing.T) {
	events := []domain.SalesEvent{
		saleOn(2, "e1", 4),
		saleOn(1, "e1", 4),
		saleOn(0, "e1", 4),
	}

	p := Predict(events, testNow)
	if p == nil {
		t.Fatalf("expected a prediction")
	}
	if p.Trend != "up" {
		t.Fatalf("expected rising trend, got %q", p.Trend)
	}
	// Smoothing over [0..0,4,4,4] with alpha 0.35 lands near 2.9.
	if p.Daily != 3 {
		t.Fatalf("expected daily 3, got %d", p.Daily)
	}
	if p.Weekly != 20 {
		t.Fatalf("expected weekly 20, got %d", p.Weekly)
	}
	// 3 of 14 active days: round(50 + 3/14*45) = 60.
	if p.Confidence != 60 {
		t.Fatalf("expected confidence 60, got %d", p.Confidence)
	}
}

func TestPredictConfidenceBounds(t *testing.T) {
	events := make([]domain.SalesEvent, 0, 14)
	for i := 0; i < 14; i++ {
		events = append(events, saleOn(i, "e1", 2))
	}

	p := Predict(events, testNow)
	if p == nil {
		t.Fatalf("expected a prediction")
	}
	if p.Confidence != 95 {
		t.Fatalf("expected capped confidence 95, got %d", p.Confidence)
	}
	if p.Trend != "stable" {
		t.Fatalf("expected stable trend for flat series, got %q", p.Trend)
	}
}

func TestDetectAnomaliesFlagsSpikeDay(t *testing.T) {
	events := make([]domain.SalesEvent, 0, 14)
	for i := 1; i < 14; i++ {
		events = append(events, saleOn(i, "e1", 2))
	}
	events = append(events, saleOn(0, "e1", 30))

	anomalies := DetectAnomalies(events, testNow)
	if len(anomalies) != 1 {
		t.Fatalf("expected 1 anomaly, got %d", len(anomalies))
	}
	if anomalies[0].Qty != 30 {
		t.Fatalf("expected spike qty 30, got %d", anomalies[0].Qty)
	}
	if anomalies[0].Day != testNow.Format("2006-01-02") {
		t.Fatalf("wrong day %q", anomalies[0].Day)
	}
}

func TestDetectAnomaliesFlatSeries(t *testing.T) {
	flat := make([]domain.SalesEvent, 0, 14)
	for i := 0; i < 14; i++ {
		flat = append(flat, saleOn(i, "e1", 3))
	}
	if got := DetectAnomalies(flat, testNow); len(got) != 0 {
		t.Fatalf("flat series produced anomalies: %+v", got)
	}
}

func TestReorderPointRoundsUp(t *testing.T) {
	if got := ReorderPoint(2.5, 7, 3); got != 21 {
		t.Fatalf("expected 21, got %d", got)
	}
	if got := ReorderPoint(2, 7, 0); got != 14 {
		t.Fatalf("expected 14, got %d", got)
	}
	if got := ReorderPoint(0.1, 7, 0); got != 1 {
		t.Fatalf("expected 1, got %d", got)
	}
}

func TestClassifyBucketsByCumulativeShare(t *testing.T) {
	c := Classify(map[string]int{"hot": 70, "warm": 20, "cold": 10})
	if len(c.A) != 1 || c.A[0] != "hot" {
		t.Fatalf("unexpected A bucket %v", c.A)
	}
	if len(c.B) != 1 || c.B[0] != "warm" {
		t.Fatalf("unexpected B bucket %v", c.B)
	}
	if len(c.C) != 1 || c.C[0] != "cold" {
		t.Fatalf("unexpected C bucket %v", c.C)
	}
}

func TestRecommendRanksCoOccurrence(t *testing.T) {
	baskets := [][]string{
		{"oil-swift", "brake-swift"},
		{"oil-swift", "brake-swift"},
		{"oil-swift", "mirror-thar"},
	}

	got := Recommend(baskets, []string{"oil-swift"})
	if len(got) != 2 {
		t.Fatalf("expected 2 recommendations, got %v", got)
	}
	if got[0] != "brake-swift" || got[1] != "mirror-thar" {
		t.Fatalf("wrong ranking %v", got)
	}
}

func TestRecommendExcludesCurrent(t *testing.T) {
	baskets := [][]string{{"a", "b"}, {"a", "b"}}
	got := Recommend(baskets, []string{"a", "b"})
	if len(got) != 0 {
		t.Fatalf("expected no recommendations, got %v", got)
	}
}

func TestAnalyzeRespectsSettingToggle(t *testing.T) {
	doc := domain.NewDocument()
	doc.Settings.AIPredictions = false
	doc.SalesEvents = []domain.SalesEvent{saleOn(0, "e1", 5)}

	summary := Analyze(doc, testNow)
	if summary.Enabled {
		t.Fatalf("expected disabled summary")
	}
	if summary.Prediction != nil {
		t.Fatalf("disabled summary carries a prediction")
	}
}

func TestAnalyzeBuildsFullSummary(t *testing.T) {
	doc := domain.NewDocument()
	doc.Pages = []domain.Page{{ID: "p1", PageNo: 1, ItemName: "Engine Oil"}}
	doc.Entries = []domain.Entry{
		{ID: "e1", PageID: "p1", Car: "Swift", Qty: 10},
		{ID: "e2", PageID: "p1", Car: "Alto", Qty: 8},
	}
	doc.SalesEvents = []domain.SalesEvent{
		saleOn(1, "e1", 7),
		saleOn(1, "e2", 2),
		saleOn(1, "e2", 4),
		saleOn(0, "e1", 7),
	}

	summary := Analyze(doc, testNow)
	if !summary.Enabled || summary.Prediction == nil {
		t.Fatalf("expected enabled summary with prediction")
	}

	if len(summary.ReorderPoints) != 2 {
		t.Fatalf("expected 2 reorder points, got %+v", summary.ReorderPoints)
	}
	// e1 sold 14 over the window: ceil(1 * 7) = 7.
	if summary.ReorderPoints[0].EntryID != "e1" || summary.ReorderPoints[0].Point != 7 {
		t.Fatalf("unexpected reorder %+v", summary.ReorderPoints[0])
	}

	// e1 carries 14 of 20 units sold, exactly the 70% cut.
	if len(summary.Classification.A) != 1 || summary.Classification.A[0] != "e1" {
		t.Fatalf("unexpected classification %+v", summary.Classification)
	}
	if len(summary.Classification.C) != 1 || summary.Classification.C[0] != "e2" {
		t.Fatalf("unexpected classification %+v", summary.Classification)
	}

	// e1 and e2 sold on the same day, so each recommends the other.
	if got := summary.Recommendations["e1"]; len(got) != 1 || got[0] != "e2" {
		t.Fatalf("unexpected recommendations for e1: %v", got)
	}
}
