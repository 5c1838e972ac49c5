package table

import (
	"strconv"
	"strings"
	"time"
)

// Movement is one customer movement event.
type Movement struct {
	CustomerID string
	Timestamp  time.Time
	Zone       string
}

// LayoutRow places one product in one zone.
type LayoutRow struct {
	Zone        string
	ProductID   string
	ProductName string

	// Area is the zone's floor area in square feet; 0 means unknown.
	Area float64
}

// OnlineRow carries the online interest of one product.
type OnlineRow struct {
	ProductID   string
	ProductName string
	OnlineViews int
}

// SaleRow is one point-of-sale record. Zone or ProductID (or both) is set.
type SaleRow struct {
	Zone      string
	ProductID string
	Amount    float64

	// Date is the sale date; zero when the source carries no date column.
	Date time.Time
}

// StockRow carries the stock level of one product.
type StockRow struct {
	ProductID   string
	ProductName string
	Stock       int
}

// PairRow links a product to a complementary product, both by name.
type PairRow struct {
	Product       string
	Complementary string
}

// InsightRow is one row of the merged insights table.
type InsightRow struct {
	Zone         string
	ProductID    string
	ProductName  string
	Visits       int
	OnlineViews  int
	ZoneCategory string
}

// PlanRow is one row of the relocation plan.
type PlanRow struct {
	ProductID       string
	ProductName     string
	CurrentZone     string
	DestinationZone string
	Score           float64
	Reason          string
	Timestamp       time.Time
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.999999",
	"2006-01-02",
}

// ParseTime parses the timestamp formats produced by the data generators.
func ParseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func parseFloat(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return f, err == nil
}

func parseInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if i, err := strconv.Atoi(s); err == nil {
		return i, true
	}
	// Generators occasionally write integral counts as floats ("12.0").
	if f, ok := parseFloat(s); ok {
		return int(f), true
	}
	return 0, false
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// DecodeMovements converts a movement table into typed rows.
// Rows without a zone are skipped; the number skipped is returned.
func DecodeMovements(t *Table) ([]Movement, int) {
	zi, ci, ti := t.Index(ColZone), t.Index(ColCustomerID), t.Index(ColTimestamp)
	out := make([]Movement, 0, t.Len())
	skipped := 0
	for _, row := range t.Rows {
		zone := value(row, zi)
		if zone == "" {
			skipped++
			continue
		}
		ts, _ := ParseTime(value(row, ti))
		out = append(out, Movement{CustomerID: value(row, ci), Timestamp: ts, Zone: zone})
	}
	return out, skipped
}

// DecodeLayout converts a layout table into typed rows.
func DecodeLayout(t *Table) ([]LayoutRow, int) {
	zi, pi, ni, ai := t.Index(ColZone), t.Index(ColProductID), t.Index(ColProductName), t.Index(ColArea)
	out := make([]LayoutRow, 0, t.Len())
	skipped := 0
	for _, row := range t.Rows {
		zone, pid := value(row, zi), value(row, pi)
		if zone == "" || pid == "" {
			skipped++
			continue
		}
		area, _ := parseFloat(value(row, ai))
		out = append(out, LayoutRow{Zone: zone, ProductID: pid, ProductName: value(row, ni), Area: area})
	}
	return out, skipped
}

// DecodeOnline converts an online performance table into typed rows.
func DecodeOnline(t *Table) ([]OnlineRow, int) {
	pi, ni, vi := t.Index(ColProductID), t.Index(ColProductName), t.Index(ColOnlineViews)
	out := make([]OnlineRow, 0, t.Len())
	skipped := 0
	for _, row := range t.Rows {
		pid := value(row, pi)
		views, ok := parseInt(value(row, vi))
		if pid == "" || !ok {
			skipped++
			continue
		}
		out = append(out, OnlineRow{ProductID: pid, ProductName: value(row, ni), OnlineViews: views})
	}
	return out, skipped
}

// DecodeSales converts a sales table into typed rows.
// Rows attributed to neither a zone nor a product are skipped.
func DecodeSales(t *Table) ([]SaleRow, int) {
	zi, pi, ai, di := t.Index(ColZone), t.Index(ColProductID), t.Index(ColSalesAmount), t.Index(ColDate)
	out := make([]SaleRow, 0, t.Len())
	skipped := 0
	for _, row := range t.Rows {
		zone, pid := value(row, zi), value(row, pi)
		amount, ok := parseFloat(value(row, ai))
		if (zone == "" && pid == "") || !ok {
			skipped++
			continue
		}
		date, _ := ParseTime(value(row, di))
		out = append(out, SaleRow{Zone: zone, ProductID: pid, Amount: amount, Date: date})
	}
	return out, skipped
}

// DecodeStock converts a stock table into typed rows.
func DecodeStock(t *Table) ([]StockRow, int) {
	pi, ni, si := t.Index(ColProductID), t.Index(ColProductName), t.Index(ColStockCount)
	out := make([]StockRow, 0, t.Len())
	skipped := 0
	for _, row := range t.Rows {
		pid := value(row, pi)
		stock, ok := parseInt(value(row, si))
		if pid == "" || !ok {
			skipped++
			continue
		}
		out = append(out, StockRow{ProductID: pid, ProductName: value(row, ni), Stock: stock})
	}
	return out, skipped
}

// DecodePairs converts a product pairs table into typed rows.
// Rows missing either name are skipped.
func DecodePairs(t *Table) ([]PairRow, int) {
	pi, ci := t.Index(ColProduct), t.Index(ColComplementary)
	out := make([]PairRow, 0, t.Len())
	skipped := 0
	for _, row := range t.Rows {
		product, complement := value(row, pi), value(row, ci)
		if product == "" || complement == "" {
			skipped++
			continue
		}
		out = append(out, PairRow{Product: product, Complementary: complement})
	}
	return out, skipped
}

// DecodeInsights converts an insights table into typed rows.
func DecodeInsights(t *Table) ([]InsightRow, int) {
	zi, pi, ni := t.Index(ColZone), t.Index(ColProductID), t.Index(ColProductName)
	vi, oi, ci := t.Index(ColVisits), t.Index(ColOnlineViews), t.Index(ColZoneCategory)
	out := make([]InsightRow, 0, t.Len())
	skipped := 0
	for _, row := range t.Rows {
		pid := value(row, pi)
		if pid == "" {
			skipped++
			continue
		}
		visits, _ := parseInt(value(row, vi))
		views, _ := parseInt(value(row, oi))
		out = append(out, InsightRow{
			Zone:         value(row, zi),
			ProductID:    pid,
			ProductName:  value(row, ni),
			Visits:       visits,
			OnlineViews:  views,
			ZoneCategory: value(row, ci),
		})
	}
	return out, skipped
}

// DecodePlan converts a relocation plan table into typed rows.
func DecodePlan(t *Table) ([]PlanRow, int) {
	pi, ni, ci, di := t.Index(ColProductID), t.Index(ColProductName), t.Index(ColCurrentZone), t.Index(ColDestinationZone)
	si, ri, ti := t.Index(ColScore), t.Index(ColReason), t.Index(ColTimestamp)
	out := make([]PlanRow, 0, t.Len())
	skipped := 0
	for _, row := range t.Rows {
		pid, dest := value(row, pi), value(row, di)
		if pid == "" || dest == "" {
			skipped++
			continue
		}
		score, _ := parseFloat(value(row, si))
		ts, _ := ParseTime(value(row, ti))
		out = append(out, PlanRow{
			ProductID:       pid,
			ProductName:     value(row, ni),
			CurrentZone:     value(row, ci),
			DestinationZone: dest,
			Score:           score,
			Reason:          value(row, ri),
			Timestamp:       ts,
		})
	}
	return out, skipped
}

// EncodeInsights builds an insights table.
func EncodeInsights(rows []InsightRow) *Table {
	t := InsightsSchema.Empty()
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{
			r.Zone, r.ProductID, r.ProductName,
			strconv.Itoa(r.Visits), strconv.Itoa(r.OnlineViews), r.ZoneCategory,
		})
	}
	return t
}

// EncodePlan builds a relocation plan table.
func EncodePlan(rows []PlanRow) *Table {
	t := PlanSchema.Empty()
	for _, r := range rows {
		ts := ""
		if !r.Timestamp.IsZero() {
			ts = r.Timestamp.UTC().Format(time.RFC3339)
		}
		t.Rows = append(t.Rows, []string{
			r.ProductID, r.ProductName, r.CurrentZone, r.DestinationZone,
			strconv.FormatFloat(r.Score, 'f', 2, 64), r.Reason, ts,
		})
	}
	return t
}

// EncodeLayout builds a layout table.
func EncodeLayout(rows []LayoutRow) *Table {
	t := LayoutSchema.Empty()
	for _, r := range rows {
		area := ""
		if r.Area > 0 {
			area = formatFloat(r.Area)
		}
		t.Rows = append(t.Rows, []string{r.Zone, r.ProductID, r.ProductName, area})
	}
	return t
}

// EncodeMovements builds a movement table.
func EncodeMovements(rows []Movement) *Table {
	t := MovementSchema.Empty()
	for _, r := range rows {
		ts := ""
		if !r.Timestamp.IsZero() {
			ts = r.Timestamp.Format("2006-01-02 15:04:05")
		}
		t.Rows = append(t.Rows, []string{r.CustomerID, ts, r.Zone})
	}
	return t
}

// EncodeSales builds a sales table.
func EncodeSales(rows []SaleRow) *Table {
	t := SalesSchema.Empty()
	for _, r := range rows {
		date := ""
		if !r.Date.IsZero() {
			date = r.Date.Format("2006-01-02")
		}
		t.Rows = append(t.Rows, []string{r.Zone, r.ProductID, formatFloat(r.Amount), date})
	}
	return t
}

// EncodeStock builds a stock table.
func EncodeStock(rows []StockRow) *Table {
	t := StockSchema.Empty()
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{r.ProductID, r.ProductName, strconv.Itoa(r.Stock)})
	}
	return t
}
