package table

// Canonical column names shared across schemas.
const (
	ColZone            = "zone"
	ColProductID       = "product_id"
	ColProductName     = "product_name"
	ColCustomerID      = "customer_id"
	ColTimestamp       = "timestamp"
	ColOnlineViews     = "online_views"
	ColSalesAmount     = "sales_amount"
	ColDate            = "date"
	ColStockCount      = "stock_count"
	ColArea            = "area"
	ColVisits          = "visits"
	ColZoneCategory    = "zone_category"
	ColCurrentZone     = "current_zone"
	ColDestinationZone = "destination_zone"
	ColScore           = "score"
	ColReason          = "reason"
	ColProduct         = "product"
	ColComplementary   = "complementary"
)

// MovementSchema describes customer movement events.
var MovementSchema = Schema{
	Name: "movements",
	Columns: []Column{
		{Name: ColCustomerID},
		{Name: ColTimestamp},
		{Name: ColZone, Required: true},
	},
}

// LayoutSchema describes the store layout: which product sits in which zone.
var LayoutSchema = Schema{
	Name: "store_layout",
	Columns: []Column{
		{Name: ColZone, Required: true},
		{Name: ColProductID, Required: true},
		{Name: ColProductName, Required: true},
		{Name: ColArea, Aliases: []string{"area_sqft", "sqft"}},
	},
}

// OnlineSchema describes online product performance.
var OnlineSchema = Schema{
	Name: "online_performance",
	Columns: []Column{
		{Name: ColProductID, Required: true},
		{Name: ColProductName},
		{Name: ColOnlineViews, Aliases: []string{"views"}, Required: true},
	},
}

// SalesSchema describes point-of-sale sales. Each row is attributed either to
// a zone or to a product; both columns are therefore optional on their own.
var SalesSchema = Schema{
	Name: "pos_sales",
	Columns: []Column{
		{Name: ColZone},
		{Name: ColProductID},
		{Name: ColSalesAmount, Aliases: []string{"sales", "amount"}, Required: true},
		{Name: ColDate},
	},
}

// StockSchema describes stock levels.
var StockSchema = Schema{
	Name: "stock_levels",
	Columns: []Column{
		{Name: ColProductID, Required: true},
		{Name: ColProductName},
		{Name: ColStockCount, Aliases: []string{"stock"}, Required: true},
	},
}

// InsightsSchema describes the merged insights output.
var InsightsSchema = Schema{
	Name: "final_product_insights",
	Columns: []Column{
		{Name: ColZone, Required: true},
		{Name: ColProductID, Required: true},
		{Name: ColProductName, Required: true},
		{Name: ColVisits, Required: true},
		{Name: ColOnlineViews, Required: true},
		{Name: ColZoneCategory, Required: true},
	},
}

// PlanSchema describes the relocation plan output.
var PlanSchema = Schema{
	Name: "relocation_plan",
	Columns: []Column{
		{Name: ColProductID, Required: true},
		{Name: ColProductName},
		{Name: ColCurrentZone, Required: true},
		{Name: ColDestinationZone, Aliases: []string{"recommended_zone", "new_zone"}, Required: true},
		{Name: ColScore, Aliases: []string{"relocation_score"}},
		{Name: ColReason, Aliases: []string{"why_this_zone"}},
		{Name: ColTimestamp},
	},
}

// ProductPairsSchema describes complementary product pairs: each row names a
// product and one product that sells well next to it.
var ProductPairsSchema = Schema{
	Name: "product_pairs",
	Columns: []Column{
		{Name: ColProduct, Aliases: []string{"product_name"}, Required: true},
		{Name: ColComplementary, Aliases: []string{"complement", "complementary_product"}, Required: true},
	},
}
