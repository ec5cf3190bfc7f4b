package domain

type StockState string

const (
	StockOK  StockState = "OK"
	StockLow StockState = "LOW_STOCK"
)

type ExpiryState string

const (
	ExpiryFresh        ExpiryState = "FRESH"
	ExpiryExpiringSoon ExpiryState = "EXPIRING_SOON"
	ExpiryExpired      ExpiryState = "EXPIRED"
)

// EvaluateStock returns StockLow when quantity has reached the reorder threshold.
// Inputs are assumed non-negative; records are validated before they get here.
func EvaluateStock(quantity, threshold int64) StockState {
	if quantity <= threshold {
		return StockLow
	}
	return StockOK
}

// EvaluateExpiry classifies an optional expiry date against today using a
// warning window of windowDays calendar days.
func EvaluateExpiry(expiry *Date, today Date, windowDays int) ExpiryState {
	if expiry == nil || expiry.IsZero() {
		return ExpiryFresh
	}

	days := today.DaysUntil(*expiry)
	switch {
	case days < 0:
		return ExpiryExpired
	case days <= windowDays:
		return ExpiryExpiringSoon
	default:
		return ExpiryFresh
	}
}

// Status is the dashboard classification of an item.
type Status string

const (
	StatusExpired      Status = "Expired"
	StatusOutOfStock   Status = "Out of Stock"
	StatusLowStock     Status = "Low Stock"
	StatusExpiringSoon Status = "Expiring Soon"
	StatusNormal       Status = "Normal"
)

var statusPriority = map[Status]int{
	StatusExpired:      0,
	StatusOutOfStock:   1,
	StatusLowStock:     2,
	StatusExpiringSoon: 3,
	StatusNormal:       4,
}

func (s Status) Priority() int {
	if p, ok := statusPriority[s]; ok {
		return p
	}
	return statusPriority[StatusNormal]
}

// Classify returns the single dashboard status of an item. Later checks
// override earlier ones, so an empty shelf always reads Out of Stock.
// Day boundaries match EvaluateExpiry: an item expiring today is still
// Expiring Soon.
func Classify(item InventoryItem, today Date, windowDays int) Status {
	status := StatusNormal
	expiry := EvaluateExpiry(item.ExpiryDate, today, windowDays)

	if expiry == ExpiryExpiringSoon {
		status = StatusExpiringSoon
	}
	if EvaluateStock(item.Quantity, item.ReorderThreshold) == StockLow {
		status = StatusLowStock
	}
	if expiry == ExpiryExpired {
		status = StatusExpired
	}
	if item.Quantity == 0 {
		status = StatusOutOfStock
	}
	return status
}

// ReportLine is one row of the inventory report.
type ReportLine struct {
	Item            InventoryItem `json:"item"`
	DaysUntilExpiry *int          `json:"days_until_expiry,omitempty"`
	Status          Status        `json:"status"`
}

// InventoryReport summarises the whole inventory.
type InventoryReport struct {
	GeneratedOn  Date         `json:"generated_on"`
	Lines        []ReportLine `json:"lines"`
	TotalItems   int          `json:"total_items"`
	TotalUnits   int64        `json:"total_units"`
	LowStock     int          `json:"low_stock"`
	ExpiringSoon int          `json:"expiring_soon"`
	Expired      int          `json:"expired"`
}
