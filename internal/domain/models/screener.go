package models

// Range is an inclusive numeric constraint. Nil bounds are open. A
// record whose underlying value is null fails the constraint outright;
// absence of data is never treated as a qualifying value.
type Range struct {
	Min *float64
	Max *float64
}

// Contains reports whether v satisfies the range. The second argument
// flags whether the value exists at all.
func (r Range) Contains(v *float64) bool {
	if v == nil {
		return false
	}
	if r.Min != nil && *v < *r.Min {
		return false
	}
	if r.Max != nil && *v > *r.Max {
		return false
	}
	return true
}

// FilterSpec is the screening constraint set. All set constraints must
// hold (logical AND). Horizon scopes the trend/confidence constraints
// and the prediction-based sort keys.
type FilterSpec struct {
	Sector    *Sector
	Region    *Region
	AssetType *AssetType

	Horizon       Horizon
	Trend         *Trend
	MinConfidence float64

	RSI        *Range
	Volatility *Range // applies to volatility20d
	RiskMax    int    // 0 disables

	// Query is a case-insensitive substring match on ticker or name.
	Query string
}

// SortKey enumerates the sortable screening fields. Sorting selects a
// comparator from a fixed table, never reflective field lookup.
type SortKey int

const (
	SortConfidence SortKey = iota
	SortTicker
	SortName
	SortPrice
	SortChange
	SortExpectedReturn
	SortRisk
	SortRSI
	SortVolatility
)

// ParseSortKey maps the API sort parameter to its key.
func ParseSortKey(s string) (SortKey, bool) {
	switch s {
	case "confidence":
		return SortConfidence, true
	case "ticker":
		return SortTicker, true
	case "name":
		return SortName, true
	case "price":
		return SortPrice, true
	case "change":
		return SortChange, true
	case "expectedReturn":
		return SortExpectedReturn, true
	case "risk":
		return SortRisk, true
	case "rsi":
		return SortRSI, true
	case "volatility":
		return SortVolatility, true
	}
	return 0, false
}

// SortSpec pairs a sort key with a direction.
type SortSpec struct {
	Key  SortKey
	Desc bool
}
