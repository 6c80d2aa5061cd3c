package schema

import "fmt"

var aggregationAbbrev = map[string]string{
	"Minutes": "Min",
	"Hours":   "H",
	"Days":    "D",
	"Weeks":   "W",
	"Months":  "M",
}

// Timeframe converts a look-back quantity and an aggregation prompt value into the
// bar timeframe notation used by market data feeds ("14D", "5Min").
// Unknown aggregations fall back to minutes.
func Timeframe(aggregation, quantity string) string {
	abbrev, ok := aggregationAbbrev[aggregation]
	if !ok {
		abbrev = "Min"
	}
	return fmt.Sprintf("%s%s", quantity, abbrev)
}
