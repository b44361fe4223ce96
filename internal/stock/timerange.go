package stock

import (
	"slices"

	"iexcloud/internal/fetcher"
)

// TimeRange is a range path parameter such as "1y" or "ytd".
type TimeRange string

const (
	RangeMax  TimeRange = "max"
	Range5Y   TimeRange = "5y"
	Range2Y   TimeRange = "2y"
	Range1Y   TimeRange = "1y"
	RangeYTD  TimeRange = "ytd"
	Range6M   TimeRange = "6m"
	Range3M   TimeRange = "3m"
	Range1M   TimeRange = "1m"
	RangeNext TimeRange = "next"

	// Intraday chart ranges: one month in 30 minute intervals, five days by
	// day and five days in 10 minute intervals.
	Range1MM TimeRange = "1mm"
	Range5D  TimeRange = "5d"
	Range5DM TimeRange = "5dm"
)

// DividendRanges are the ranges accepted by Dividends and Splits.
var DividendRanges = []TimeRange{Range5Y, Range2Y, Range1Y, RangeYTD, Range6M, Range3M, Range1M, RangeNext}

// ChartRanges are the ranges accepted by Prices.
var ChartRanges = []TimeRange{RangeMax, Range5Y, Range2Y, Range1Y, RangeYTD, Range6M, Range3M, Range1M, Range1MM, Range5D, Range5DM}

func (r TimeRange) validate(allowed []TimeRange) error {
	if slices.Contains(allowed, r) {
		return nil
	}
	return fetcher.NewInvalidArgumentError("unsupported time range %q, expected one of %v", r, allowed)
}
