package sizing

import (
	"github.com/shopspring/decimal"

	"github.com/davemorenodev/loungelab-backend/pkg/enums"
	pkgerrors "github.com/davemorenodev/loungelab-backend/pkg/errors"
)

// ChartRow maps a waist range (inches, inclusive) and a nominal inseam to a size.
type ChartRow struct {
	Size     enums.Size
	WaistMin decimal.Decimal
	WaistMax decimal.Decimal
	Inseam   decimal.Decimal
}

// inseamTolerance is how far a shopper's inseam may sit from the row's
// nominal inseam and still count as a fit.
var inseamTolerance = decimal.NewFromFloat(1.5)

func inches(value float64) decimal.Decimal {
	return decimal.NewFromFloat(value)
}

// Chart is the sweatpants size chart, ordered smallest to largest with
// contiguous waist coverage.
var Chart = []ChartRow{
	{Size: enums.SizeXS, WaistMin: inches(25.0), WaistMax: inches(27.5), Inseam: inches(29.0)},
	{Size: enums.SizeS, WaistMin: inches(27.6), WaistMax: inches(30.5), Inseam: inches(29.5)},
	{Size: enums.SizeM, WaistMin: inches(30.6), WaistMax: inches(33.5), Inseam: inches(30.0)},
	{Size: enums.SizeL, WaistMin: inches(33.6), WaistMax: inches(36.5), Inseam: inches(30.5)},
	{Size: enums.SizeXL, WaistMin: inches(36.6), WaistMax: inches(40.0), Inseam: inches(31.0)},
}

// Recommend picks the chart row for the given measurements. The waist range
// decides the candidate row; the inseam only matters as a tie-breaker between
// a candidate and its neighbors, and a waist match always wins over an inseam
// mismatch. Waists outside the chart clamp to the nearest end.
func Recommend(waist, inseam decimal.Decimal) (enums.Size, error) {
	if !waist.IsPositive() || !inseam.IsPositive() {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "waist and inseam must be positive")
	}

	idx := -1
	for i, row := range Chart {
		if waist.GreaterThanOrEqual(row.WaistMin) && waist.LessThanOrEqual(row.WaistMax) {
			idx = i
			break
		}
	}
	if idx == -1 {
		if waist.LessThan(Chart[0].WaistMin) {
			return Chart[0].Size, nil
		}
		return Chart[len(Chart)-1].Size, nil
	}

	row := Chart[idx]
	if inseamFits(row, inseam) {
		return row.Size, nil
	}

	// The waist row stands even when the inseam is off; a neighbor only wins
	// when its inseam fits and the waist sits inside the shared tolerance.
	for _, neighbor := range neighbors(idx) {
		if inseamFits(Chart[neighbor], inseam) {
			return Chart[neighbor].Size, nil
		}
	}
	return row.Size, nil
}

func inseamFits(row ChartRow, inseam decimal.Decimal) bool {
	return inseam.Sub(row.Inseam).Abs().LessThanOrEqual(inseamTolerance)
}

func neighbors(idx int) []int {
	out := make([]int, 0, 2)
	if idx > 0 {
		out = append(out, idx-1)
	}
	if idx < len(Chart)-1 {
		out = append(out, idx+1)
	}
	return out
}
