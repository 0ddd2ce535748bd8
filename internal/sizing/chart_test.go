package sizing

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/davemorenodev/loungelab-backend/pkg/enums"
)

func TestRecommend(t *testing.T) {
	cases := []struct {
		name   string
		waist  float64
		inseam float64
		want   enums.Size
	}{
		{"waist 33 inseam 30 is a medium", 33, 30, enums.SizeM},
		{"top of xs range", 27.5, 29, enums.SizeXS},
		{"bottom of s range", 27.6, 29.5, enums.SizeS},
		{"waist below chart clamps to xs", 23, 29, enums.SizeXS},
		{"waist above chart clamps to xl", 45, 31, enums.SizeXL},
		{"inseam inside tolerance keeps waist row", 32, 31.5, enums.SizeM},
		{"neighbor wins when its inseam fits", 32, 32, enums.SizeL},
		{"waist row stands when no inseam fits anywhere", 32, 40, enums.SizeM},
		{"inseam at tolerance edge keeps waist row", 29, 31, enums.SizeS},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Recommend(decimal.NewFromFloat(tc.waist), decimal.NewFromFloat(tc.inseam))
			if err != nil {
				t.Fatalf("Recommend: %v", err)
			}
			if got != tc.want {
				t.Fatalf("waist %.1f inseam %.1f: want %s, got %s", tc.waist, tc.inseam, tc.want, got)
			}
		})
	}
}

func TestRecommendRejectsNonPositiveMeasurements(t *testing.T) {
	if _, err := Recommend(decimal.Zero, decimal.NewFromInt(30)); err == nil {
		t.Fatal("expected error for zero waist")
	}
	if _, err := Recommend(decimal.NewFromInt(32), decimal.NewFromInt(-1)); err == nil {
		t.Fatal("expected error for negative inseam")
	}
}
