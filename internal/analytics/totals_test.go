package analytics

import (
	"math"
	"testing"

	"github.com/matribhumi/matribhumi-admin/internal/travelapi"
)

func TestSummarizeTotalsZeroFill(t *testing.T) {
	totals := SummarizeTotals(travelapi.EventSummary{})
	if totals != (Totals{}) {
		t.Fatalf("empty summary should zero-fill, got %+v", totals)
	}

	totals = SummarizeTotals(nil)
	if totals != (Totals{}) {
		t.Fatalf("nil summary should zero-fill, got %+v", totals)
	}
}

func TestSummarizeTotalsPartialKeys(t *testing.T) {
	totals := SummarizeTotals(travelapi.EventSummary{
		travelapi.EventPageView:     42,
		travelapi.EventWhatsappOpen: 3,
	})
	if totals.PageViews != 42 || totals.WhatsappOpens != 3 {
		t.Fatalf("present keys misread: %+v", totals)
	}
	if totals.PackageViews != 0 || totals.BookingSubmits != 0 {
		t.Fatalf("missing keys must read 0: %+v", totals)
	}
}

func TestSummarizeTotalsNonFiniteValues(t *testing.T) {
	totals := SummarizeTotals(travelapi.EventSummary{
		travelapi.EventPageView:    math.NaN(),
		travelapi.EventPackageView: math.Inf(1),
	})
	if totals.PageViews != 0 || totals.PackageViews != 0 {
		t.Fatalf("non-finite counters must read 0: %+v", totals)
	}
}
