package analytics

import (
	"math"
	"testing"

	"github.com/matribhumi/matribhumi-admin/internal/travelapi"
)

func TestPctSafeDivision(t *testing.T) {
	cases := []struct {
		name string
		num  float64
		den  float64
		want float64
	}{
		{"zero denominator", 5, 0, 0},
		{"negative denominator", 5, -1, 0},
		{"zero numerator", 0, 10, 0},
		{"half", 5, 10, 50},
		{"full", 10, 10, 100},
		{"over full", 15, 10, 150},
	}
	for _, tc := range cases {
		got := Pct(tc.num, tc.den)
		if got != tc.want {
			t.Fatalf("%s: Pct(%v, %v) = %v, want %v", tc.name, tc.num, tc.den, got, tc.want)
		}
		if math.IsNaN(got) || math.IsInf(got, 0) {
			t.Fatalf("%s: Pct produced a non-finite value %v", tc.name, got)
		}
	}
}

func TestComputeRates(t *testing.T) {
	rates := ComputeRates(Totals{PageViews: 200, PackageViews: 80, BookingSubmits: 20, WhatsappOpens: 10})
	if rates.ViewToPackage != 40 {
		t.Fatalf("view->package = %v, want 40", rates.ViewToPackage)
	}
	if rates.PackageToBooking != 25 {
		t.Fatalf("package->booking = %v, want 25", rates.PackageToBooking)
	}
	if rates.BookingToWhatsapp != 50 {
		t.Fatalf("booking->whatsapp = %v, want 50", rates.BookingToWhatsapp)
	}
	if rates.ViewToBooking != 10 {
		t.Fatalf("view->booking = %v, want 10", rates.ViewToBooking)
	}
}

func TestComputeRatesAllZero(t *testing.T) {
	rates := ComputeRates(Totals{})
	for name, got := range map[string]float64{
		"view->package":     rates.ViewToPackage,
		"package->booking":  rates.PackageToBooking,
		"booking->whatsapp": rates.BookingToWhatsapp,
		"view->booking":     rates.ViewToBooking,
	} {
		if got != 0 {
			t.Fatalf("%s = %v, want 0 for empty totals", name, got)
		}
	}
}

func TestRatesIgnoreUnrecognizedSummaryKeys(t *testing.T) {
	base := travelapi.EventSummary{
		travelapi.EventPageView:      100,
		travelapi.EventPackageView:   40,
		travelapi.EventBookingSubmit: 8,
		travelapi.EventWhatsappOpen:  4,
	}
	noisy := travelapi.EventSummary{}
	for k, v := range base {
		noisy[k] = v
	}
	noisy["scroll_depth"] = 9999
	noisy["video_play"] = 17

	if ComputeRates(SummarizeTotals(base)) != ComputeRates(SummarizeTotals(noisy)) {
		t.Fatal("extra summary keys changed the funnel rates")
	}
}

func TestClampPercent(t *testing.T) {
	if got := ClampPercent(-3); got != 0 {
		t.Fatalf("ClampPercent(-3) = %v, want 0", got)
	}
	if got := ClampPercent(42.5); got != 42.5 {
		t.Fatalf("ClampPercent(42.5) = %v, want 42.5", got)
	}
	if got := ClampPercent(150); got != 100 {
		t.Fatalf("ClampPercent(150) = %v, want 100", got)
	}
}
