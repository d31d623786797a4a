// Package analytics derives the dashboard metrics, conversion funnel, and
// chart geometry from the backend event reports. Everything here is a pure
// function of its inputs; nothing is persisted between render cycles.
package analytics

import (
	"math"

	"github.com/matribhumi/matribhumi-admin/internal/travelapi"
)

// Totals are the four funnel counters aggregated over a report window.
type Totals struct {
	PageViews      int64
	PackageViews   int64
	BookingSubmits int64
	WhatsappOpens  int64
}

// SummarizeTotals reads the four named counters out of an event summary.
// Missing keys and non-finite values count as zero; extra keys are ignored.
func SummarizeTotals(summary travelapi.EventSummary) Totals {
	return Totals{
		PageViews:      counter(summary, travelapi.EventPageView),
		PackageViews:   counter(summary, travelapi.EventPackageView),
		BookingSubmits: counter(summary, travelapi.EventBookingSubmit),
		WhatsappOpens:  counter(summary, travelapi.EventWhatsappOpen),
	}
}

func counter(summary travelapi.EventSummary, event string) int64 {
	value, ok := summary[event]
	if !ok || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0
	}
	return int64(value)
}
