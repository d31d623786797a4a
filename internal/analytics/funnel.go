package analytics

// Rates are the funnel conversion percentages for one report window. Values
// are stored as computed; clamping into [0,100] is a presentation concern,
// see ClampPercent.
type Rates struct {
	ViewToPackage     float64
	PackageToBooking  float64
	BookingToWhatsapp float64
	ViewToBooking     float64
}

// Pct returns num/den as a percentage, or 0 when the denominator is not
// positive. It never yields NaN or Inf.
func Pct(num, den float64) float64 {
	if den <= 0 {
		return 0
	}
	return num / den * 100
}

// ComputeRates derives the four funnel conversion rates from the totals.
func ComputeRates(totals Totals) Rates {
	pageViews := float64(totals.PageViews)
	packageViews := float64(totals.PackageViews)
	bookingSubmits := float64(totals.BookingSubmits)
	whatsappOpens := float64(totals.WhatsappOpens)
	return Rates{
		ViewToPackage:     Pct(packageViews, pageViews),
		PackageToBooking:  Pct(bookingSubmits, packageViews),
		BookingToWhatsapp: Pct(whatsappOpens, bookingSubmits),
		ViewToBooking:     Pct(bookingSubmits, pageViews),
	}
}

// ClampPercent bounds a rate into [0,100] for display. The stored rate is
// left untouched so over-100 conversions remain observable in exports.
func ClampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
