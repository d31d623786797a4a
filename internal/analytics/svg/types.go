package svg

// SeriesStyle binds an event key to its legend label and stroke color.
type SeriesStyle struct {
	Key   string
	Label string
	Color string
}

// TrendOpts customises the trend chart renderer.
type TrendOpts struct {
	Title       string
	Description string
	Series      []SeriesStyle
	AxisColor   string
	GridColor   string
	TickCount   int
	ShowDots    bool
}

// Defaults for the trend chart.
const (
	DefaultTicks = 4
)

// DefaultSeriesStyles mirrors the four funnel lines of the admin screens.
var DefaultSeriesStyles = []SeriesStyle{
	{Key: "page_view", Label: "Page views", Color: "#0D9276"},
	{Key: "package_view", Label: "Package views", Color: "#1D4ED8"},
	{Key: "booking_submit", Label: "Bookings", Color: "#B42318"},
	{Key: "whatsapp_open", Label: "WhatsApp", Color: "#16A34A"},
}
