package calendar

// Static NYSE/NASDAQ calendar tables, keyed by YYYY-MM-DD. These are the
// authoritative fallback: external calendar fetches only enrich run
// diagnostics and never override these entries.
//
// TODO: externalize as versioned configuration so the lookahead window
// can be extended without a code change.

// marketHolidays maps full-closure dates to the holiday name
var marketHolidays = map[string]string{
	// 2024
	"2024-01-01": "New Year's Day",
	"2024-01-15": "Martin Luther King Jr. Day",
	"2024-02-19": "Presidents' Day",
	"2024-03-29": "Good Friday",
	"2024-05-27": "Memorial Day",
	"2024-06-19": "Juneteenth",
	"2024-07-04": "Independence Day",
	"2024-09-02": "Labor Day",
	"2024-11-28": "Thanksgiving",
	"2024-12-25": "Christmas",

	// 2025
	"2025-01-01": "New Year's Day",
	"2025-01-20": "Martin Luther King Jr. Day",
	"2025-02-17": "Presidents' Day",
	"2025-04-18": "Good Friday",
	"2025-05-26": "Memorial Day",
	"2025-06-19": "Juneteenth",
	"2025-07-04": "Independence Day",
	"2025-09-01": "Labor Day",
	"2025-11-27": "Thanksgiving",
	"2025-12-25": "Christmas",

	// 2026 (July 4 falls on a Saturday; observed Friday July 3)
	"2026-01-01": "New Year's Day",
	"2026-01-19": "Martin Luther King Jr. Day",
	"2026-02-16": "Presidents' Day",
	"2026-04-03": "Good Friday",
	"2026-05-25": "Memorial Day",
	"2026-06-19": "Juneteenth",
	"2026-07-03": "Independence Day (Observed)",
	"2026-09-07": "Labor Day",
	"2026-11-26": "Thanksgiving",
	"2026-12-25": "Christmas",
}

// earlyCloses maps shortened-session dates (13:00 ET close) to their notes
var earlyCloses = map[string]string{
	// 2024
	"2024-07-03": "Day before Independence Day",
	"2024-11-29": "Day after Thanksgiving",
	"2024-12-24": "Christmas Eve",

	// 2025
	"2025-07-03": "Day before Independence Day",
	"2025-11-28": "Day after Thanksgiving",
	"2025-12-24": "Christmas Eve",

	// 2026
	"2026-11-27": "Day after Thanksgiving",
	"2026-12-24": "Christmas Eve",
}
