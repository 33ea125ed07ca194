package calendar

import (
	"time"

	"github.com/wonny/market-hours/internal/contracts"
)

// Generate produces one TradingDay per date in [start, end] inclusive.
// Priority per date, first match wins: weekend, holiday table,
// early-close table, regular session. Total over any range; repeated
// calls with the same tables yield identical output.
func Generate(start, end time.Time) []*contracts.TradingDay {
	start = contracts.NormalizeDate(start)
	end = contracts.NormalizeDate(end)

	var days []*contracts.TradingDay
	for current := start; !current.After(end); current = current.AddDate(0, 0, 1) {
		days = append(days, generateDay(current))
	}
	return days
}

// generateDay classifies a single date
func generateDay(date time.Time) *contracts.TradingDay {
	key := contracts.FormatDate(date)

	// Weekend check has top priority regardless of table contents
	if contracts.IsWeekend(date) {
		return &contracts.TradingDay{
			Date:   date,
			IsOpen: false,
			Notes:  "Weekend",
		}
	}

	if name, ok := marketHolidays[key]; ok {
		return &contracts.TradingDay{
			Date:        date,
			IsOpen:      false,
			HolidayName: name,
			Notes:       "Market closed for " + name,
		}
	}

	if notes, ok := earlyCloses[key]; ok {
		return &contracts.TradingDay{
			Date:         date,
			IsOpen:       true,
			OpenTimeET:   contracts.RegularOpenET,
			CloseTimeET:  contracts.EarlyCloseET,
			IsEarlyClose: true,
			Notes:        notes,
		}
	}

	return &contracts.TradingDay{
		Date:        date,
		IsOpen:      true,
		OpenTimeET:  contracts.RegularOpenET,
		CloseTimeET: contracts.RegularCloseET,
		Notes:       "Regular trading hours",
	}
}
