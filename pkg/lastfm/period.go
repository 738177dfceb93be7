package lastfm

import "strings"

// Canonical chart periods.
const (
	PeriodWeek     = "7day"
	PeriodMonth    = "1month"
	Period3Months  = "3month"
	Period6Months  = "6month"
	Period12Months = "12month"
	PeriodOverall  = "overall"
)

// DefaultPeriod is used for empty or unknown periods.
const DefaultPeriod = PeriodWeek

var periodAliases = map[string]string{
	"1week":    PeriodWeek,
	"week":     PeriodWeek,
	"7day":     PeriodWeek,
	"7days":    PeriodWeek,
	"1month":   PeriodMonth,
	"month":    PeriodMonth,
	"3month":   Period3Months,
	"3months":  Period3Months,
	"6month":   Period6Months,
	"6months":  Period6Months,
	"12month":  Period12Months,
	"12months": Period12Months,
	"1year":    Period12Months,
	"overall":  PeriodOverall,
}

// NormalizePeriod maps friendly forms such as "1 week" or "3 Months" to the
// API value. Anything unrecognised falls back to [DefaultPeriod].
func NormalizePeriod(s string) string {
	key := strings.ToLower(strings.Join(strings.Fields(s), ""))
	if p, ok := periodAliases[key]; ok {
		return p
	}
	return DefaultPeriod
}
