package report

import (
	"encoding/json"
	"log"
	"time"
)

// deepAnalysisDays is the window length, in days, at or above which a report
// switches from basic to deep analysis.
const deepAnalysisDays = 21

// Period is a resolved, concrete time window.
type Period struct {
	Start time.Time
	End   time.Time
}

// Days counts the calendar days the window spans, rounding partial days up.
func (p Period) Days() int {
	diff := p.End.Sub(p.Start)
	days := int(diff / (24 * time.Hour))
	if diff%(24*time.Hour) > 0 {
		days++
	}
	return days
}

// Deep reports whether the window is long enough for deep analysis.
func (p Period) Deep() bool {
	return p.Days() >= deepAnalysisDays
}

// TimeRange is the request-side period selector. It accepts either a preset
// name ("last7days", "last30days", "thisMonth") or an explicit
// {"startDate": ..., "endDate": ...} object.
type TimeRange struct {
	Preset    string
	StartDate time.Time
	EndDate   time.Time
	explicit  bool
}

func (t *TimeRange) UnmarshalJSON(data []byte) error {
	var preset string
	if err := json.Unmarshal(data, &preset); err == nil {
		t.Preset = preset
		return nil
	}
	var obj struct {
		StartDate time.Time `json:"startDate"`
		EndDate   time.Time `json:"endDate"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	t.StartDate = obj.StartDate
	t.EndDate = obj.EndDate
	t.explicit = true
	return nil
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), t.Location())
}

// resolvePeriod turns a request-side range into a concrete window. Unknown
// presets and malformed explicit ranges fall back to the last 7 days rather
// than failing the request.
func resolvePeriod(tr TimeRange, now time.Time) Period {
	if tr.explicit {
		// Start == end is a valid one-day range.
		if !tr.StartDate.IsZero() && !tr.EndDate.IsZero() && !tr.StartDate.After(tr.EndDate) {
			return Period{Start: startOfDay(tr.StartDate), End: endOfDay(tr.EndDate)}
		}
		log.Printf("[Report] Invalid explicit period, falling back to last 7 days")
		return lastNDays(now, 7)
	}
	switch tr.Preset {
	case "last7days", "":
		return lastNDays(now, 7)
	case "today":
		return Period{Start: startOfDay(now), End: endOfDay(now)}
	case "last30days":
		return lastNDays(now, 30)
	case "thisMonth":
		y, m, _ := now.Date()
		start := time.Date(y, m, 1, 0, 0, 0, 0, now.Location())
		return Period{Start: start, End: endOfDay(now)}
	default:
		log.Printf("[Report] Unknown period preset %q, falling back to last 7 days", tr.Preset)
		return lastNDays(now, 7)
	}
}

func lastNDays(now time.Time, n int) Period {
	return Period{
		Start: startOfDay(now.AddDate(0, 0, -(n - 1))),
		End:   endOfDay(now),
	}
}
