package season

import (
	"fmt"
	"strings"
	"time"

	"github.com/FACorreiaa/go-flight-explorer/internal/types"
)

// window is an inclusive month/day range that may wrap over the new year.
type window struct {
	fromMonth, fromDay int
	toMonth, toDay     int
}

func (w window) contains(month, day int) bool {
	md := month*100 + day
	from := w.fromMonth*100 + w.fromDay
	to := w.toMonth*100 + w.toDay
	if from <= to {
		return md >= from && md <= to
	}
	return md >= from || md <= to
}

const schoolDays = "School Days"

type calendar struct {
	name   string
	breaks []namedWindow
	// closures are non-school windows that cannot be selected as a period
	closures []window
}

type namedWindow struct {
	period string
	w      window
}

var calendars = []calendar{
	{
		name: "US/Canada",
		breaks: []namedWindow{
			{"Summer Break", window{6, 15, 8, 20}},
			{"Winter Break", window{12, 20, 1, 5}},
			{"Spring Break", window{3, 15, 3, 31}},
		},
		closures: []window{{11, 20, 11, 27}},
	},
	{
		name: "Australia",
		breaks: []namedWindow{
			{"Summer Break", window{12, 15, 2, 10}},
			{"Winter Break", window{6, 20, 7, 10}},
		},
		closures: []window{{4, 1, 4, 14}, {9, 20, 9, 30}},
	},
	{
		name: "Europe",
		breaks: []namedWindow{
			{"Summer Holiday", window{7, 1, 8, 31}},
			{"Winter Holiday", window{12, 20, 1, 6}},
		},
	},
	{
		name: "Asia",
		breaks: []namedWindow{
			{"Summer Break", window{7, 1, 8, 31}},
		},
		closures: []window{{12, 25, 1, 5}},
	},
}

func findCalendar(name string) (calendar, bool) {
	for _, c := range calendars {
		if c.name == name {
			return c, true
		}
	}
	return calendar{}, false
}

// SchoolPeriods lists every selectable "<calendar>: <period>" label.
func SchoolPeriods() []types.SchoolPeriod {
	var out []types.SchoolPeriod
	for _, c := range calendars {
		out = append(out, types.SchoolPeriod(c.name+": "+schoolDays))
		for _, b := range c.breaks {
			out = append(out, types.SchoolPeriod(c.name+": "+b.period))
		}
	}
	return out
}

// ParseSchoolPeriod normalizes a label, dropping display hints such as
// "(Dec-Jan)". Empty, "All" and "All Periods" parse to the empty period.
func ParseSchoolPeriod(label string) (types.SchoolPeriod, error) {
	label = strings.TrimSpace(label)
	if label == "" || strings.EqualFold(label, types.FilterAll) || strings.EqualFold(label, "All Periods") {
		return "", nil
	}
	if i := strings.Index(label, "("); i > 0 {
		label = strings.TrimSpace(label[:i])
	}
	name, period, ok := splitPeriod(types.SchoolPeriod(label))
	if !ok {
		return "", fmt.Errorf("%w: unknown school period %q", types.ErrInvalidRequest, label)
	}
	c, found := findCalendar(name)
	if !found {
		return "", fmt.Errorf("%w: unknown school calendar %q", types.ErrInvalidRequest, name)
	}
	if period == schoolDays {
		return types.SchoolPeriod(c.name + ": " + schoolDays), nil
	}
	for _, b := range c.breaks {
		if strings.EqualFold(b.period, period) {
			return types.SchoolPeriod(c.name + ": " + b.period), nil
		}
	}
	return "", fmt.Errorf("%w: unknown school period %q", types.ErrInvalidRequest, label)
}

func splitPeriod(p types.SchoolPeriod) (string, string, bool) {
	name, period, ok := strings.Cut(string(p), ":")
	if !ok {
		return "", "", false
	}
	return strings.TrimSpace(name), strings.TrimSpace(period), true
}

// IsWithinSchoolPeriod reports whether date falls inside the named period.
// "School Days" means outside every break and closure of that calendar.
// Unknown periods never match.
func IsWithinSchoolPeriod(date time.Time, period types.SchoolPeriod) bool {
	name, p, ok := splitPeriod(period)
	if !ok {
		return false
	}
	c, found := findCalendar(name)
	if !found {
		return false
	}
	month, day := int(date.Month()), date.Day()

	if p == schoolDays {
		for _, b := range c.breaks {
			if b.w.contains(month, day) {
				return false
			}
		}
		for _, w := range c.closures {
			if w.contains(month, day) {
				return false
			}
		}
		return true
	}

	for _, b := range c.breaks {
		if b.period == p {
			return b.w.contains(month, day)
		}
	}
	return false
}
