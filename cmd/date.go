package cmd

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/ademuri/tour-stats/internal/stats"
)

// ParsedDate is a date argument along with the precision it was given in.
type ParsedDate struct {
	Date  time.Time
	Year  bool
	Month bool
	Day   bool
	// Relative dates like "30d" count back from now.
	Relative bool
}

var (
	yearPattern     = regexp.MustCompile(`^\d{4}$`)
	monthPattern    = regexp.MustCompile(`^\d{4}-\d{2}$`)
	dayPattern      = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	relativePattern = regexp.MustCompile(`^(\d+)([dwmy])$`)
)

// parseDateRangeFromArgs turns zero, one or two date arguments into [start,
// end). A zero end means open ended.
func parseDateRangeFromArgs(args []string) (start time.Time, end time.Time, err error) {
	switch len(args) {
	case 0:

	case 1:
		start, end, err = getImplicitDateRange(args[0])

	case 2:
		start, end, err = getExplicitDateRange(args[0], args[1])

	default:
		err = fmt.Errorf("Expected at most two date arguments")
	}
	return
}

func getImplicitDateRange(ds string) (start time.Time, end time.Time, err error) {
	date, err := parseSingleDatestring(ds)
	if err != nil {
		return
	}

	start = date.Date
	switch {
	case date.Year:
		end = start.AddDate(1, 0, 0)

	case date.Month:
		end = start.AddDate(0, 1, 0)

	case date.Day:
		end = start.AddDate(0, 0, 1)

	case date.Relative:
		// Through now.

	default:
		err = fmt.Errorf("Invalid format: %q", ds)
	}

	return
}

func getExplicitDateRange(startString, endString string) (start time.Time, end time.Time, err error) {
	startParsed, err := parseSingleDatestring(startString)
	if err != nil {
		return
	}
	start = startParsed.Date

	endParsed, err := parseSingleDatestring(endString)
	if err != nil {
		return
	}
	end = endParsed.Date

	return
}

func parseSingleDatestring(ds string) (date ParsedDate, err error) {
	switch {
	case yearPattern.MatchString(ds):
		date.Date, err = time.Parse("2006", ds)
		if err != nil {
			err = fmt.Errorf("Parsing datestring as year: %w", err)
			return
		}
		date.Year = true

	case monthPattern.MatchString(ds):
		date.Date, err = time.Parse("2006-01", ds)
		if err != nil {
			err = fmt.Errorf("Parsing datestring as month: %w", err)
			return
		}
		date.Month = true

	case dayPattern.MatchString(ds):
		date.Date, err = time.Parse(stats.DateFormat, ds)
		if err != nil {
			err = fmt.Errorf("Parsing datestring as day: %w", err)
			return
		}
		date.Day = true

	case relativePattern.MatchString(ds):
		m := relativePattern.FindStringSubmatch(ds)
		n, _ := strconv.Atoi(m[1])
		now := time.Now()
		switch m[2] {
		case "d":
			date.Date = now.AddDate(0, 0, -n)
		case "w":
			date.Date = now.AddDate(0, 0, -7*n)
		case "m":
			date.Date = now.AddDate(0, -n, 0)
		case "y":
			date.Date = now.AddDate(-n, 0, 0)
		}
		date.Relative = true

	default:
		err = fmt.Errorf("Invalid format: %q", ds)
	}
	return
}

// parseShowDate parses a yyyy-mm-dd show date.
func parseShowDate(ds string) (time.Time, error) {
	if !dayPattern.MatchString(ds) {
		return time.Time{}, fmt.Errorf("Invalid show date %q, expected yyyy-mm-dd", ds)
	}
	d, err := time.Parse(stats.DateFormat, ds)
	if err != nil {
		return time.Time{}, fmt.Errorf("Invalid show date %q: %w", ds, err)
	}
	return d, nil
}
