// ISO 8601 period parsing ("P1Y2M3D", "P6M"), used only by the age-of-onset
// filter (spec §4.4). No ISO-8601-duration library appears anywhere in the
// retrieved pack (the original uses Python's `isoduration`); this is a
// narrow, stdlib-only parser justified in DESIGN.md for that reason.
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package beacon

import (
	"fmt"
	"strconv"
	"strings"
)

// isoPeriod is a calendar-based ISO 8601 period, approximated in days for
// comparison purposes (years=365d, months=30d) since exact calendar
// arithmetic needs an anchor date the Beacon protocol never supplies.
type isoPeriod struct {
	years, months, weeks, days int
}

func (p isoPeriod) approxDays() float64 {
	return float64(p.years)*365 + float64(p.months)*30 + float64(p.weeks)*7 + float64(p.days)
}

// parseISOPeriod parses the date part of an ISO 8601 duration string
// ("P1Y2M3D", "P6M", "P2W"). Time-of-day components ("PT...") are not used
// by this service's age-of-onset values and are rejected.
func parseISOPeriod(s string) (isoPeriod, error) {
	if !strings.HasPrefix(s, "P") || strings.Contains(s, "T") {
		return isoPeriod{}, fmt.Errorf("unsupported ISO 8601 duration %q", s)
	}
	body := s[1:]
	var p isoPeriod
	num := strings.Builder{}
	for _, r := range body {
		switch {
		case r >= '0' && r <= '9':
			num.WriteRune(r)
		case r == 'Y', r == 'M', r == 'W', r == 'D':
			if num.Len() == 0 {
				return isoPeriod{}, fmt.Errorf("malformed ISO 8601 duration %q", s)
			}
			n, err := strconv.Atoi(num.String())
			if err != nil {
				return isoPeriod{}, err
			}
			switch r {
			case 'Y':
				p.years = n
			case 'M':
				p.months = n
			case 'W':
				p.weeks = n
			case 'D':
				p.days = n
			}
			num.Reset()
		default:
			return isoPeriod{}, fmt.Errorf("malformed ISO 8601 duration %q", s)
		}
	}
	if num.Len() > 0 {
		return isoPeriod{}, fmt.Errorf("malformed ISO 8601 duration %q", s)
	}
	return p, nil
}
