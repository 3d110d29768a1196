package geospatial

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// SecondsDecimals is the number of fractional digits rendered for seconds.
const SecondsDecimals = 5

// ToSexagesimal renders decimal degrees as DD° MM' SS.SSSSS".
// Degrees and minutes are zero padded to two digits and a minus sign is
// prefixed only when the value is negative, e.g. -03° 19' 40.31121".
func ToSexagesimal(dd float64) string {
	sign := ""
	if dd < 0 {
		sign = "-"
	}
	abs := math.Abs(dd)
	degrees := math.Floor(abs)
	minutesDecimal := (abs - degrees) * 60
	minutes := math.Floor(minutesDecimal)
	seconds := Round((minutesDecimal-minutes)*60, SecondsDecimals)
	// carry so that rounding never renders 60 seconds or 60 minutes
	if seconds >= 60 {
		seconds -= 60
		minutes++
	}
	if minutes >= 60 {
		minutes -= 60
		degrees++
	}
	return fmt.Sprintf("%s%02d° %02d' %.*f\"", sign, int(degrees), int(minutes), SecondsDecimals, seconds)
}

// ParseSexagesimal parses the output of ToSexagesimal back to decimal degrees.
// It also tolerates a comma decimal separator and missing seconds.
func ParseSexagesimal(s string) (float64, error) {
	in := strings.TrimSpace(s)
	if in == "" {
		return 0, fmt.Errorf("parse sexagesimal: empty string")
	}
	negative := strings.HasPrefix(in, "-")
	in = strings.TrimPrefix(in, "-")

	fields := strings.FieldsFunc(in, func(r rune) bool {
		return r == '°' || r == '\'' || r == '"' || r == ' '
	})
	if len(fields) == 0 || len(fields) > 3 {
		return 0, fmt.Errorf("parse sexagesimal %q: expected degrees, minutes and seconds", s)
	}

	var parts [3]float64
	for i, f := range fields {
		v, err := strconv.ParseFloat(strings.ReplaceAll(f, ",", "."), 64)
		if err != nil {
			return 0, fmt.Errorf("parse sexagesimal %q: %w", s, err)
		}
		if v < 0 {
			return 0, fmt.Errorf("parse sexagesimal %q: negative component", s)
		}
		parts[i] = v
	}
	if parts[1] >= 60 || parts[2] > 60 {
		return 0, fmt.Errorf("parse sexagesimal %q: minutes or seconds out of range", s)
	}

	dd := parts[0] + parts[1]/60 + parts[2]/3600
	if negative {
		dd = -dd
	}
	return dd, nil
}
