package quantity

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/spf13/cast"
)

// Parse converts a raw control value into an integer the way a form field
// is read: strings use their leading integer ("3 pizzas" is 3, "4.9" is 4),
// floats are truncated, booleans and empty input are not numbers.
func Parse(raw any) (int, bool) {
	switch v := raw.(type) {
	case nil, bool:
		return 0, false
	case string:
		return parseLeadingInt(v)
	case []byte:
		return parseLeadingInt(string(v))
	case json.Number:
		return parseLeadingInt(v.String())
	case float64:
		return truncate(v)
	case float32:
		return truncate(float64(v))
	}

	n, err := cast.ToIntE(raw)
	if err != nil {
		return 0, false
	}
	return n, true
}

func truncate(f float64) (int, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	t := math.Trunc(f)
	if t > math.MaxInt32 || t < math.MinInt32 {
		return 0, false
	}
	return int(t), true
}

func parseLeadingInt(s string) (int, bool) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)

	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}

	n, err := strconv.ParseInt(s[:end], 10, 32)
	if err != nil {
		return 0, false
	}
	return int(n), true
}
