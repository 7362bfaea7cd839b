package format

import (
	"strconv"
	"time"
)

// Percent renders a 0..100 value with one decimal, e.g. "45.2%".
func Percent(p float64) string {
	var buf [24]byte
	s := strconv.AppendFloat(buf[:0], p, 'f', 1, 64)
	return string(s) + "%"
}

// Value renders a progress value compactly: integers without decimals,
// everything else with up to three.
func Value(v float64) string {
	if v == float64(int64(v)) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', 3, 64)
}

// Elapsed renders a duration as m:ss or h:mm:ss.
func Elapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d / time.Second)
	h, m, s := total/3600, (total/60)%60, total%60
	if h > 0 {
		return strconv.FormatInt(h, 10) + ":" + pad2(m) + ":" + pad2(s)
	}
	return strconv.FormatInt(m, 10) + ":" + pad2(s)
}

func pad2(n int64) string {
	if n < 10 {
		return "0" + strconv.FormatInt(n, 10)
	}
	return strconv.FormatInt(n, 10)
}
