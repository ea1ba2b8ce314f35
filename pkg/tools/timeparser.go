package tools

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// 相对时间: now[{+|-}N[unit]][/unit]..., unit 为 s m h d w M y, 缺省为秒
var relativeToken = regexp.MustCompile(`^(?:([+-])(\d+)([smhdwMy]?)|/([smhdwMy]))`)

var absoluteLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02 15",
	"2006-01-02",
	"2006-01",
	"2006",
}

// ParseRangeTime 解析时间选择器的取值, isStart 决定取整方向（起点向下, 终点取单位末尾）.
// 返回 false 表示无法解析, 调用方应当将该边界视为不限制.
func ParseRangeTime(expr string, now time.Time, isStart bool) (time.Time, bool) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return time.Time{}, false
	}

	if strings.HasPrefix(expr, "now") {
		return parseRelative(expr[3:], now, isStart)
	}

	if ts, err := strconv.ParseInt(expr, 10, 64); err == nil && len(expr) > 4 {
		return time.Unix(ts, 0).In(now.Location()), true
	}

	for i, layout := range absoluteLayouts {
		t, err := time.ParseInLocation(layout, expr, now.Location())
		if err != nil {
			continue
		}
		if isStart {
			return t, true
		}
		// 终点取所给精度的最后一秒
		switch i {
		case 0:
			return t, true
		case 1:
			return t.Add(time.Minute - time.Second), true
		case 2:
			return t.Add(time.Hour - time.Second), true
		case 3:
			return t.AddDate(0, 0, 1).Add(-time.Second), true
		case 4:
			return t.AddDate(0, 1, 0).Add(-time.Second), true
		default:
			return t.AddDate(1, 0, 0).Add(-time.Second), true
		}
	}

	return time.Time{}, false
}

// IsRelativeTime 判断表达式是否以 now 开头
func IsRelativeTime(expr string) bool {
	return strings.HasPrefix(strings.TrimSpace(expr), "now")
}

func parseRelative(rest string, now time.Time, isStart bool) (time.Time, bool) {
	t := now
	for rest != "" {
		m := relativeToken.FindStringSubmatch(rest)
		if m == nil {
			return time.Time{}, false
		}
		rest = rest[len(m[0]):]

		if m[4] != "" {
			t = roundTime(t, m[4], isStart)
			continue
		}

		n, err := strconv.Atoi(m[2])
		if err != nil {
			return time.Time{}, false
		}
		if m[1] == "-" {
			n = -n
		}
		t = shiftTime(t, n, m[3])
	}

	return t, true
}

func shiftTime(t time.Time, n int, unit string) time.Time {
	switch unit {
	case "", "s":
		return t.Add(time.Duration(n) * time.Second)
	case "m":
		return t.Add(time.Duration(n) * time.Minute)
	case "h":
		return t.Add(time.Duration(n) * time.Hour)
	case "d":
		return t.AddDate(0, 0, n)
	case "w":
		return t.AddDate(0, 0, 7*n)
	case "M":
		return t.AddDate(0, n, 0)
	case "y":
		return t.AddDate(n, 0, 0)
	}
	return t
}

func roundTime(t time.Time, unit string, isStart bool) time.Time {
	loc := t.Location()
	var start, next time.Time

	switch unit {
	case "s":
		start = t.Truncate(time.Second)
		next = start.Add(time.Second)
	case "m":
		start = time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), 0, 0, loc)
		next = start.Add(time.Minute)
	case "h":
		start = time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, loc)
		next = start.Add(time.Hour)
	case "d":
		start = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
		next = start.AddDate(0, 0, 1)
	case "w":
		// 周一为一周的开始
		offset := (int(t.Weekday()) + 6) % 7
		start = time.Date(t.Year(), t.Month(), t.Day()-offset, 0, 0, 0, 0, loc)
		next = start.AddDate(0, 0, 7)
	case "M":
		start = time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, loc)
		next = start.AddDate(0, 1, 0)
	case "y":
		start = time.Date(t.Year(), 1, 1, 0, 0, 0, 0, loc)
		next = start.AddDate(1, 0, 0)
	default:
		return t
	}

	if isStart {
		return start
	}
	return next.Add(-time.Second)
}
