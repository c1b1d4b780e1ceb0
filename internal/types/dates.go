package types

import "regexp"

var displayMonths = map[string]string{
	"01": "Jan", "02": "Feb", "03": "Mar", "04": "Apr", "05": "May", "06": "Jun",
	"07": "Jul", "08": "Aug", "09": "Sep", "10": "Oct", "11": "Nov", "12": "Dec",
}

var canonicalDatePrefix = regexp.MustCompile(`^(\d{4})-(\d{2})`)

// FormatDisplayDate 将 YYYY-MM 转换为 YYYY-Mon，单向转换。
// 空串返回 N/A，不符合格式的值原样返回，未知月份显示为 Unknown。
func FormatDisplayDate(date string) string {
	if date == "" {
		return "N/A"
	}
	m := canonicalDatePrefix.FindStringSubmatch(date)
	if m == nil {
		return date
	}
	month, ok := displayMonths[m[2]]
	if !ok {
		month = "Unknown"
	}
	return m[1] + "-" + month
}
