package parser

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	lineBreakPattern     = regexp.MustCompile(`\r\n|\r`)
	trailingSpacePattern = regexp.MustCompile(`(?m)[ \t]+$`)
	blankRunPattern      = regexp.MustCompile(`\n{3,}`)
	spaceRunPattern      = regexp.MustCompile(`[ \t]{2,}`)
	bulletGlyphPattern   = regexp.MustCompile(`(?m)^([ \t]*)(?:•|●|▪|◦|‣|∙|·|â€¢)`)
	bulletPattern        = regexp.MustCompile(`(?m)^[ \t]*-[ \t]*([^-\s])`)
	headingPattern       = regexp.MustCompile(`(?m)^#+[ \t]*(.*?)[ \t]*$`)
	datePattern          = regexp.MustCompile(`\b(?:(\d{1,2})[/-]((?:19|20)\d{2})|((?:19|20)\d{2})[/-](\d{1,2})|([A-Za-z]+)\.?[ \t]+((?:19|20)\d{2})|((?:19|20)\d{2}))\b`)
)

// monthNumbers 月份名（含缩写）到两位月份
var monthNumbers = map[string]string{
	"jan": "01", "january": "01",
	"feb": "02", "february": "02",
	"mar": "03", "march": "03",
	"apr": "04", "april": "04",
	"may": "05",
	"jun": "06", "june": "06",
	"jul": "07", "july": "07",
	"aug": "08", "august": "08",
	"sep": "09", "sept": "09", "september": "09",
	"oct": "10", "october": "10",
	"nov": "11", "november": "11",
	"dec": "12", "december": "12",
}

// Normalize 规范化抽取出的原始文本：换行、空白、项目符号、标题标记与日期。
// 对已规范化的文本再次调用结果不变。
func Normalize(text string) string {
	text = norm.NFC.String(text)
	text = lineBreakPattern.ReplaceAllString(text, "\n")
	text = trailingSpacePattern.ReplaceAllString(text, "")
	text = blankRunPattern.ReplaceAllString(text, "\n\n")
	text = spaceRunPattern.ReplaceAllString(text, " ")
	text = bulletGlyphPattern.ReplaceAllString(text, "$1-")
	text = bulletPattern.ReplaceAllString(text, "- $1")
	text = headingPattern.ReplaceAllString(text, "# $1")
	text = replaceDates(text)
	return strings.TrimSpace(text)
}

// NormalizeDate 规范化单个日期值，无法识别时原样返回
func NormalizeDate(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	return replaceDates(value)
}

// replaceDates 逐个独立替换日期，无空格的区间如 05/2019-06/2020 两端都会被规范化
func replaceDates(text string) string {
	locs := datePattern.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return text
	}
	var b strings.Builder
	b.Grow(len(text) + 8*len(locs))
	last := 0
	for _, loc := range locs {
		start, end := loc[0], loc[1]
		b.WriteString(text[last:start])
		b.WriteString(standardizeDate(text[start:end]))
		last = end
	}
	b.WriteString(text[last:])
	return b.String()
}

func standardizeDate(match string) string {
	m := datePattern.FindStringSubmatch(match)
	if m == nil {
		return match
	}
	switch {
	case m[1] != "":
		if month, ok := twoDigitMonth(m[1]); ok {
			return m[2] + "-" + month
		}
	case m[3] != "":
		if month, ok := twoDigitMonth(m[4]); ok {
			return m[3] + "-" + month
		}
	case m[5] != "":
		if month, ok := monthNumbers[strings.ToLower(m[5])]; ok {
			return m[6] + "-" + month
		}
		// 非月份单词保留，仅规范化年份
		return match[:len(match)-len(m[6])] + m[6] + "-01"
	case m[7] != "":
		return m[7] + "-01"
	}
	return match
}

func twoDigitMonth(s string) (string, bool) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > 12 {
		return "", false
	}
	if n < 10 {
		return "0" + strconv.Itoa(n), true
	}
	return strconv.Itoa(n), true
}
