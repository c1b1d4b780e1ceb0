package parser

import (
	"encoding/json"
	"regexp"
	"strings"
)

var fencedJSONPattern = regexp.MustCompile("(?s)```(?:json|JSON)?\\s*([\\{\\[].*?[\\}\\]])\\s*```")

// ExtractJSON 从 LLM 响应中提取 JSON 文本。
// 优先取 ```json 代码块中的内容，否则取第一个括号平衡的对象或数组。
// 找不到时返回空串。
func ExtractJSON(text string) string {
	if matches := fencedJSONPattern.FindStringSubmatch(text); len(matches) > 1 {
		return strings.TrimSpace(matches[1])
	}

	start := strings.IndexAny(text, "{[")
	if start == -1 {
		return ""
	}
	return balancedSpan(text, start)
}

// balancedSpan 从 start 处的括号开始，跳过字符串字面量，找到与之匹配的结束括号
func balancedSpan(text string, start int) string {
	open := text[start]
	closer := byte('}')
	if open == '[' {
		closer = ']'
	}

	level := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case open:
			level++
		case closer:
			level--
			if level == 0 {
				return strings.TrimSpace(text[start : i+1])
			}
		}
	}
	return ""
}

// decodeLooseObject 解析为 map，任何失败都返回空 map
func decodeLooseObject(text string) map[string]any {
	raw := ExtractJSON(text)
	if raw == "" {
		return map[string]any{}
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(raw), &m); err != nil || m == nil {
		return map[string]any{}
	}
	return m
}
