package render

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Label 把 snake_case 键转换为展示用标题，例如 web_servers -> Web Servers
func Label(key string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(key, "_", " "))
}

// DownloadName 生成下载文件名，空格与斜杠替换为下划线
func DownloadName(name, fallback, suffix string) string {
	name = strings.TrimSpace(plain(name))
	if name == "" {
		name = fallback
	}
	name = strings.NewReplacer(" ", "_", "/", "_").Replace(name)
	return name + suffix
}
