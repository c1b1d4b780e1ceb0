// profilectl 在本地完成文本提取、结构化抽取与文档导出，不依赖 HTTP 服务与会话存储
package main

import (
	"fmt"
	"os"

	"resume-profiler/internal/config"
	"resume-profiler/internal/logger"

	"github.com/spf13/cobra"
)

var (
	configPath string
	verbose    bool

	// cfg 在 PersistentPreRunE 中加载
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "profilectl",
	Short: "Extract, synthesize and export resume profiles",
	Long: `profilectl runs the resume pipeline locally.

Examples:
  profilectl extract resume.pdf
  profilectl normalize notes.txt
  cat notes.txt | profilectl normalize -
  profilectl synthesize resume.docx --out profile.json
  profilectl export profile.json --format all --hidden skills-section --out ./dist`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			return fmt.Errorf("加载配置失败: %w", err)
		}
		cfg = loaded
		level := cfg.Logger.Level
		if verbose {
			level = "debug"
		}
		logger.InitWithWriter(logger.Config{
			Level:      level,
			Format:     "pretty",
			TimeFormat: "15:04:05",
		}, os.Stderr)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.AddCommand(extractCmd, normalizeCmd, synthesizeCmd, exportCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
