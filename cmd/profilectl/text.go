package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"resume-profiler/internal/bootstrap"
	"resume-profiler/internal/parser"
	"resume-profiler/internal/sanitizer"

	"github.com/spf13/cobra"
)

var extractCmd = &cobra.Command{
	Use:   "extract <file>",
	Short: "Print the plain text extracted from a pdf, docx or txt file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := extractFile(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), text)
		return err
	},
}

var normalizeCmd = &cobra.Command{
	Use:   "normalize <file|->",
	Short: "Normalize extracted text (bullets, blank lines, dates)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var text string
		if args[0] == "-" {
			data, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("读取标准输入失败: %w", err)
			}
			text = string(data)
		} else {
			var err error
			if text, err = extractFile(cmd.Context(), args[0]); err != nil {
				return err
			}
		}
		_, err := fmt.Fprintln(cmd.OutOrStdout(), parser.Normalize(text))
		return err
	},
}

var synthesizeOut string

var synthesizeCmd = &cobra.Command{
	Use:   "synthesize <file>",
	Short: "Build a structured profile JSON from a resume file with the configured LLM",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		text, err := extractFile(ctx, args[0])
		if err != nil {
			return err
		}
		text = parser.Normalize(text)
		if text == "" {
			return fmt.Errorf("%s: 规范化后没有可用文本", args[0])
		}

		models, err := bootstrap.NewModels(cfg)
		if err != nil {
			return err
		}
		defer models.Close()

		profile, err := bootstrap.NewSynthesizer(cfg, models.Synthesis).Synthesize(ctx, text)
		if err != nil {
			return fmt.Errorf("结构化抽取失败: %w", err)
		}

		data, err := json.MarshalIndent(sanitizer.Sanitize(profile), "", "  ")
		if err != nil {
			return err
		}
		if synthesizeOut == "" {
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return err
		}
		return os.WriteFile(synthesizeOut, append(data, '\n'), 0o644)
	},
}

func init() {
	synthesizeCmd.Flags().StringVarP(&synthesizeOut, "out", "o", "", "write the profile JSON to this file instead of stdout")
}

// extractFile txt 直接读取，其余格式走提取器；提取结果为空视为错误
func extractFile(ctx context.Context, path string) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ext, ok := parser.AllowedExtension(path)
	if !ok {
		return "", fmt.Errorf("不支持的文件类型: %s", filepath.Base(path))
	}
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("无法访问文件: %w", err)
	}
	text := bootstrap.NewExtractor(ctx).Extract(ctx, path, ext)
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%s: 无法提取文本", filepath.Base(path))
	}
	return text, nil
}
