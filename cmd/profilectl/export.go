package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"resume-profiler/internal/bootstrap"
	"resume-profiler/internal/logger"
	"resume-profiler/internal/render"
	"resume-profiler/internal/sanitizer"
	"resume-profiler/internal/types"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	exportFormat     string
	exportHidden     []string
	exportSkillsOnly bool
	exportDesign     string
	exportOut        string
)

var exportCmd = &cobra.Command{
	Use:   "export <profile.json>",
	Short: "Render a profile JSON to pdf, docx or xlsx",
	Long: `Render a profile JSON to pdf, docx or xlsx.

The input may be a bare profile or a session record with a "profile" key;
a session record's hidden_sections and design are used unless overridden.

Examples:
  profilectl export profile.json --format pdf --design d2
  profilectl export profile.json --format xlsx --skills-only
  profilectl export profile.json --format all --hidden personal-details-section --out ./dist`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "pdf", "pdf, docx, xlsx or all")
	exportCmd.Flags().StringSliceVar(&exportHidden, "hidden", nil, "section ids to omit, e.g. skills-section")
	exportCmd.Flags().BoolVar(&exportSkillsOnly, "skills-only", false, "xlsx: only the technical skills sheet")
	exportCmd.Flags().StringVar(&exportDesign, "design", "", "display_profile, d1, d2 or d3")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", ".", "output directory")
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	sess, err := loadProfileFile(args[0])
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("hidden") {
		sess.HiddenSections = types.NewHiddenSections(exportHidden...)
	}
	if exportDesign != "" {
		if !types.IsValidDesign(exportDesign) {
			return fmt.Errorf("未知的设计: %s", exportDesign)
		}
		sess.Design = exportDesign
	}

	formats, err := parseFormats(exportFormat)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(exportOut, 0o755); err != nil {
		return fmt.Errorf("创建输出目录失败: %w", err)
	}

	exporter, err := bootstrap.NewExporter(cfg)
	if err != nil {
		return err
	}
	profile := sanitizer.Sanitize(sess.Profile)

	// 各格式写入不同文件，互不依赖
	g, gCtx := errgroup.WithContext(ctx)
	for _, f := range formats {
		g.Go(func() error {
			art, err := exporter.Export(gCtx, profile, render.ExportOptions{
				Format:     f,
				Hidden:     sess.HiddenSections,
				Design:     sess.Design,
				SkillsOnly: exportSkillsOnly && f == render.FormatXLSX,
			})
			if err != nil {
				return fmt.Errorf("导出 %s 失败: %w", f, err)
			}
			path := filepath.Join(exportOut, art.Filename)
			if err := os.WriteFile(path, art.Data, 0o644); err != nil {
				return fmt.Errorf("写入 %s 失败: %w", path, err)
			}
			logger.Op("profilectl.export").Info().Str("format", string(f)).Int("bytes", len(art.Data)).Msg("导出完成")
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		})
	}
	return g.Wait()
}

func parseFormats(s string) ([]render.Format, error) {
	if s == "all" {
		return []render.Format{render.FormatPDF, render.FormatDOCX, render.FormatXLSX}, nil
	}
	f, ok := render.ParseFormat(s)
	if !ok {
		return nil, fmt.Errorf("不支持的导出格式: %s", s)
	}
	return []render.Format{f}, nil
}

// loadProfileFile 读取 profile JSON，兼容会话记录格式；任何形状的输入都会得到完整的 Profile
func loadProfileFile(path string) (*types.Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取 %s 失败: %w", path, err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%s 不是合法的 JSON 对象: %w", path, err)
	}

	sess := types.NewSession("cli", nil, types.CreationUpload)
	if nested, ok := raw["profile"].(map[string]any); ok {
		sess.Profile = types.ProfileFromMap(nested)
		if v, ok := raw["hidden_sections"]; ok {
			sess.HiddenSections = types.HiddenSectionsFromValue(v)
		}
		if d, ok := raw["design"].(string); ok && types.IsValidDesign(d) {
			sess.Design = d
		}
		return sess, nil
	}
	sess.Profile = types.ProfileFromMap(raw)
	return sess, nil
}
