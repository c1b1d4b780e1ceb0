package render

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"resume-profiler/internal/constants"
	"resume-profiler/internal/logger"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
)

// ErrEmptyPDF 浏览器返回了空文档
var ErrEmptyPDF = errors.New("生成的 PDF 为空")

// PDFOptions 打印参数，单位为英寸
type PDFOptions struct {
	PaperWidth      float64
	PaperHeight     float64
	Margin          float64
	Scale           float64
	ViewportWidth   int64
	ViewportHeight  int64
	PrintBackground bool
}

// DefaultPDFOptions A4，1cm 边距，缩放 0.8
func DefaultPDFOptions() PDFOptions {
	return PDFOptions{
		PaperWidth:      8.27,
		PaperHeight:     11.69,
		Margin:          0.39,
		Scale:           0.8,
		ViewportWidth:   794,
		ViewportHeight:  1123,
		PrintBackground: true,
	}
}

// PDFEngine HTML 转 PDF 的边界
type PDFEngine interface {
	Render(ctx context.Context, html string, opts PDFOptions) ([]byte, error)
}

// ChromePDF 基于 headless Chrome 的 PDF 引擎
type ChromePDF struct {
	execPath      string
	workDir       string
	launchTimeout time.Duration
	settleTimeout time.Duration
}

// ChromeOption ChromePDF 配置项
type ChromeOption func(*ChromePDF)

// WithExecPath 指定 Chrome 可执行文件
func WithExecPath(path string) ChromeOption {
	return func(c *ChromePDF) { c.execPath = path }
}

// WithWorkDir 临时 HTML 的存放目录
func WithWorkDir(dir string) ChromeOption {
	return func(c *ChromePDF) { c.workDir = dir }
}

// WithTimeouts 浏览器启动与页面就绪的超时
func WithTimeouts(launch, settle time.Duration) ChromeOption {
	return func(c *ChromePDF) {
		if launch > 0 {
			c.launchTimeout = launch
		}
		if settle > 0 {
			c.settleTimeout = settle
		}
	}
}

// NewChromePDF 创建引擎，未指定路径时读取 CHROME_PATH
func NewChromePDF(opts ...ChromeOption) *ChromePDF {
	c := &ChromePDF{
		execPath:      os.Getenv("CHROME_PATH"),
		launchTimeout: constants.DefaultBrowserTimeout,
		settleTimeout: constants.DefaultBrowserTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Render 把 HTML 写入临时目录，用 file:// 打开，等待就绪后打印为 PDF
func (c *ChromePDF) Render(ctx context.Context, html string, opts PDFOptions) ([]byte, error) {
	log := logger.Op("render.pdf")

	tmpDir, err := os.MkdirTemp(c.workDir, "profile-html-")
	if err != nil {
		return nil, fmt.Errorf("创建临时目录失败: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	htmlPath := filepath.Join(tmpDir, "index.html")
	if err := os.WriteFile(htmlPath, []byte(html), 0o644); err != nil {
		return nil, fmt.Errorf("写入临时 HTML 失败: %w", err)
	}
	absPath, err := filepath.Abs(htmlPath)
	if err != nil {
		return nil, err
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.WindowSize(int(opts.ViewportWidth), int(opts.ViewportHeight)),
	)
	if c.execPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(c.execPath))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocOpts...)
	defer cancelAlloc()
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	// 首次 Run 启动浏览器，浏览器生命周期绑定 browserCtx，不能直接套超时
	launched := make(chan error, 1)
	go func() { launched <- chromedp.Run(browserCtx) }()
	select {
	case err = <-launched:
		if err != nil {
			return nil, fmt.Errorf("启动浏览器失败: %w", err)
		}
	case <-time.After(c.launchTimeout):
		cancelBrowser()
		return nil, fmt.Errorf("启动浏览器超时 (%s)", c.launchTimeout)
	}

	settleCtx, cancelSettle := context.WithTimeout(browserCtx, c.settleTimeout)
	defer cancelSettle()

	var (
		pdf        []byte
		ready      bool
		fontsReady bool
	)
	start := time.Now()
	err = chromedp.Run(settleCtx,
		emulation.SetDeviceMetricsOverride(opts.ViewportWidth, opts.ViewportHeight, 1, false),
		emulation.SetEmulatedMedia().WithMedia("print"),
		chromedp.Navigate("file://"+absPath),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Poll(`document.readyState === "complete"`, &ready),
		chromedp.Evaluate(`document.fonts.ready.then(() => true)`, &fontsReady, func(p *runtime.EvaluateParams) *runtime.EvaluateParams {
			return p.WithAwaitPromise(true)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			pdf, _, err = page.PrintToPDF().
				WithPrintBackground(opts.PrintBackground).
				WithPaperWidth(opts.PaperWidth).
				WithPaperHeight(opts.PaperHeight).
				WithMarginTop(opts.Margin).
				WithMarginBottom(opts.Margin).
				WithMarginLeft(opts.Margin).
				WithMarginRight(opts.Margin).
				WithScale(opts.Scale).
				WithPreferCSSPageSize(true).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("打印 PDF 失败: %w", err)
	}
	if len(pdf) == 0 {
		return nil, ErrEmptyPDF
	}

	log.Debug().Int("bytes", len(pdf)).Dur("elapsed", time.Since(start)).Msg("PDF 生成完成")
	return pdf, nil
}
