package chrome

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"io"
	"os"
	"strings"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"tenancypack/internal/config"
	"tenancypack/internal/document"
)

// Renderer prints documents with a headless Chrome started per document.
type Renderer struct {
	ExecPath  string
	NoSandbox bool
	Page      document.Page
	Timeout   time.Duration
}

// NewRenderer builds a Chrome renderer from the pdf section of cfg.
func NewRenderer(cfg config.Config) *Renderer {
	paper := cfg.Paper()
	return &Renderer{
		ExecPath:  cfg.PDF.ChromePath,
		NoSandbox: cfg.PDF.ChromeNoSandbox,
		Page:      document.Page{Width: paper.Width, Height: paper.Height, Margin: cfg.PDF.Margin},
		Timeout:   time.Duration(cfg.PDF.TimeoutSecs) * time.Second,
	}
}

func (r *Renderer) Render(ctx context.Context, doc *document.Document, w io.Writer) error {
	html, err := HTML(doc)
	if err != nil {
		return err
	}
	pdf, err := r.print(ctx, html)
	if err != nil {
		return err
	}
	_, err = w.Write(pdf)
	return err
}

func (r *Renderer) print(ctx context.Context, html string) ([]byte, error) {
	tmpDir, err := os.MkdirTemp("", "chromedata-*")
	if err != nil {
		return nil, fmt.Errorf("cannot create temp profile dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	allocatorOptions := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.UserDataDir(tmpDir),
		// Software rendering only; containers rarely expose a GPU.
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-gpu-compositing", true),
		chromedp.Flag("disable-features", "Vulkan,UseSkiaRenderer"),
		chromedp.Flag("use-gl", "swiftshader"),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if r.ExecPath != "" {
		allocatorOptions = append(allocatorOptions, chromedp.ExecPath(r.ExecPath))
	}
	if r.NoSandbox {
		allocatorOptions = append(allocatorOptions, chromedp.Flag("no-sandbox", true))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocatorOptions...)
	defer cancelAlloc()
	chromeCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	timeout := r.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	chromeCtx, cancelTimeout := context.WithTimeout(chromeCtx, timeout)
	defer cancelTimeout()

	return printInTab(chromeCtx, html, r.page())
}

func (r *Renderer) page() document.Page {
	if r.Page.Width <= 0 || r.Page.Height <= 0 {
		return document.A4
	}
	return r.Page
}

// printInTab loads html into the tab bound to ctx and prints it.
func printInTab(ctx context.Context, html string, pg document.Page) ([]byte, error) {
	var pdfBuf []byte
	err := chromedp.Run(ctx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frame, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frame.Frame.ID, html).Do(ctx)
		}),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			pdfBuf, _, err = page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(pg.Width).
				WithPaperHeight(pg.Height).
				WithMarginTop(pg.Margin).
				WithMarginBottom(pg.Margin).
				WithMarginLeft(pg.Margin).
				WithMarginRight(pg.Margin).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, err
	}
	return pdfBuf, nil
}

// IsSessionInterrupted reports whether err means the browser or tab went
// away rather than the document being unprintable.
func IsSessionInterrupted(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, s := range []string{"target closed", "session closed", "websocket", "connection reset"} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}

type htmlBlock struct {
	Tag   string
	Class string
	Mark  string
	Text  string
	Space float64
}

var pageTemplate = template.Must(template.New("document").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: Helvetica, Arial, sans-serif; font-size: 10pt; line-height: 12pt; margin: 0; }
p { margin: 0; }
h1 { font-size: 16pt; text-align: center; margin: 0 0 30pt 0; }
h2 { font-size: 12pt; margin: 12pt 0; }
h3 { font-size: 11pt; margin: 6pt 0 4pt 0; }
.item .mark { display: inline-block; width: 14pt; }
</style>
</head>
<body>
{{- range .Blocks}}
{{- if eq .Tag "div"}}
<div style="height: {{.Space}}pt"></div>
{{- else if eq .Tag "p"}}
<p class="{{.Class}}">{{if .Mark}}<span class="mark">{{.Mark}}</span>{{end}}{{.Text}}</p>
{{- else if eq .Tag "h1"}}
<h1>{{.Text}}</h1>
{{- else if eq .Tag "h2"}}
<h2>{{.Text}}</h2>
{{- else}}
<h3>{{.Text}}</h3>
{{- end}}
{{- end}}
</body>
</html>
`))

// HTML converts a document into a standalone page for printing.
func HTML(doc *document.Document) (string, error) {
	blocks := make([]htmlBlock, 0, len(doc.Blocks))
	for _, b := range doc.Blocks {
		hb := htmlBlock{Text: b.Text, Tag: "p", Class: "body"}
		switch b.Style {
		case document.StyleSpacer:
			hb = htmlBlock{Tag: "div", Space: b.Space}
		case document.StyleTitle:
			hb.Tag = "h1"
		case document.StyleHeading:
			hb.Tag = "h2"
		case document.StyleSubheading:
			hb.Tag = "h3"
		case document.StyleItem:
			hb.Class = "item"
			hb.Mark = strings.TrimSpace(document.MarkGlyph(b.Mark))
		}
		blocks = append(blocks, hb)
	}

	var buf bytes.Buffer
	err := pageTemplate.Execute(&buf, struct {
		Title  string
		Blocks []htmlBlock
	}{Title: doc.Title, Blocks: blocks})
	if err != nil {
		return "", fmt.Errorf("build html for %q: %w", doc.Title, err)
	}
	return buf.String(), nil
}
