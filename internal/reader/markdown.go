package reader

import (
	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"

	"github.com/use-agent/tinybrowser/internal/dom"
	"github.com/use-agent/tinybrowser/internal/htmlparse"
	"github.com/use-agent/tinybrowser/internal/style"
)

// newMarkdownConverter builds a reusable, goroutine-safe Converter for
// reader-mode Markdown export:
//
//   - base plugin: strips script, style, iframe, noscript, head, meta,
//     link, input, textarea, HTML comments.
//   - commonmark plugin: standard Markdown rendering.
//   - table plugin: preserves table structure with minimal cell padding.
func newMarkdownConverter() *converter.Converter {
	return converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			table.NewTablePlugin(
				table.WithCellPaddingBehavior(table.CellPaddingBehaviorMinimal),
			),
		),
	)
}

// renderMarkdown converts extracted content HTML to Markdown. Neither
// the readability library nor the pruning scorer has any notion of
// computed style once their output HTML leaves them, so this re-parses
// that HTML, runs it through the engine's own cascade, and drops
// anything the cascade resolved to display:none before handing the rest
// to the converter — the one point in the pipeline where that signal
// still applies.
func renderMarkdown(conv *converter.Converter, contentHTML, sourceURL string) (string, error) {
	root := htmlparse.Parse(contentHTML).Root
	style.Resolve(root, style.Builtin())
	removeHidden(root)
	return conv.ConvertString(dom.OuterHTML(root), converter.WithDomain(sourceURL))
}

// removeHidden detaches n's children the cascade resolved to
// display:none, along with their subtrees.
func removeHidden(n *dom.Node) {
	for _, c := range append([]*dom.Node(nil), n.Children...) {
		if c.Kind == dom.KindElement && style.Get(c, "display") == "none" {
			n.RemoveChild(c)
			continue
		}
		removeHidden(c)
	}
}
