// Package htmltomarkdown converts extracted content HTML into
// GitHub-flavored markdown.
package htmltomarkdown

import (
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/fwojciec/docmirror"
)

// Ensure Converter implements docmirror.Converter at compile time.
var _ docmirror.Converter = (*Converter)(nil)

// Converter wraps html-to-markdown to convert HTML to Markdown.
// The table plugin produces GFM pipe tables; fenced code blocks keep
// the language hint from the source class attribute.
type Converter struct {
	conv *converter.Converter
}

// NewConverter creates a new Converter.
func NewConverter() *Converter {
	conv := converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			table.NewTablePlugin(),
		),
	)
	return &Converter{conv: conv}
}

// Convert transforms HTML content into Markdown.
func (c *Converter) Convert(html string) (string, error) {
	if strings.TrimSpace(html) == "" {
		return "", docmirror.Errorf(docmirror.EINVALID, "empty HTML input")
	}

	markdown, err := c.conv.ConvertString(html)
	if err != nil {
		return "", err
	}

	return markdown, nil
}
