package knowledge

import (
	"strings"

	"github.com/jomei/notionapi"
)

// Paragraph builds a paragraph block. Text past the rich-text limit is cut.
func Paragraph(text string) notionapi.Block {
	return &notionapi.ParagraphBlock{
		BasicBlock: notionapi.BasicBlock{Object: notionapi.ObjectTypeBlock, Type: notionapi.BlockTypeParagraph},
		Paragraph:  notionapi.Paragraph{RichText: richText(text)},
	}
}

// Heading builds a second-level heading block.
func Heading(text string) notionapi.Block {
	return &notionapi.Heading2Block{
		BasicBlock: notionapi.BasicBlock{Object: notionapi.ObjectTypeBlock, Type: notionapi.BlockTypeHeading2},
		Heading2:   notionapi.Heading{RichText: richText(text)},
	}
}

func richText(s string) []notionapi.RichText {
	return []notionapi.RichText{{Text: &notionapi.Text{Content: clip(s, maxText)}}}
}

// clip cuts s to at most n runes.
func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func plain(rt []notionapi.RichText) string {
	var b strings.Builder
	for _, t := range rt {
		switch {
		case t.PlainText != "":
			b.WriteString(t.PlainText)
		case t.Text != nil:
			b.WriteString(t.Text.Content)
		}
	}
	return b.String()
}

// pageTitle reads the first non-empty title among the usual title columns.
func pageTitle(props notionapi.Properties) string {
	for _, name := range []string{"Name", "Title", "title", "name"} {
		switch p := props[name].(type) {
		case *notionapi.TitleProperty:
			if t := plain(p.Title); t != "" {
				return t
			}
		case notionapi.TitleProperty:
			if t := plain(p.Title); t != "" {
				return t
			}
		}
	}
	return "Untitled"
}

// blocksText joins the text of the blocks that carry any, one paragraph per
// block. Code blocks are fenced.
func blocksText(blocks []notionapi.Block) string {
	var parts []string
	for _, block := range blocks {
		var text string
		switch b := block.(type) {
		case *notionapi.ParagraphBlock:
			text = plain(b.Paragraph.RichText)
		case *notionapi.Heading1Block:
			text = plain(b.Heading1.RichText)
		case *notionapi.Heading2Block:
			text = plain(b.Heading2.RichText)
		case *notionapi.Heading3Block:
			text = plain(b.Heading3.RichText)
		case *notionapi.BulletedListItemBlock:
			text = plain(b.BulletedListItem.RichText)
		case *notionapi.NumberedListItemBlock:
			text = plain(b.NumberedListItem.RichText)
		case *notionapi.QuoteBlock:
			text = plain(b.Quote.RichText)
		case *notionapi.CodeBlock:
			if code := plain(b.Code.RichText); code != "" {
				text = "```\n" + code + "\n```"
			}
		}
		if strings.TrimSpace(text) != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n\n")
}
