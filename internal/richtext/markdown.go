package richtext

import (
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"

	"BlogEngine/internal/domain"
	"BlogEngine/internal/keys"
)

var markdown = goldmark.New(goldmark.WithExtensions(extension.Strikethrough))

// FromMarkdown converts markdown into rich-text blocks. Every block and span
// gets a fresh key from gen.
func FromMarkdown(src string, gen keys.Generator) []domain.Block {
	src = strings.TrimSpace(src)
	if src == "" {
		return nil
	}
	source := []byte(src)
	doc := markdown.Parser().Parse(text.NewReader(source))

	w := &blockWriter{source: source, keys: gen}
	_ = ast.Walk(doc, w.walk)
	w.flush()
	return w.blocks
}

type blockWriter struct {
	source []byte
	keys   keys.Generator
	blocks []domain.Block
	cur    *domain.Block
	marks  []string
	lists  []string
	quote  int
}

func (w *blockWriter) walk(n ast.Node, entering bool) (ast.WalkStatus, error) {
	switch node := n.(type) {
	case *ast.Heading:
		if entering {
			w.start(fmt.Sprintf("h%d", min(node.Level, 6)))
		} else {
			w.flush()
		}
	case *ast.Paragraph, *ast.TextBlock:
		if entering {
			if w.cur == nil || len(w.cur.Children) > 0 {
				w.start(w.paragraphStyle())
			}
		} else if w.cur != nil && w.cur.ListItem == "" {
			w.flush()
		}
	case *ast.Blockquote:
		if entering {
			w.quote++
		} else {
			w.quote--
		}
	case *ast.List:
		if entering {
			kind := "bullet"
			if node.IsOrdered() {
				kind = "number"
			}
			w.lists = append(w.lists, kind)
		} else {
			w.lists = w.lists[:len(w.lists)-1]
		}
	case *ast.ListItem:
		if entering {
			w.start("normal")
			w.cur.ListItem = w.lists[len(w.lists)-1]
			w.cur.Level = len(w.lists)
		} else {
			w.flush()
		}
	case *ast.FencedCodeBlock, *ast.CodeBlock:
		if entering {
			w.start("normal")
			lines := n.Lines()
			var sb strings.Builder
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				sb.Write(seg.Value(w.source))
			}
			w.span(strings.TrimRight(sb.String(), "\n"), []string{"code"})
			w.flush()
		}
		return ast.WalkSkipChildren, nil
	case *ast.Emphasis:
		mark := "em"
		if node.Level == 2 {
			mark = "strong"
		}
		w.toggle(mark, entering)
	case *ast.CodeSpan:
		w.toggle("code", entering)
	case *ast.Text:
		if entering {
			value := string(node.Segment.Value(w.source))
			if node.HardLineBreak() {
				value += "\n"
			} else if node.SoftLineBreak() {
				value += " "
			}
			w.span(value, w.marks)
		}
	case *ast.String:
		if entering {
			w.span(string(node.Value), w.marks)
		}
	}
	return ast.WalkContinue, nil
}

func (w *blockWriter) paragraphStyle() string {
	if w.quote > 0 {
		return "blockquote"
	}
	return "normal"
}

func (w *blockWriter) toggle(mark string, entering bool) {
	if entering {
		w.marks = append(w.marks, mark)
		return
	}
	for i := len(w.marks) - 1; i >= 0; i-- {
		if w.marks[i] == mark {
			w.marks = append(w.marks[:i], w.marks[i+1:]...)
			return
		}
	}
}

func (w *blockWriter) start(style string) {
	w.flush()
	w.cur = &domain.Block{
		Key:      w.keys.NewKey(),
		Type:     domain.TypeBlock,
		Style:    style,
		MarkDefs: []string{},
	}
}

func (w *blockWriter) span(value string, marks []string) {
	if value == "" {
		return
	}
	if w.cur == nil {
		w.start(w.paragraphStyle())
	}
	m := append([]string{}, marks...)
	if n := len(w.cur.Children); n > 0 && sameMarks(w.cur.Children[n-1].Marks, m) {
		w.cur.Children[n-1].Text += value
		return
	}
	w.cur.Children = append(w.cur.Children, domain.Span{
		Key:   w.keys.NewKey(),
		Type:  domain.TypeSpan,
		Text:  value,
		Marks: m,
	})
}

func (w *blockWriter) flush() {
	if w.cur == nil {
		return
	}
	if n := len(w.cur.Children); n > 0 {
		w.cur.Children[n-1].Text = strings.TrimRight(w.cur.Children[n-1].Text, " \n")
		w.blocks = append(w.blocks, *w.cur)
	}
	w.cur = nil
}

func sameMarks(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Paragraphs wraps plain text split on blank lines into normal blocks.
func Paragraphs(s string, gen keys.Generator) []domain.Block {
	var out []domain.Block
	for _, para := range strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		out = append(out, domain.Block{
			Key:      gen.NewKey(),
			Type:     domain.TypeBlock,
			Style:    "normal",
			MarkDefs: []string{},
			Children: []domain.Span{{Key: gen.NewKey(), Type: domain.TypeSpan, Text: para, Marks: []string{}}},
		})
	}
	return out
}
