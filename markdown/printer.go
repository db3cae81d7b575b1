package markdown

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/ticketchat"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

var ticketKey = regexp.MustCompile(`\b[A-Z][A-Z0-9]+-[0-9]+\b`)

var parser = goldmark.New(goldmark.WithExtensions(extension.Table)).Parser()

type printer struct {
	width int
	src   []byte
	out   strings.Builder

	strong lipgloss.Style
	em     lipgloss.Style
	key    lipgloss.Style
	faint  lipgloss.Style
	link   lipgloss.Style
	code   lipgloss.Style
}

func newPrinter(theme ticketchat.Theme, width int) *printer {
	return &printer{
		width:  width,
		strong: lipgloss.NewStyle().Bold(true),
		em:     lipgloss.NewStyle().Italic(true),
		key:    lipgloss.NewStyle().Foreground(color(theme.Accent)).Bold(true),
		faint:  lipgloss.NewStyle().Foreground(color(theme.Muted)).Faint(true),
		link:   lipgloss.NewStyle().Underline(true),
		code:   lipgloss.NewStyle().Bold(true),
	}
}

func color(index int) lipgloss.TerminalColor {
	if index < 0 {
		return lipgloss.NoColor{}
	}
	return lipgloss.Color(strconv.Itoa(index))
}

func (p *printer) print(source []byte) string {
	p.src = source
	doc := parser.Parse(text.NewReader(source))
	p.blocks(doc, "")
	return strings.TrimRight(p.out.String(), "\n")
}

// blocks prints each child block of parent, separating siblings with a
// blank line. prefix is prepended to every output line.
func (p *printer) blocks(parent ast.Node, prefix string) {
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		p.block(n, prefix)
		if n.NextSibling() != nil {
			p.out.WriteString(strings.TrimRight(prefix, " ") + "\n")
		}
	}
}

func (p *printer) block(n ast.Node, prefix string) {
	switch n := n.(type) {
	case *ast.Paragraph, *ast.TextBlock:
		p.wrapped(p.inline(n), prefix)
	case *ast.Heading:
		p.wrapped(p.key.Render(p.rawText(n)), prefix)
	case *ast.FencedCodeBlock:
		if lang := string(n.Language(p.src)); lang != "" {
			p.line(prefix, p.faint.Render(lang))
		}
		p.codeLines(n, prefix)
	case *ast.CodeBlock:
		p.codeLines(n, prefix)
	case *ast.List:
		p.list(n, prefix)
	case *ast.Blockquote:
		p.blocks(n, prefix+p.faint.Render("▌")+" ")
	case *ast.ThematicBreak:
		p.line(prefix, p.faint.Render(strings.Repeat("─", min(p.width, 40))))
	case *east.Table:
		p.table(n, prefix)
	case *ast.HTMLBlock:
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			p.line(prefix, strings.TrimRight(string(seg.Value(p.src)), "\n"))
		}
	default:
		p.blocks(n, prefix)
	}
}

func (p *printer) line(prefix, s string) {
	p.out.WriteString(prefix)
	p.out.WriteString(s)
	p.out.WriteString("\n")
}

// wrapped word-wraps s to the width left after prefix.
func (p *printer) wrapped(s, prefix string) {
	w := max(p.width-lipgloss.Width(prefix), 10)
	for _, l := range strings.Split(lipgloss.NewStyle().Width(w).Render(s), "\n") {
		p.line(prefix, strings.TrimRight(l, " "))
	}
}

func (p *printer) codeLines(n ast.Node, prefix string) {
	gutter := p.faint.Render("│") + " "
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		p.line(prefix+gutter, strings.TrimRight(string(seg.Value(p.src)), "\n"))
	}
}

func (p *printer) list(l *ast.List, prefix string) {
	num := l.Start
	for item := l.FirstChild(); item != nil; item = item.NextSibling() {
		marker := "- "
		if l.IsOrdered() {
			marker = fmt.Sprintf("%d. ", num)
			num++
		}
		hang := strings.Repeat(" ", len(marker))
		first := true
		for c := item.FirstChild(); c != nil; c = c.NextSibling() {
			if sub, ok := c.(*ast.List); ok {
				p.list(sub, prefix+hang)
				continue
			}
			lead := prefix + hang
			if first {
				lead = prefix + marker
			}
			p.item(p.inline(c), lead, prefix+hang)
			first = false
		}
	}
}

// item wraps s and writes the first line after lead and the rest after rest.
func (p *printer) item(s, lead, rest string) {
	w := max(p.width-len(rest), 10)
	for i, l := range strings.Split(lipgloss.NewStyle().Width(w).Render(s), "\n") {
		pre := rest
		if i == 0 {
			pre = lead
		}
		p.line(pre, strings.TrimRight(l, " "))
	}
}

func (p *printer) table(t *east.Table, prefix string) {
	var rows [][]string
	for r := t.FirstChild(); r != nil; r = r.NextSibling() {
		var cells []string
		for c := r.FirstChild(); c != nil; c = c.NextSibling() {
			cell := p.inline(c)
			if _, header := r.(*east.TableHeader); header {
				cell = p.strong.Render(cell)
			}
			cells = append(cells, cell)
		}
		rows = append(rows, cells)
	}

	var widths []int
	for _, row := range rows {
		for i, cell := range row {
			if i >= len(widths) {
				widths = append(widths, 0)
			}
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
	}

	sep := " " + p.faint.Render("│") + " "
	for ri, row := range rows {
		padded := make([]string, len(row))
		for i, cell := range row {
			padded[i] = cell + strings.Repeat(" ", widths[i]-lipgloss.Width(cell))
		}
		p.line(prefix, strings.TrimRight(strings.Join(padded, sep), " "))
		if ri == 0 {
			rules := make([]string, len(widths))
			for i, w := range widths {
				rules[i] = strings.Repeat("─", w)
			}
			p.line(prefix, p.faint.Render(strings.Join(rules, "─┼─")))
		}
	}
}

func (p *printer) inline(n ast.Node) string {
	var b strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		p.span(c, &b)
	}
	return b.String()
}

func (p *printer) span(n ast.Node, b *strings.Builder) {
	switch n := n.(type) {
	case *ast.Text:
		b.WriteString(p.highlightKeys(string(n.Segment.Value(p.src))))
		switch {
		case n.HardLineBreak():
			b.WriteByte('\n')
		case n.SoftLineBreak():
			b.WriteByte(' ')
		}
	case *ast.String:
		b.WriteString(p.highlightKeys(string(n.Value)))
	case *ast.Emphasis:
		// goldmark nests ***x*** as two Emphasis nodes.
		if n.Level == 1 {
			b.WriteString(p.em.Render(p.inline(n)))
		} else {
			b.WriteString(p.strong.Render(p.inline(n)))
		}
	case *ast.CodeSpan:
		var raw strings.Builder
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			if t, ok := c.(*ast.Text); ok {
				raw.Write(t.Segment.Value(p.src))
			}
		}
		b.WriteString(p.code.Render(raw.String()))
	case *ast.Link:
		b.WriteString(p.link.Render(p.rawText(n)))
		b.WriteString(" " + p.faint.Render("("+string(n.Destination)+")"))
	case *ast.Image:
		b.WriteString(p.link.Render(p.rawText(n)))
		b.WriteString(" " + p.faint.Render("("+string(n.Destination)+")"))
	case *ast.AutoLink:
		b.WriteString(p.link.Render(string(n.URL(p.src))))
	case *ast.RawHTML:
		for i := 0; i < n.Segments.Len(); i++ {
			seg := n.Segments.At(i)
			b.Write(seg.Value(p.src))
		}
	default:
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			p.span(c, b)
		}
	}
}

// rawText is the unstyled text of n's descendants. Labels styled as a whole
// (links, headings) use it: lipgloss cannot nest styled spans inside an
// underline.
func (p *printer) rawText(n ast.Node) string {
	var b strings.Builder
	var walk func(ast.Node)
	walk = func(n ast.Node) {
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			switch c := c.(type) {
			case *ast.Text:
				b.Write(c.Segment.Value(p.src))
				if c.SoftLineBreak() || c.HardLineBreak() {
					b.WriteByte(' ')
				}
			case *ast.String:
				b.Write(c.Value)
			default:
				walk(c)
			}
		}
	}
	walk(n)
	return b.String()
}

func (p *printer) highlightKeys(s string) string {
	return ticketKey.ReplaceAllStringFunc(s, func(k string) string { return p.key.Render(k) })
}
