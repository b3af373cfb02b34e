// SPDX-License-Identifier: MPL-2.0

package inkfile

import (
	"bytes"
	"iter"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// Event kinds emitted by Events.
const (
	EventHeadingStart EventKind = iota + 1
	EventHeadingEnd
	EventParagraphStart
	EventParagraphEnd
	EventBlockQuoteStart
	EventBlockQuoteEnd
	EventListStart
	EventListEnd
	EventItemStart
	EventItemEnd
	EventCodeBlockStart
	EventCodeBlockEnd
	EventText
	EventLineBreak
	EventInlineCode
	EventHTMLComment
)

type (
	// EventKind identifies a structural markdown event.
	EventKind uint8

	// Event is a single structural markdown event.
	Event struct {
		Kind EventKind
		// Level is the heading depth for heading events.
		Level int
		// Lang is the fence info tag for code block events.
		Lang string
		// Text holds the payload of text, inline code and HTML comment events.
		Text string
		// Start and End delimit the event's bytes in the document.
		Start int
		End   int
	}
)

var eventKindNames = map[EventKind]string{
	EventHeadingStart:    "heading-start",
	EventHeadingEnd:      "heading-end",
	EventParagraphStart:  "paragraph-start",
	EventParagraphEnd:    "paragraph-end",
	EventBlockQuoteStart: "blockquote-start",
	EventBlockQuoteEnd:   "blockquote-end",
	EventListStart:       "list-start",
	EventListEnd:         "list-end",
	EventItemStart:       "item-start",
	EventItemEnd:         "item-end",
	EventCodeBlockStart:  "code-start",
	EventCodeBlockEnd:    "code-end",
	EventText:            "text",
	EventLineBreak:       "line-break",
	EventInlineCode:      "inline-code",
	EventHTMLComment:     "html-comment",
}

// String returns a short name for the event kind.
func (k EventKind) String() string {
	if s, ok := eventKindNames[k]; ok {
		return s
	}
	return "unknown"
}

// IsStart reports whether the kind opens a block.
func (k EventKind) IsStart() bool {
	switch k {
	case EventHeadingStart, EventParagraphStart, EventBlockQuoteStart,
		EventListStart, EventItemStart, EventCodeBlockStart:
		return true
	default:
		return false
	}
}

// markdown is stateless after construction and shared by all calls.
var markdown = goldmark.New(goldmark.WithExtensions(extension.Strikethrough))

// Events parses document and returns its structural events in document order.
// Only the structure relevant to command extraction is reported: indented code
// blocks, thematic breaks and non-comment HTML produce no events.
func Events(document string) iter.Seq[Event] {
	return func(yield func(Event) bool) {
		src := []byte(document)
		root := markdown.Parser().Parse(text.NewReader(src))
		w := &eventWalker{src: src, yield: yield}
		_ = ast.Walk(root, w.walk)
	}
}

type eventWalker struct {
	src   []byte
	yield func(Event) bool
	// last is the most recent block offset, used for nodes without source lines.
	last int
}

func (w *eventWalker) emit(ev Event) ast.WalkStatus {
	if !w.yield(ev) {
		return ast.WalkStop
	}
	return ast.WalkContinue
}

func (w *eventWalker) walk(n ast.Node, entering bool) (ast.WalkStatus, error) {
	switch node := n.(type) {
	case *ast.Heading:
		if entering {
			start, end := w.blockRange(node)
			return w.emit(Event{Kind: EventHeadingStart, Level: node.Level, Start: start, End: end}), nil
		}
		_, end := w.blockRange(node)
		return w.emit(Event{Kind: EventHeadingEnd, Level: node.Level, Start: end, End: end}), nil
	case *ast.Paragraph, *ast.TextBlock:
		start, end := w.blockRange(node)
		if entering {
			return w.emit(Event{Kind: EventParagraphStart, Start: start, End: end}), nil
		}
		return w.emit(Event{Kind: EventParagraphEnd, Start: end, End: end}), nil
	case *ast.Blockquote:
		return w.container(node, entering, EventBlockQuoteStart, EventBlockQuoteEnd), nil
	case *ast.List:
		return w.container(node, entering, EventListStart, EventListEnd), nil
	case *ast.ListItem:
		return w.container(node, entering, EventItemStart, EventItemEnd), nil
	case *ast.FencedCodeBlock:
		if !entering {
			return ast.WalkContinue, nil
		}
		return w.fencedCode(node), nil
	case *ast.CodeBlock:
		return ast.WalkSkipChildren, nil
	case *ast.HTMLBlock:
		if !entering {
			return ast.WalkContinue, nil
		}
		return w.htmlBlock(node), nil
	case *ast.RawHTML:
		if !entering {
			return ast.WalkContinue, nil
		}
		var buf bytes.Buffer
		for i := 0; i < node.Segments.Len(); i++ {
			seg := node.Segments.At(i)
			buf.Write(seg.Value(w.src))
		}
		if raw := buf.String(); strings.HasPrefix(raw, "<!--") {
			seg := node.Segments.At(0)
			if w.emit(Event{Kind: EventHTMLComment, Text: raw, Start: seg.Start, End: seg.Stop}) == ast.WalkStop {
				return ast.WalkStop, nil
			}
		}
		return ast.WalkSkipChildren, nil
	case *ast.CodeSpan:
		if !entering {
			return ast.WalkContinue, nil
		}
		return w.codeSpan(node), nil
	case *ast.Text:
		if !entering {
			return ast.WalkContinue, nil
		}
		value := util.UnescapePunctuations(node.Segment.Value(w.src))
		ev := Event{Kind: EventText, Text: string(value), Start: node.Segment.Start, End: node.Segment.Stop}
		if w.emit(ev) == ast.WalkStop {
			return ast.WalkStop, nil
		}
		if node.SoftLineBreak() || node.HardLineBreak() {
			return w.emit(Event{Kind: EventLineBreak, Text: "\n", Start: node.Segment.Stop, End: node.Segment.Stop}), nil
		}
		return ast.WalkContinue, nil
	case *ast.String:
		if !entering {
			return ast.WalkContinue, nil
		}
		return w.emit(Event{Kind: EventText, Text: string(node.Value), Start: w.last, End: w.last}), nil
	case *ast.AutoLink:
		if !entering {
			return ast.WalkContinue, nil
		}
		return w.emit(Event{Kind: EventText, Text: string(node.Label(w.src)), Start: w.last, End: w.last}), nil
	}
	return ast.WalkContinue, nil
}

func (w *eventWalker) container(n ast.Node, entering bool, open, closeKind EventKind) ast.WalkStatus {
	start, end := w.blockRange(n)
	if entering {
		return w.emit(Event{Kind: open, Start: start, End: end})
	}
	return w.emit(Event{Kind: closeKind, Start: end, End: end})
}

func (w *eventWalker) fencedCode(n *ast.FencedCodeBlock) ast.WalkStatus {
	start := w.last
	switch {
	case n.Info != nil:
		start = lineStart(w.src, n.Info.Segment.Start)
	case n.Lines().Len() > 0:
		if first := lineStart(w.src, n.Lines().At(0).Start); first > 0 {
			start = lineStart(w.src, first-1)
		}
	}
	w.last = start

	var body bytes.Buffer
	end := start
	for i := 0; i < n.Lines().Len(); i++ {
		seg := n.Lines().At(i)
		body.Write(seg.Value(w.src))
		end = seg.Stop
	}

	lang := string(n.Language(w.src))
	if w.emit(Event{Kind: EventCodeBlockStart, Lang: lang, Start: start, End: end}) == ast.WalkStop {
		return ast.WalkStop
	}
	if body.Len() > 0 {
		if w.emit(Event{Kind: EventText, Text: body.String(), Start: start, End: end}) == ast.WalkStop {
			return ast.WalkStop
		}
	}
	if w.emit(Event{Kind: EventCodeBlockEnd, Lang: lang, Start: end, End: end}) == ast.WalkStop {
		return ast.WalkStop
	}
	return ast.WalkSkipChildren
}

func (w *eventWalker) htmlBlock(n *ast.HTMLBlock) ast.WalkStatus {
	var buf bytes.Buffer
	for i := 0; i < n.Lines().Len(); i++ {
		seg := n.Lines().At(i)
		buf.Write(seg.Value(w.src))
	}
	if n.HasClosure() {
		buf.Write(n.ClosureLine.Value(w.src))
	}
	raw := strings.TrimSpace(buf.String())
	if !strings.HasPrefix(raw, "<!--") {
		return ast.WalkSkipChildren
	}
	start, end := w.blockRange(n)
	if w.emit(Event{Kind: EventHTMLComment, Text: raw, Start: start, End: end}) == ast.WalkStop {
		return ast.WalkStop
	}
	return ast.WalkSkipChildren
}

func (w *eventWalker) codeSpan(n *ast.CodeSpan) ast.WalkStatus {
	var buf bytes.Buffer
	start, end := -1, w.last
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch t := c.(type) {
		case *ast.Text:
			buf.Write(t.Segment.Value(w.src))
			if start < 0 {
				start = t.Segment.Start
			}
			end = t.Segment.Stop
		case *ast.String:
			buf.Write(t.Value)
		}
	}
	if start < 0 {
		start = w.last
	}
	if w.emit(Event{Kind: EventInlineCode, Text: buf.String(), Start: start, End: end}) == ast.WalkStop {
		return ast.WalkStop
	}
	return ast.WalkSkipChildren
}

// blockRange returns the byte range covered by a block node. The start is
// moved back to the beginning of its first line so heading markers are included.
// Container blocks without lines of their own use their first descendant.
func (w *eventWalker) blockRange(n ast.Node) (int, int) {
	first, last := firstLines(n), lastLines(n)
	if first == nil || first.Len() == 0 {
		return w.last, w.last
	}
	start := lineStart(w.src, first.At(0).Start)
	end := last.At(last.Len() - 1).Stop
	if start > w.last {
		w.last = start
	}
	return start, end
}

func firstLines(n ast.Node) *text.Segments {
	if n.Type() == ast.TypeBlock && n.Lines() != nil && n.Lines().Len() > 0 {
		return n.Lines()
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if c.Type() != ast.TypeBlock {
			continue
		}
		if l := firstLines(c); l != nil {
			return l
		}
	}
	return nil
}

func lastLines(n ast.Node) *text.Segments {
	for c := n.LastChild(); c != nil; c = c.PreviousSibling() {
		if c.Type() != ast.TypeBlock {
			continue
		}
		if l := lastLines(c); l != nil {
			return l
		}
	}
	if n.Type() == ast.TypeBlock && n.Lines() != nil && n.Lines().Len() > 0 {
		return n.Lines()
	}
	return nil
}

// lineStart returns the offset of the first byte of the line containing pos.
func lineStart(src []byte, pos int) int {
	if pos > len(src) {
		pos = len(src)
	}
	for pos > 0 && src[pos-1] != '\n' {
		pos--
	}
	return pos
}
