// SPDX-License-Identifier: MPL-2.0

package inkfile

import (
	"regexp"
	"runtime"
	"strings"
)

// Verbose flag added to scriptable commands by WithVerboseFlag.
const (
	VerboseFlagName        = "verbose"
	VerboseFlagShort       = "v"
	VerboseFlagDescription = "Sets the level of verbosity"
)

const (
	phaseHeading phase = iota
	phaseDescription
	phaseScript
	phaseOptions
)

type (
	// Option configures CompileWithOptions.
	Option func(*compileOptions)

	compileOptions struct {
		verboseFlag bool
		goos        string
	}

	// phase is the part of a command section the compiler is reading.
	phase uint8

	// compiler folds the event stream into a flat, depth-tagged command list.
	compiler struct {
		opts compileOptions

		phase phase
		text  strings.Builder

		// flat holds sealed commands in source order.
		flat     []*Command
		cur      *Command
		headings int

		sourceFile string

		listDepth int
		flag      Flag
		flagDirty bool

		quoteDepth int
		quote      []string

		codeLang     string
		codeAccepted bool
		spanClosed   bool
	}
)

var inkfileComment = regexp.MustCompile(`^<!--\s*inkfile:\s*(.*?)\s*-->`)

// WithVerboseFlag adds a --verbose/-v switch to every command that has a
// script and does not already declare one.
func WithVerboseFlag() Option {
	return func(o *compileOptions) {
		o.verboseFlag = true
	}
}

// WithPlatform sets the platform used to reject platform-reserved script
// languages. It defaults to runtime.GOOS.
func WithPlatform(goos string) Option {
	return func(o *compileOptions) {
		o.goos = goos
	}
}

// Compile parses an inkfile document into its command tree.
// The returned command is the document root (depth 1).
func Compile(document string) (*Command, error) {
	return CompileWithOptions(document)
}

// CompileWithOptions is Compile with options applied.
func CompileWithOptions(document string, opts ...Option) (*Command, error) {
	o := compileOptions{goos: runtime.GOOS}
	for _, opt := range opts {
		opt(&o)
	}

	c := &compiler{opts: o, cur: &Command{Depth: 1}}
	for ev := range Events(document) {
		if err := c.handle(ev); err != nil {
			return nil, err
		}
	}
	if c.headings == 0 {
		return nil, ErrNoHeadings
	}
	c.seal(len(document))

	roots := treeify(c.flat)
	if len(roots) == 0 {
		return nil, ErrNoHeadings
	}
	root := roots[0]
	if err := validateAliases(root); err != nil {
		return nil, err
	}
	return root, nil
}

func (c *compiler) handle(ev Event) error {
	if ev.Kind.IsStart() {
		c.start(ev)
		c.text.Reset()
		return nil
	}

	switch ev.Kind {
	case EventText:
		c.text.WriteString(ev.Text)
	case EventLineBreak:
		c.text.WriteByte('\n')
	case EventInlineCode:
		c.text.WriteString("`" + ev.Text + "`")
	case EventHTMLComment:
		if m := inkfileComment.FindStringSubmatch(strings.TrimSpace(ev.Text)); m != nil {
			c.sourceFile = m[1]
		}
	case EventHeadingEnd:
		return c.endHeading()
	case EventCodeBlockEnd:
		if c.codeAccepted {
			c.cur.Script = &Script{Language: c.codeLang, Source: c.text.String()}
		}
		c.codeAccepted = false
		c.phase = phaseDescription
	case EventParagraphEnd:
		return c.endParagraph()
	case EventBlockQuoteEnd:
		c.quoteDepth = max(c.quoteDepth-1, 0)
		if c.quoteDepth == 0 {
			c.cur.Description = strings.Join(c.quote, " ")
			c.quote = nil
		}
	case EventListEnd:
		c.endList()
	}
	return nil
}

// start handles a block start event. The text buffer is reset afterwards.
func (c *compiler) start(ev Event) {
	switch ev.Kind {
	case EventHeadingStart:
		if ev.Level > 1 || c.headings > 0 {
			c.seal(ev.Start)
			c.cur = &Command{Depth: ev.Level}
		} else {
			// the document title replaces the implicit root
			c.cur = &Command{Depth: ev.Level, Description: c.cur.Description}
		}
		c.headings++
		c.cur.SourceFile = c.sourceFile
		c.cur.Span = Span{Start: ev.Start}
		c.phase = phaseHeading
		c.listDepth = 0
		c.spanClosed = false
	case EventCodeBlockStart:
		c.codeLang = strings.TrimSpace(ev.Lang)
		c.codeAccepted = LanguageSupported(c.codeLang, c.opts.goos)
		if c.codeAccepted && !c.spanClosed {
			c.cur.Span.End = ev.Start
			c.spanClosed = true
		}
		c.phase = phaseScript
	case EventBlockQuoteStart:
		c.quoteDepth++
		if c.quoteDepth == 1 {
			c.quote = nil
		}
		if c.phase == phaseHeading {
			c.phase = phaseDescription
		}
	case EventListStart:
		if c.listDepth > 0 || isOptionsMarker(c.text.String()) {
			c.listDepth++
			c.phase = phaseOptions
		}
	case EventItemStart:
		// a name-only item without nested configuration is complete
		if c.listDepth == 1 && c.flagDirty {
			c.pushFlag(c.flag)
		}
	}
}

func (c *compiler) endHeading() error {
	h, err := parseHeading(c.cur.Depth, c.text.String())
	if err != nil {
		return err
	}
	c.cur.Name = h.name
	c.cur.Aliases = h.aliases
	c.cur.Args = h.args
	c.phase = phaseDescription
	return nil
}

func (c *compiler) endParagraph() error {
	text := strings.TrimSpace(c.text.String())
	if c.quoteDepth > 0 {
		if text != "" {
			c.quote = append(c.quote, text)
		}
		return nil
	}
	if c.phase != phaseOptions {
		return nil
	}

	switch c.listDepth {
	case 1:
		key, value, found := strings.Cut(text, ":")
		if !found {
			c.flag.Name = text
			c.flagDirty = true
			return nil
		}
		if !isFlagKey(strings.ToLower(strings.TrimSpace(key))) {
			return nil
		}
		f, err := parseShorthandFlag(value)
		if err != nil {
			return err
		}
		c.pushFlag(f)
	case 2:
		if err := applyFlagConfig(&c.flag, text); err != nil {
			return err
		}
		c.flagDirty = true
	}
	return nil
}

func (c *compiler) endList() {
	if c.listDepth == 0 {
		return
	}
	c.listDepth--
	switch c.listDepth {
	case 1:
		if c.flagDirty {
			c.pushFlag(c.flag)
		}
	case 0:
		if c.flagDirty {
			c.pushFlag(c.flag)
		}
		c.phase = phaseDescription
	}
}

func (c *compiler) pushFlag(f Flag) {
	c.cur.Flags = append(c.cur.Flags, sealFlag(f))
	c.flag = Flag{}
	c.flagDirty = false
}

// seal finishes the current command and appends it to the flat list.
// next is the offset where the following section starts.
func (c *compiler) seal(next int) {
	cmd := c.cur
	if !c.spanClosed {
		cmd.Span.End = next
	}
	if c.opts.verboseFlag && cmd.HasScript() && !cmd.hasSwitch(VerboseFlagName, VerboseFlagShort) {
		cmd.Flags = append(cmd.Flags, Flag{
			Name:        VerboseFlagName,
			Description: VerboseFlagDescription,
			Short:       VerboseFlagShort,
			Long:        VerboseFlagName,
		})
	}
	c.flat = append(c.flat, cmd)
}
