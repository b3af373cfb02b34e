// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type Id int

const (
	InkfileNotFoundId Id = iota + 1
	InkfileReadFailedId
	CompileErrorId
	DuplicateAliasId
	CommandNotFoundId
	InterpreterNotFoundId
	ScriptExecutionFailedId
	ConfigLoadFailedId
	InvalidRuntimeModeId
	PermissionDeniedId
	UnsupportedLanguageId
)

type MarkdownMsg string

type HttpLink string

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink  // documentation for this issue type
	extLinks []HttpLink  // external links that might be useful for the user
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

// Render renders the issue with glamour using the given style ("dark",
// "light", "notty" or a JSON style path).
func (i *Issue) Render(stylePath string) (string, error) {
	extraMd := ""
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		extraMd += "\n\n## See also\n"
		for _, link := range i.docLinks {
			extraMd += "\n- <" + string(link) + ">"
		}
		for _, link := range i.extLinks {
			extraMd += "\n- <" + string(link) + ">"
		}
	}
	return render(string(i.mdMsg)+extraMd, stylePath)
}

const docsBase = "https://github.com/inkjet/inkjet#"

var (
	render = glamour.Render

	inkfileNotFoundIssue = &Issue{
		id: InkfileNotFoundId,
		mdMsg: `
# Could not locate an inkjet.md file

inkjet looks for ` + "`inkjet.md`" + ` in the current directory and then in every parent directory.

## Things you can try:
- Create an ` + "`inkjet.md`" + ` file in your project root:
~~~~markdown
# mytasks

## build
~~~sh
go build ./...
~~~
~~~~
- Point inkjet at a file explicitly:
~~~
$ inkjet --inkfile path/to/tasks.md
~~~`,
		docLinks: []HttpLink{docsBase + "inkjet-files"},
	}

	inkfileReadFailedIssue = &Issue{
		id: InkfileReadFailedId,
		mdMsg: `
# Failed to read the inkfile

The inkfile exists but could not be opened.

## Things you can try:
- Check the file permissions
- Make sure the path is a file, not a directory`,
	}

	compileErrorIssue = &Issue{
		id: CompileErrorId,
		mdMsg: `
# The inkfile could not be compiled

Headings become commands, fenced code blocks become scripts and ` + "`OPTIONS`" + ` lists become flags.

## Common mistakes:
- A heading with spaces in its name: wrap arguments in parentheses, e.g. ` + "`## deploy (env)`" + `
- A flag type other than ` + "`string`" + `, ` + "`number`" + ` or ` + "`bool`" + `
- A heading with only an alias, e.g. ` + "`## //b`",
		docLinks: []HttpLink{docsBase + "headings", docsBase + "options"},
	}

	duplicateAliasIssue = &Issue{
		id: DuplicateAliasId,
		mdMsg: `
# Duplicate aliases

Every alias must be unique across the whole command tree.

## Things you can try:
- Run with ` + "`--inkjet-debug`" + ` to see which commands share the alias
- Rename one of the aliases in the heading ` + "`## name // alias`",
	}

	commandNotFoundIssue = &Issue{
		id: CommandNotFoundId,
		mdMsg: `
# Command not found

The requested command is not defined in the inkfile.

## Things you can try:
- Run ` + "`inkjet --help`" + ` to list the available commands
- Print the merged inkfile with ` + "`inkjet --inkjet-print-all`",
	}

	interpreterNotFoundIssue = &Issue{
		id: InterpreterNotFoundId,
		mdMsg: `
# Interpreter not found

The program used to run this code block is not installed or not on your PATH.

## Things you can try:
- Install the interpreter for the block's language
- Map the language to another program in your config file:
~~~cue
interpreters: {
	py: "python3"
}
~~~`,
	}

	scriptExecutionFailedIssue = &Issue{
		id: ScriptExecutionFailedId,
		mdMsg: `
# Script execution failed

The script exited with a non-zero status.

## Things you can try:
- Run the command with ` + "`--preview`" + ` to inspect the script that would run
- Run the command with ` + "`--verbose`" + ` if the script supports it`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration

The configuration file is not valid CUE or does not match the expected schema.

## Things you can try:
- Check the syntax of ` + "`config.cue`" + `
- Show the effective configuration:
~~~
$ inkjet --inkjet-config-show
~~~`,
	}

	invalidRuntimeModeIssue = &Issue{
		id: InvalidRuntimeModeId,
		mdMsg: `
# Invalid runtime mode

` + "`default_runtime`" + ` must be ` + "`native`" + ` or ` + "`virtual`" + `.`,
	}

	permissionDeniedIssue = &Issue{
		id: PermissionDeniedId,
		mdMsg: `
# Permission denied

inkjet writes shebang scripts next to the inkfile before running them.

## Things you can try:
- Make sure the inkfile directory is writable
- Check that the filesystem is not mounted ` + "`noexec`",
	}

	unsupportedLanguageIssue = &Issue{
		id: UnsupportedLanguageId,
		mdMsg: `
# Code block not available on this platform

Blocks tagged ` + "`cmd`" + `, ` + "`bat`" + ` or ` + "`batch`" + ` only run on Windows and
blocks tagged ` + "`applescript`" + ` or ` + "`osascript`" + ` only run on macOS.`,
	}

	issues = map[Id]*Issue{
		inkfileNotFoundIssue.Id():       inkfileNotFoundIssue,
		inkfileReadFailedIssue.Id():     inkfileReadFailedIssue,
		compileErrorIssue.Id():          compileErrorIssue,
		duplicateAliasIssue.Id():        duplicateAliasIssue,
		commandNotFoundIssue.Id():       commandNotFoundIssue,
		interpreterNotFoundIssue.Id():   interpreterNotFoundIssue,
		scriptExecutionFailedIssue.Id(): scriptExecutionFailedIssue,
		configLoadFailedIssue.Id():      configLoadFailedIssue,
		invalidRuntimeModeIssue.Id():    invalidRuntimeModeIssue,
		permissionDeniedIssue.Id():      permissionDeniedIssue,
		unsupportedLanguageIssue.Id():   unsupportedLanguageIssue,
	}
)

func Values() []*Issue {
	return maps.Values(issues)
}

func Get(id Id) *Issue {
	return issues[id]
}
