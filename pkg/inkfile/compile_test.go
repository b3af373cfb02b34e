// SPDX-License-Identifier: MPL-2.0

package inkfile

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

const testInkfile = `
# Document Title

This is an example inkfile for the tests below.

## serve (port)

> Serve the app on the ` + "`port`" + `

~~~bash
echo "Serving on port $port"
~~~


## node (name)

> An example node script

Valid lang codes: js, javascript

` + "```js" + `
const { name } = process.env;
console.log(` + "`Hello, ${name}!`" + `);
` + "```" + `


## no_script

This command has no source/script.
`

func mustCompile(t *testing.T, doc string, opts ...Option) *Command {
	t.Helper()

	root, err := CompileWithOptions(doc, opts...)
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	return root
}

func TestCompileBoolean(t *testing.T) {
	t.Parallel()

	root := mustCompile(t, `
## boolean
**OPTIONS**
- flag: -s --set |bool| Which port to serve on
~~~
echo $set
~~~
`)

	if len(root.Children) != 1 {
		t.Fatalf("len(Children) = %d, want 1", len(root.Children))
	}
	cmd := root.Find("boolean")
	if cmd == nil {
		t.Fatal("boolean command missing")
	}
	if len(cmd.Flags) != 1 {
		t.Fatalf("len(Flags) = %d, want 1", len(cmd.Flags))
	}
	want := Flag{Name: "set", Description: "Which port to serve on", Short: "s", Long: "set"}
	if !reflect.DeepEqual(cmd.Flags[0], want) {
		t.Errorf("Flags[0] = %+v, want %+v", cmd.Flags[0], want)
	}
	if !cmd.HasScript() {
		t.Fatal("boolean has no script")
	}
	if cmd.Script.Language != "" {
		t.Errorf("Script.Language = %q, want empty", cmd.Script.Language)
	}
	if cmd.Script.Source != "echo $set\n" {
		t.Errorf("Script.Source = %q, want %q", cmd.Script.Source, "echo $set\n")
	}
}

func TestCompileDocument(t *testing.T) {
	t.Parallel()

	root := mustCompile(t, testInkfile)

	if root.Depth != 1 || root.Name != "document" {
		t.Errorf("root = (%d, %q), want (1, %q)", root.Depth, root.Name, "document")
	}

	serve := root.Find("serve")
	if serve == nil {
		t.Fatal("serve command missing")
	}
	if serve.Description != "Serve the app on the `port`" {
		t.Errorf("serve.Description = %q", serve.Description)
	}
	if want := []Argument{{Name: "port", Required: true}}; !reflect.DeepEqual(serve.Args, want) {
		t.Errorf("serve.Args = %+v, want %+v", serve.Args, want)
	}
	if serve.Script.Language != "bash" {
		t.Errorf("serve.Script.Language = %q, want %q", serve.Script.Language, "bash")
	}
	if serve.Script.Source != "echo \"Serving on port $port\"\n" {
		t.Errorf("serve.Script.Source = %q", serve.Script.Source)
	}

	node := root.Find("node")
	if node == nil {
		t.Fatal("node command missing")
	}
	if node.Script.Language != "js" {
		t.Errorf("node.Script.Language = %q, want %q", node.Script.Language, "js")
	}
	if !strings.Contains(node.Script.Source, "process.env") {
		t.Errorf("node.Script.Source = %q", node.Script.Source)
	}

	if root.Find("no_script") != nil {
		t.Error("no_script should be pruned")
	}
}

func TestCompileInvalidFlagType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		doc  string
		typ  string
	}{
		{
			name: "shorthand",
			doc:  "## bad\n**OPTIONS**\n- flag: -b |invalid| An invalid type\n```\necho\n```\n",
			typ:  "invalid",
		},
		{
			name: "structured",
			doc:  "## bad\n\n**OPTIONS**\n\n- bad\n  - flag: -b\n  - type: nope\n\n```\necho\n```\n",
			typ:  "nope",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Compile(tt.doc)
			if err == nil {
				t.Fatal("Compile() expected error")
			}
			want := "Invalid flag type '" + tt.typ + "' Expected string | number | bool."
			if err.Error() != want {
				t.Errorf("Compile() error = %q, want %q", err.Error(), want)
			}
			if !errors.Is(err, ErrInvalidFlagType) {
				t.Errorf("errors.Is(err, ErrInvalidFlagType) = false")
			}
		})
	}
}

func TestCompileEmptyHeadingName(t *testing.T) {
	t.Parallel()

	_, err := Compile("## //alias\n```\necho\n```\n")
	if err == nil || err.Error() != "unexpected empty heading name" {
		t.Errorf("Compile() error = %v, want %q", err, "unexpected empty heading name")
	}
}

func TestCompileHeadingSpaces(t *testing.T) {
	t.Parallel()

	_, err := Compile("## serve port\n```\necho\n```\n")
	var spaceErr *HeadingSpacesError
	if !errors.As(err, &spaceErr) {
		t.Fatalf("Compile() error = %v, want HeadingSpacesError", err)
	}
	want := "Command names cannot contain spaces. Found 'serve port'. Did you forget to wrap args in ()?"
	if err.Error() != want {
		t.Errorf("Compile() error = %q, want %q", err.Error(), want)
	}
}

func TestCompileNoHeadings(t *testing.T) {
	t.Parallel()

	if _, err := Compile("just some text\n"); !errors.Is(err, ErrNoHeadings) {
		t.Errorf("Compile() error = %v, want %v", err, ErrNoHeadings)
	}
}

func TestCompileOverride(t *testing.T) {
	t.Parallel()

	root := mustCompile(t, `
## build

~~~sh
echo one
~~~

## test

~~~sh
go test
~~~

## build

**OPTIONS**

- flag: --fast Skip checks

~~~sh
echo two
~~~
`)

	var names []string
	for _, c := range root.Children {
		names = append(names, c.Name)
	}
	if want := []string{"test", "build"}; !reflect.DeepEqual(names, want) {
		t.Fatalf("children = %v, want %v", names, want)
	}
	build := root.Find("build")
	if build.Script.Source != "echo two\n" {
		t.Errorf("build.Script.Source = %q, want %q", build.Script.Source, "echo two\n")
	}
	if len(build.Flags) != 1 || build.Flags[0].Long != "fast" {
		t.Errorf("build.Flags = %+v, want the second declaration's flags", build.Flags)
	}
}

func TestCompilePruning(t *testing.T) {
	t.Parallel()

	root := mustCompile(t, `
## docs

Only prose here.

## db

### db migrate

~~~sh
migrate up
~~~

## empty

### empty nothing

No script either.
`)

	if root.Find("docs") != nil {
		t.Error("docs should be pruned")
	}
	if root.Find("empty") != nil {
		t.Error("empty should be pruned once its children are pruned")
	}
	db := root.Find("db")
	if db == nil {
		t.Fatal("db should be kept because it has a child with a script")
	}
	if db.HasScript() {
		t.Error("db should not have a script")
	}
	if db.Find("migrate") == nil {
		t.Error("db migrate missing")
	}
}

func TestCompileNestedHeadingForms(t *testing.T) {
	t.Parallel()

	root := mustCompile(t, "## db\n\n### flush (table)\n\n~~~sh\necho $table\n~~~\n\n### db vacuum\n\n~~~sh\necho vacuum\n~~~\n")

	flush := root.Lookup("db", "flush")
	if flush == nil {
		t.Fatal("db flush missing")
	}
	if len(flush.Args) != 1 || flush.Args[0].Name != "table" || !flush.Args[0].Required {
		t.Errorf("db flush args = %+v, want one required table", flush.Args)
	}
	if root.Lookup("db", "vacuum") == nil {
		t.Error("db vacuum missing")
	}
}

func TestCompileDuplicateAliases(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		doc  string
	}{
		{
			name: "siblings",
			doc:  "## start//default\n```\necho\n```\n## stop//default\n```\necho\n```\n",
		},
		{
			name: "cross branch",
			doc:  "## run//default\n```\necho\n```\n## db\n### db up//default\n```\necho\n```\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Compile(tt.doc)
			if err == nil || err.Error() != "Please update inkjet files to remove duplicate aliases" {
				t.Fatalf("Compile() error = %v", err)
			}
			var dupErr *DuplicateAliasError
			if !errors.As(err, &dupErr) || dupErr.Alias != "default" {
				t.Errorf("errors.As(DuplicateAliasError) alias = %v", dupErr)
			}
		})
	}
}

func TestCompileAliases(t *testing.T) {
	t.Parallel()

	root := mustCompile(t, "## Build//B//compile\n```\nmake\n```\n")
	cmd := root.Find("compile")
	if cmd == nil || cmd.Name != "build" {
		t.Fatalf("Find(compile) = %+v", cmd)
	}
	if want := []string{"b", "compile"}; !reflect.DeepEqual(cmd.Aliases, want) {
		t.Errorf("Aliases = %v, want %v", cmd.Aliases, want)
	}
}

func TestCompileStructuredFlags(t *testing.T) {
	t.Parallel()

	root := mustCompile(t, `
## serve

**OPTIONS**

- port
  - flag: -p --port
  - type: number
  - desc: Which port to serve on
  - required
- env
  - flags: --env
  - choices: dev, prod
  - multiple

~~~sh
echo "$port $env"
~~~
`)

	serve := root.Find("serve")
	if serve == nil {
		t.Fatal("serve command missing")
	}
	want := []Flag{
		{
			Name: "port", Description: "Which port to serve on", Short: "p", Long: "port",
			Required: true, TakesValue: true, Number: true,
		},
		{Name: "env", Long: "env", TakesValue: true, Multiple: true, Choices: []string{"dev", "prod"}},
	}
	if !reflect.DeepEqual(serve.Flags, want) {
		t.Errorf("Flags = %+v\nwant %+v", serve.Flags, want)
	}
}

func TestCompileOptionsRequireMarker(t *testing.T) {
	t.Parallel()

	root := mustCompile(t, `
## lint

Checks:

- flag: --not-a-flag this list is prose

~~~sh
golangci-lint run
~~~
`)

	if lint := root.Find("lint"); len(lint.Flags) != 0 {
		t.Errorf("Flags = %+v, want none", lint.Flags)
	}
}

func TestCompileVerboseFlag(t *testing.T) {
	t.Parallel()

	doc := `
## build

~~~sh
make
~~~

## quiet

**OPTIONS**

- flag: -v --version Print the version

~~~sh
make version
~~~
`

	plain := mustCompile(t, doc)
	if n := len(plain.Find("build").Flags); n != 0 {
		t.Errorf("Compile() build flags = %d, want 0", n)
	}

	root := mustCompile(t, doc, WithVerboseFlag())
	build := root.Find("build")
	want := Flag{Name: "verbose", Description: "Sets the level of verbosity", Short: "v", Long: "verbose"}
	if len(build.Flags) != 1 || !reflect.DeepEqual(build.Flags[0], want) {
		t.Errorf("build.Flags = %+v, want [%+v]", build.Flags, want)
	}
	if quiet := root.Find("quiet"); len(quiet.Flags) != 1 {
		t.Errorf("quiet.Flags = %+v, want the declared -v flag only", quiet.Flags)
	}
}

func TestCompilePlatformLanguages(t *testing.T) {
	t.Parallel()

	doc := "## win\n\n```cmd\necho hi\n```\n\n## mac\n\n```osascript\nbeep\n```\n"

	linux := mustCompile(t, doc, WithPlatform("linux"))
	if linux.Find("win") != nil || linux.Find("mac") != nil {
		t.Error("platform-reserved scripts should be skipped on linux")
	}

	windows := mustCompile(t, doc, WithPlatform("windows"))
	if win := windows.Find("win"); win == nil || win.Script.Language != "cmd" {
		t.Errorf("win = %+v, want cmd script", win)
	}
	if windows.Find("mac") != nil {
		t.Error("osascript should be skipped on windows")
	}
}

func TestCompileSourceFile(t *testing.T) {
	t.Parallel()

	root := mustCompile(t, `# root

## local

~~~sh
echo local
~~~

<!-- inkfile: tools/inkjet.md -->

# tools

## fmt

~~~sh
gofmt -l .
~~~
`)

	if local := root.Find("local"); local.SourceFile != "" {
		t.Errorf("local.SourceFile = %q, want empty", local.SourceFile)
	}
	fmtCmd := root.Lookup("tools", "fmt")
	if fmtCmd == nil {
		t.Fatal("tools fmt missing")
	}
	if fmtCmd.SourceFile != "tools/inkjet.md" {
		t.Errorf("SourceFile = %q, want %q", fmtCmd.SourceFile, "tools/inkjet.md")
	}
}

func TestCompileConcatenatedDocuments(t *testing.T) {
	t.Parallel()

	root := mustCompile(t, `# first

## a

~~~sh
echo a
~~~

# second

## b

~~~sh
echo b
~~~

# third

## c

~~~sh
echo c
~~~
`)

	if root.Name != "first" {
		t.Errorf("root.Name = %q, want %q", root.Name, "first")
	}
	for _, path := range [][]string{{"a"}, {"second", "b"}, {"third", "c"}} {
		cmd := root.Lookup(path...)
		if cmd == nil {
			t.Errorf("Lookup(%v) = nil", path)
			continue
		}
		if cmd.Depth != len(path)+1 {
			t.Errorf("Lookup(%v).Depth = %d, want %d", path, cmd.Depth, len(path)+1)
		}
	}
}

func TestCompileSection(t *testing.T) {
	t.Parallel()

	doc := "## build\n\nBuild it.\n\n```sh\nmake\n```\n\n## docs\n\nNo script.\n\n## test\n\n```sh\ngo test\n```\n"
	root := mustCompile(t, doc)

	build := root.Find("build")
	if got := build.Section(doc); got != "## build\n\nBuild it.\n\n" {
		t.Errorf("build.Section() = %q", got)
	}
	if build.Span.Start != 0 {
		t.Errorf("build.Span.Start = %d, want 0", build.Span.Start)
	}
	test := root.Find("test")
	if got := test.Section(doc); !strings.HasPrefix(got, "## test") {
		t.Errorf("test.Section() = %q, want prefix %q", got, "## test")
	}
}

func TestCompileDescriptionOptionsMarker(t *testing.T) {
	t.Parallel()

	root := mustCompile(t, `
## deploy

> Deploy the app
**OPTIONS**
- flag: --env |string| Target environment

~~~sh
./deploy.sh
~~~
`)

	deploy := root.Find("deploy")
	if deploy.Description != "Deploy the app" {
		t.Errorf("Description = %q, want %q", deploy.Description, "Deploy the app")
	}
	if len(deploy.Flags) != 1 || !deploy.Flags[0].TakesValue {
		t.Errorf("Flags = %+v, want one value flag", deploy.Flags)
	}
}

func TestCompileIdempotent(t *testing.T) {
	t.Parallel()

	first := mustCompile(t, testInkfile)
	second := mustCompile(t, testInkfile)
	if !reflect.DeepEqual(first, second) {
		t.Error("compiling the same document twice produced different trees")
	}
}

func TestCompileTrailingArgs(t *testing.T) {
	t.Parallel()

	root := mustCompile(t, "## exec (target) -- (rest)\n```\necho\n```\n")
	want := []Argument{
		{Name: "target", Required: true},
		{Name: "rest", Multiple: true, Trailing: true},
	}
	if got := root.Find("exec").Args; !reflect.DeepEqual(got, want) {
		t.Errorf("Args = %+v, want %+v", got, want)
	}
}
