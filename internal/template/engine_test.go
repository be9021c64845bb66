package template

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/btools-dev/btools/internal/errors"
	"github.com/btools-dev/btools/internal/fsutil"
)

func TestNewContext(t *testing.T) {
	ctx := NewContext("my-ext", "1.0.0", "An extension", "")
	assert.Equal(t, Context{"projectName": "my-ext", "version": "1.0.0", "description": "An extension"}, ctx)

	ctx = NewContext("my-ext", "1.0.0", "", "Jane")
	assert.Equal(t, "Jane", ctx["author"])
	assert.Contains(t, ctx, "description")
}

func TestRenderFile_Variables(t *testing.T) {
	vars := Context{"projectName": "my-ext", "version": "1.2.3"}

	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"single", "name: {{projectName}}", "name: my-ext"},
		{"repeated", "{{projectName}}@{{version}} {{projectName}}", "my-ext@1.2.3 my-ext"},
		{"unknown passthrough", "{{unknown}}", "{{unknown}}"},
		{"spaces are not variables", "{{ projectName }}", "{{ projectName }}"},
		{"no tokens", "plain text", "plain text"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RenderFile(tt.content, vars))
		})
	}
}

func TestRenderFile_EmptyValueSubstitutes(t *testing.T) {
	assert.Equal(t, "[]", RenderFile("[{{description}}]", Context{"description": ""}))
}

func TestRenderFile_Conditionals(t *testing.T) {
	tests := []struct {
		name    string
		content string
		vars    Context
		want    string
	}{
		{"missing omits block", "{{#if missing}}X{{/if}}", Context{}, ""},
		{"present keeps body", "{{#if missing}}X{{/if}}", Context{"missing": "y"}, "X"},
		{"empty value omits block", "a{{#if author}}by {{author}}{{/if}}b", Context{"author": ""}, "ab"},
		{"body variables substituted", "{{#if author}}Author: {{author}}{{/if}}", Context{"author": "Jane"}, "Author: Jane"},
		{"multiline body", "start\n{{#if a}}\nline1\nline2\n{{/if}}\nend", Context{"a": "1"}, "start\n\nline1\nline2\n\nend"},
		{"several blocks", "{{#if a}}A{{/if}}-{{#if b}}B{{/if}}", Context{"a": "1"}, "A-"},
		{"whitespace after if", "{{#if   a}}A{{/if}}", Context{"a": "1"}, "A"},
		{
			"first close tag ends the block",
			"{{#if a}}1{{#if b}}2{{/if}}3{{/if}}",
			Context{"a": "x"},
			"1{{#if b}}23{{/if}}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RenderFile(tt.content, tt.vars))
		})
	}
}

func TestRenderFile_Idempotent(t *testing.T) {
	vars := NewContext("my-ext", "1.0.0", "Desc", "Jane")
	content := "# {{projectName}}\n{{#if author}}By {{author}}{{/if}}{{#if nope}}gone{{/if}}\nv{{version}} {{unknown}}"

	once := RenderFile(content, vars)
	assert.Equal(t, once, RenderFile(once, vars))
}

func TestRender_Tree(t *testing.T) {
	fs := fsutil.NewMemory()
	require.NoError(t, fs.WriteFile("/tpl/file1.txt", []byte("one {{projectName}}")))
	require.NoError(t, fs.WriteFile("/tpl/file2.txt", []byte("two")))
	require.NoError(t, fs.WriteFile("/tpl/subdir/file3.txt", []byte("{{#if author}}by {{author}}{{/if}}")))
	require.NoError(t, fs.EnsureDir("/tpl/empty"))

	files, err := NewEngine(fs).Render(context.Background(), "/tpl", NewContext("demo", "1.0.0", "", "Jane"))
	require.NoError(t, err)

	assert.ElementsMatch(t, []File{
		{Path: "file1.txt", Content: "one demo", Encoding: EncodingUTF8},
		{Path: "file2.txt", Content: "two", Encoding: EncodingUTF8},
		{Path: "subdir/file3.txt", Content: "by Jane", Encoding: EncodingUTF8},
	}, files)
}

func TestRender_PathVariables(t *testing.T) {
	fs := fsutil.NewMemory()
	require.NoError(t, fs.WriteFile("/tpl/{{projectName}}.txt", []byte("x")))
	require.NoError(t, fs.WriteFile("/tpl/{{projectName}}/{{unknown}}.js", []byte("y")))

	files, err := NewEngine(fs).Render(context.Background(), "/tpl", Context{"projectName": "demo"})
	require.NoError(t, err)

	var paths []string
	for _, f := range files {
		paths = append(paths, f.Path)
	}
	assert.ElementsMatch(t, []string{"demo.txt", "demo/{{unknown}}.js"}, paths)
}

func TestRender_BinaryFiles(t *testing.T) {
	png := []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0xff, 0xfe, '{', '{', 'x', '}', '}'}

	fs := fsutil.NewMemory()
	require.NoError(t, fs.WriteFile("/tpl/icons/{{projectName}}.png", png))

	files, err := NewEngine(fs).Render(context.Background(), "/tpl", Context{"projectName": "demo", "x": "boom"})
	require.NoError(t, err)
	require.Len(t, files, 1)

	assert.Equal(t, "icons/demo.png", files[0].Path)
	assert.Equal(t, EncodingBinary, files[0].Encoding)
	assert.Equal(t, png, []byte(files[0].Content))
}

func TestRender_EmptyDirectory(t *testing.T) {
	fs := fsutil.NewMemory()
	require.NoError(t, fs.EnsureDir("/tpl"))

	files, err := NewEngine(fs).Render(context.Background(), "/tpl", Context{})
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestRender_MissingRoot(t *testing.T) {
	_, err := NewEngine(fsutil.NewMemory()).Render(context.Background(), "/nope", Context{})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeFileSystem))
}

func TestRender_Canceled(t *testing.T) {
	fs := fsutil.NewMemory()
	require.NoError(t, fs.WriteFile("/tpl/a.txt", []byte("a")))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewEngine(fs).Render(ctx, "/tpl", Context{})
	assert.ErrorIs(t, err, context.Canceled)
}
