package template

import (
	"context"
	"path/filepath"
	"regexp"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/btools-dev/btools/internal/fsutil"
	"github.com/btools-dev/btools/internal/logging"
)

// Encoding tells the writer how File.Content must be treated.
type Encoding string

const (
	EncodingUTF8   Encoding = "utf-8"
	EncodingBinary Encoding = "binary"
)

// Context holds the variables available to a template. A key that is absent
// is undefined; a key set to "" is defined but falsy.
type Context map[string]string

// NewContext returns a Context with the standard project keys. author is
// only set when non-empty.
func NewContext(projectName, version, description, author string) Context {
	ctx := Context{
		"projectName": projectName,
		"version":     version,
		"description": description,
	}
	if author != "" {
		ctx["author"] = author
	}
	return ctx
}

// File is one rendered template file.
type File struct {
	Path     string   `json:"path"`
	Content  string   `json:"content"`
	Encoding Encoding `json:"encoding"`
}

var (
	// Blocks do not nest: the first {{/if}} closes the nearest {{#if}}.
	conditionalPattern = regexp.MustCompile(`(?s)\{\{#if\s+(\w+)\}\}(.*?)\{\{/if\}\}`)
	variablePattern    = regexp.MustCompile(`\{\{(\w+)\}\}`)
)

// RenderFile applies conditional blocks and then variable substitution to
// content. Unknown variables are left in place.
func RenderFile(content string, vars Context) string {
	out := conditionalPattern.ReplaceAllStringFunc(content, func(block string) string {
		m := conditionalPattern.FindStringSubmatch(block)
		if vars[m[1]] == "" {
			return ""
		}
		return m[2]
	})

	return variablePattern.ReplaceAllStringFunc(out, func(token string) string {
		name := variablePattern.FindStringSubmatch(token)[1]
		if v, ok := vars[name]; ok {
			return v
		}
		return token
	})
}

// Engine renders template trees read from a FileSystem.
type Engine struct {
	fsys fsutil.FileSystem
	log  zerolog.Logger
}

// NewEngine returns an Engine reading templates from fsys.
func NewEngine(fsys fsutil.FileSystem) *Engine {
	return &Engine{
		fsys: fsys,
		log:  logging.GetLogger("template"),
	}
}

// Render walks root depth-first and renders every regular file's content
// and its path relative to root. Directories are not part of the result.
// Files that are not valid UTF-8 are returned untouched with
// EncodingBinary; their paths are still rendered.
func (e *Engine) Render(ctx context.Context, root string, vars Context) ([]File, error) {
	var files []File
	if err := e.walk(ctx, root, "", vars, &files); err != nil {
		return nil, err
	}
	return files, nil
}

func (e *Engine) walk(ctx context.Context, dir, rel string, vars Context, files *[]File) error {
	entries, err := e.fsys.ReadDir(dir)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}

		full := filepath.Join(dir, entry.Name())
		relPath := filepath.Join(rel, entry.Name())

		if entry.IsDir() {
			if err := e.walk(ctx, full, relPath, vars, files); err != nil {
				return err
			}
			continue
		}
		if !entry.Mode().IsRegular() {
			continue
		}

		data, err := e.fsys.ReadFile(full)
		if err != nil {
			return err
		}

		f := File{Path: RenderFile(relPath, vars)}
		if utf8.Valid(data) {
			f.Content = RenderFile(string(data), vars)
			f.Encoding = EncodingUTF8
		} else {
			f.Content = string(data)
			f.Encoding = EncodingBinary
		}
		e.log.Debug().Str("path", f.Path).Str("encoding", string(f.Encoding)).Msg("rendered template file")
		*files = append(*files, f)
	}
	return nil
}
