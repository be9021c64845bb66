package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		code Code
	}{
		{"validation", Validation("Invalid input", map[string]any{"field": "name"}), CodeValidation},
		{"filesystem", FileSystem("File not found", map[string]any{"path": "/test/file.txt"}), CodeFileSystem},
		{"build", Build("Build failed", map[string]any{"step": "compilation"}), CodeBuild},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.NotEmpty(t, tt.err.Context)
			assert.Equal(t, tt.err.Message, tt.err.Error())
		})
	}
}

func TestNewWithoutContext(t *testing.T) {
	err := Validation("Invalid input", nil)
	assert.Nil(t, err.Context)
	assert.Equal(t, "Error: Invalid input", Format(err))
}

func TestWrap(t *testing.T) {
	cause := errors.New("permission denied")
	err := Wrap(CodeFileSystem, "Failed to write file: /tmp/x", cause, map[string]any{"path": "/tmp/x"})

	assert.Equal(t, "Failed to write file: /tmp/x: permission denied", err.Error())
	assert.ErrorIs(t, err, cause)

	assert.Nil(t, Wrap(CodeBuild, "nothing", nil, nil))
}

func TestIsMatchesCode(t *testing.T) {
	err := FileSystem("a", nil)
	assert.True(t, errors.Is(err, FileSystem("b", nil)))
	assert.False(t, errors.Is(err, Validation("a", nil)))
}

func TestGetCodeAndIsCode(t *testing.T) {
	wrapped := errors.Join(errors.New("outer"), Validation("inner", nil))

	assert.Equal(t, CodeValidation, GetCode(wrapped))
	assert.True(t, IsCode(wrapped, CodeValidation))
	assert.Equal(t, Code(""), GetCode(errors.New("plain")))
	assert.False(t, IsCode(nil, CodeValidation))
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"validation", Validation("x", nil), 2},
		{"filesystem", FileSystem("x", nil), 3},
		{"build", Build("x", nil), 4},
		{"internal", Internal("x", errors.New("boom")), 1},
		{"plain", errors.New("x"), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}

func TestFormat(t *testing.T) {
	t.Run("with context", func(t *testing.T) {
		err := New(CodeInternal, "Test error", map[string]any{"foo": "bar", "count": 42})
		out := Format(err)
		assert.Contains(t, out, "Error: Test error")
		assert.Contains(t, out, "Context:")
		assert.Contains(t, out, `foo: "bar"`)
		assert.Contains(t, out, "count: 42")
	})

	t.Run("empty context", func(t *testing.T) {
		err := New(CodeInternal, "Test error", map[string]any{})
		assert.Equal(t, "Error: Test error", Format(err))
	})

	t.Run("plain error", func(t *testing.T) {
		assert.Equal(t, "Error: boom", Format(errors.New("boom")))
	})

	t.Run("nil", func(t *testing.T) {
		assert.Empty(t, Format(nil))
	})
}

func TestContextIsCopied(t *testing.T) {
	ctx := map[string]any{"path": "a"}
	err := FileSystem("x", ctx)
	ctx["path"] = "b"

	e, ok := As(err)
	require.True(t, ok)
	assert.Equal(t, "a", e.Context["path"])
}

func TestInternal(t *testing.T) {
	cause := errors.New("unexpected end of JSON input")
	err := Internal("Failed to load manifest schema", cause)

	assert.True(t, IsCode(err, CodeInternal))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "Failed to load manifest schema: unexpected end of JSON input", err.Error())
	assert.Empty(t, err.Context)
}
