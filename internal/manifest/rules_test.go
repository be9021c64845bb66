package manifest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckVersion(t *testing.T) {
	tests := []struct {
		version string
		want    string
	}{
		{"1", ""},
		{"1.0", ""},
		{"1.0.0", ""},
		{"1.0.0.0", ""},
		{"65535.65535.65535.65535", ""},
		{"0.0.1", ""},
		{"1.0.0.0.0", MsgVersionFormat},
		{"1.0.a", MsgVersionFormat},
		{"", MsgVersionFormat},
		{"v1.0", MsgVersionFormat},
		{"1..0", MsgVersionFormat},
		{"1.0.70000", MsgVersionRange},
		{"65536", MsgVersionRange},
	}

	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			assert.Equal(t, tt.want, CheckVersion(tt.version))
			assert.Equal(t, tt.want == "", IsValidVersion(tt.version))
		})
	}
}

func TestIsValidMatchPattern(t *testing.T) {
	valid := []string{
		"<all_urls>",
		"file:///*",
		"file:///home/user/index.html",
		"https://*.google.com/*",
		"ftp://ftp.example.com/*",
		"*://*/*",
		"http://example.com",
		"http://[::1]/*",
		"https://localhost:8080/path",
	}
	for _, p := range valid {
		assert.True(t, IsValidMatchPattern(p), p)
	}

	invalid := []string{
		"invalid-pattern",
		"",
		"https://",
		"https://*foo.com/*",
		"chrome://extensions/*",
		"<all_urls> ",
		"https//example.com/*",
	}
	for _, p := range invalid {
		assert.False(t, IsValidMatchPattern(p), p)
	}
}

func TestIsValidIconSize(t *testing.T) {
	for _, size := range []string{"16", "48", "128", "256"} {
		assert.True(t, IsValidIconSize(size), size)
	}
	for _, size := range []string{"32", "64", "", "016"} {
		assert.False(t, IsValidIconSize(size), size)
	}
}

func TestIsValidPermission(t *testing.T) {
	tests := []struct {
		permission string
		want       bool
	}{
		{"storage", true},
		{"tabs", true},
		{"declarativeNetRequestWithHostAccess", true},
		{"system.cpu", true},
		{"https://example.com/*", true},
		{"*://*/*", true},
		// Only the scheme prefix is checked for host permissions.
		{"https://", true},
		{"notapermission", false},
		{"Storage", false},
		{"chrome://settings", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.permission, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidPermission(tt.permission))
		})
	}
}

func TestIsValidURL(t *testing.T) {
	assert.True(t, IsValidURL("https://example.com"))
	assert.True(t, IsValidURL("http://localhost:3000/docs"))
	assert.True(t, IsValidURL("mailto:dev@example.com"))
	assert.False(t, IsValidURL("not a url"))
	assert.False(t, IsValidURL("example.com"))
	assert.False(t, IsValidURL(""))
}
