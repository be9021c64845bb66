package manifest

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// Canonical rule messages.
const (
	MsgVersionFormat   = "Version must be 1-4 dot-separated integers"
	MsgVersionRange    = "Each version number must be between 0 and 65535"
	MsgMatchPattern    = "Invalid match pattern format"
	MsgIconSizes       = "Icon sizes must be 16, 48, 128, or 256"
	MsgPermission      = "Invalid permission or host permission"
	MsgNameRequired    = "Name is required"
	MsgNameTooLong     = "Name must be 45 characters or less"
	MsgDescTooLong     = "Description must be 132 characters or less"
	MsgShortNameLength = "Short name must be 12 characters or less"
	MsgInvalidURL      = "Invalid url"
	MsgMatchesRequired = "At least one match pattern required"
)

// Length limits enforced on top-level string fields.
const (
	MaxNameLength        = 45
	MaxDescriptionLength = 132
	MaxShortNameLength   = 12
	maxVersionSegment    = 65535
)

var (
	versionPattern      = regexp.MustCompile(`^(\d+)(\.\d+){0,3}$`)
	filePattern         = regexp.MustCompile(`^file:///.*$`)
	matchPattern        = regexp.MustCompile(`^(\*|https?|file|ftp)://(\*|(?:\*\.)?[^/*]+|\[[\da-fA-F:]+\])(/.*)?$`)
	hostPermissionShape = regexp.MustCompile(`^(\*|https?|file|ftp)://`)
)

// ValidIconSizes lists the icon map keys accepted by Chrome.
var ValidIconSizes = []string{"16", "48", "128", "256"}

// CheckVersion returns "" when v is 1-4 dot-separated integers each within
// [0, 65535], otherwise the message of the first rule it violates.
func CheckVersion(v string) string {
	if !versionPattern.MatchString(v) {
		return MsgVersionFormat
	}
	for _, part := range strings.Split(v, ".") {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 || n > maxVersionSegment {
			return MsgVersionRange
		}
	}
	return ""
}

// IsValidVersion reports whether v satisfies the version rule.
func IsValidVersion(v string) bool {
	return CheckVersion(v) == ""
}

// IsValidMatchPattern reports whether p is a Chrome match pattern:
// "<all_urls>", a file:/// pattern, or scheme://host[/path].
func IsValidMatchPattern(p string) bool {
	if p == "<all_urls>" {
		return true
	}
	if filePattern.MatchString(p) {
		return true
	}
	return matchPattern.MatchString(p)
}

// IsValidIconSize reports whether size is an accepted icon map key.
func IsValidIconSize(size string) bool {
	for _, s := range ValidIconSizes {
		if s == size {
			return true
		}
	}
	return false
}

// IsValidPermission reports whether p is a known Chrome permission or looks
// like a host permission. Host permissions only need a "scheme://" prefix
// here; the host and path are not checked.
func IsValidPermission(p string) bool {
	if _, ok := knownPermissions[p]; ok {
		return true
	}
	return hostPermissionShape.MatchString(p)
}

// IsValidURL reports whether s is an absolute URL.
func IsValidURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return u.Scheme != "" && (u.Host != "" || u.Opaque != "")
}
