package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// Version is the only manifest_version this package produces and accepts.
const Version = 3

// Manifest is a Chrome Extension Manifest V3 document.
type Manifest struct {
	ManifestVersion int    `json:"manifest_version"`
	Name            string `json:"name"`
	Version         string `json:"version"`
	Description     string `json:"description"`

	Action                 *Action                 `json:"action,omitempty"`
	Background             *Background             `json:"background,omitempty"`
	ContentScripts         []ContentScript         `json:"content_scripts,omitempty"`
	Icons                  IconMap                 `json:"icons,omitempty"`
	Permissions            []string                `json:"permissions,omitempty"`
	HostPermissions        []string                `json:"host_permissions,omitempty"`
	WebAccessibleResources []WebAccessibleResource `json:"web_accessible_resources,omitempty"`

	Author               string `json:"author,omitempty"`
	HomepageURL          string `json:"homepage_url,omitempty"`
	ShortName            string `json:"short_name,omitempty"`
	MinimumChromeVersion string `json:"minimum_chrome_version,omitempty"`

	OptionsPage           string                 `json:"options_page,omitempty"`
	OptionsUI             *OptionsUI             `json:"options_ui,omitempty"`
	ContentSecurityPolicy *ContentSecurityPolicy `json:"content_security_policy,omitempty"`
	Commands              map[string]Command     `json:"commands,omitempty"`
	Omnibox               *Omnibox               `json:"omnibox,omitempty"`
	SidePanel             *SidePanel             `json:"side_panel,omitempty"`
}

// Action configures the toolbar button.
type Action struct {
	DefaultPopup string `json:"default_popup,omitempty"`
	DefaultIcon  *Icon  `json:"default_icon,omitempty"`
	DefaultTitle string `json:"default_title,omitempty"`
}

// Background declares the extension service worker.
type Background struct {
	ServiceWorker string `json:"service_worker"`
	Type          string `json:"type,omitempty"`
}

// ContentScript is a script/style bundle injected into matching pages.
type ContentScript struct {
	Matches         []string `json:"matches"`
	JS              []string `json:"js,omitempty"`
	CSS             []string `json:"css,omitempty"`
	RunAt           string   `json:"run_at,omitempty"`
	AllFrames       *bool    `json:"all_frames,omitempty"`
	MatchAboutBlank *bool    `json:"match_about_blank,omitempty"`
}

// WebAccessibleResource exposes packaged files to matching origins.
type WebAccessibleResource struct {
	Resources     []string `json:"resources"`
	Matches       []string `json:"matches"`
	UseDynamicURL *bool    `json:"use_dynamic_url,omitempty"`
}

// OptionsUI embeds the options page in the extensions management page.
type OptionsUI struct {
	Page      string `json:"page"`
	OpenInTab *bool  `json:"open_in_tab,omitempty"`
}

// ContentSecurityPolicy holds the CSP strings for extension pages and sandboxes.
type ContentSecurityPolicy struct {
	ExtensionPages string `json:"extension_pages,omitempty"`
	Sandbox        string `json:"sandbox,omitempty"`
}

// Command is a keyboard shortcut declaration.
type Command struct {
	SuggestedKey *SuggestedKey `json:"suggested_key,omitempty"`
	Description  string        `json:"description,omitempty"`
}

// SuggestedKey holds per-platform key bindings.
type SuggestedKey struct {
	Default  string `json:"default,omitempty"`
	Mac      string `json:"mac,omitempty"`
	Windows  string `json:"windows,omitempty"`
	ChromeOS string `json:"chromeos,omitempty"`
	Linux    string `json:"linux,omitempty"`
}

// Omnibox registers an address-bar keyword.
type Omnibox struct {
	Keyword string `json:"keyword"`
}

// SidePanel declares the default side panel page.
type SidePanel struct {
	DefaultPath string `json:"default_path"`
}

// IconMap maps an icon size ("16", "48", ...) to a file path. It marshals
// with keys in ascending numeric order.
type IconMap map[string]string

// MarshalJSON writes the map with numerically ordered keys.
func (m IconMap) MarshalJSON() ([]byte, error) {
	if m == nil {
		return []byte("null"), nil
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, size := range m.Sizes() {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(size)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(m[size])
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Sizes returns the map keys, numeric sizes first in ascending order,
// followed by any non-numeric keys in lexical order.
func (m IconMap) Sizes() []string {
	return sortedSizes(m)
}

// Icon is either a single path or a per-size map.
type Icon struct {
	Path  string
	Sizes IconMap
}

// MarshalJSON writes the icon as a string or as an object.
func (i Icon) MarshalJSON() ([]byte, error) {
	if i.Sizes != nil {
		return i.Sizes.MarshalJSON()
	}
	return json.Marshal(i.Path)
}

// UnmarshalJSON accepts a string or an object of size to path.
func (i *Icon) UnmarshalJSON(data []byte) error {
	var path string
	if err := json.Unmarshal(data, &path); err == nil {
		*i = Icon{Path: path}
		return nil
	}
	var sizes map[string]string
	if err := json.Unmarshal(data, &sizes); err != nil {
		return fmt.Errorf("default_icon must be a string or an object of size to path: %w", err)
	}
	*i = Icon{Sizes: sizes}
	return nil
}

// Encode renders v as indented JSON with a trailing newline. HTML
// characters are not escaped, so "<all_urls>" is written literally.
func Encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DefaultIcons returns the icon map used by generated manifests.
func DefaultIcons() IconMap {
	return IconMap{
		"16":  "icons/icon16.png",
		"48":  "icons/icon48.png",
		"128": "icons/icon128.png",
	}
}

func sortedSizes[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(a, b int) bool {
		na, errA := strconv.Atoi(keys[a])
		nb, errB := strconv.Atoi(keys[b])
		switch {
		case errA == nil && errB == nil:
			return na < nb
		case errA == nil:
			return true
		case errB == nil:
			return false
		default:
			return keys[a] < keys[b]
		}
	})
	return keys
}
