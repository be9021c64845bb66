package manifest

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"unicode/utf8"
)

// checkFunc validates the value found at path.
type checkFunc func(c *checker, path string, v any)

// field is one entry of an object rule.
type field struct {
	key      string
	required bool
	check    checkFunc
}

// manifestFields is the top-level Manifest V3 rule, in reporting order.
var manifestFields = []field{
	{"manifest_version", true, literalInt(Version)},
	{"name", true, str(minLen(1, MsgNameRequired), maxLen(MaxNameLength, MsgNameTooLong))},
	{"version", true, str(CheckVersion)},
	{"description", false, str(maxLen(MaxDescriptionLength, MsgDescTooLong))},

	{"action", false, object(actionFields)},
	{"background", false, object(backgroundFields)},
	{"content_scripts", false, arrayOf(object(contentScriptFields), 0, "")},
	{"icons", false, iconMap},
	{"permissions", false, arrayOf(str(pattern(IsValidPermission, MsgPermission)), 0, "")},
	{"host_permissions", false, arrayOf(matchPatternString, 0, "")},
	{"web_accessible_resources", false, arrayOf(object(webAccessibleResourceFields), 0, "")},

	{"author", false, str()},
	{"homepage_url", false, str(pattern(IsValidURL, MsgInvalidURL))},
	{"short_name", false, str(maxLen(MaxShortNameLength, MsgShortNameLength))},
	{"minimum_chrome_version", false, str()},

	{"options_page", false, str()},
	{"options_ui", false, object([]field{
		{"page", true, str()},
		{"open_in_tab", false, boolean},
	})},
	{"content_security_policy", false, object([]field{
		{"extension_pages", false, str()},
		{"sandbox", false, str()},
	})},
	{"commands", false, record(object([]field{
		{"suggested_key", false, object([]field{
			{"default", false, str()},
			{"mac", false, str()},
			{"windows", false, str()},
			{"chromeos", false, str()},
			{"linux", false, str()},
		})},
		{"description", false, str()},
	}))},
	{"omnibox", false, object([]field{
		{"keyword", true, str()},
	})},
	{"side_panel", false, object([]field{
		{"default_path", true, str()},
	})},
}

var actionFields = []field{
	{"default_popup", false, str()},
	{"default_icon", false, stringOrIconMap},
	{"default_title", false, str()},
}

var backgroundFields = []field{
	{"service_worker", true, str()},
	{"type", false, enum("module", "classic")},
}

var contentScriptFields = []field{
	{"matches", true, arrayOf(matchPatternString, 1, MsgMatchesRequired)},
	{"js", false, arrayOf(str(), 0, "")},
	{"css", false, arrayOf(str(), 0, "")},
	{"run_at", false, enum("document_start", "document_end", "document_idle")},
	{"all_frames", false, boolean},
	{"match_about_blank", false, boolean},
}

var webAccessibleResourceFields = []field{
	{"resources", true, arrayOf(str(), 0, "")},
	{"matches", true, arrayOf(matchPatternString, 0, "")},
	{"use_dynamic_url", false, boolean},
}

// checker accumulates issues while walking a decoded document.
type checker struct {
	issues []ValidationIssue
}

func (c *checker) fail(path, msg string) {
	c.issues = append(c.issues, ValidationIssue{
		Field:    path,
		Message:  msg,
		Severity: SeverityError,
	})
}

// checkManifest runs the Manifest V3 rule over a decoded document.
func checkManifest(doc any) []ValidationIssue {
	c := &checker{}
	object(manifestFields)(c, "", doc)
	return c.issues
}

// object checks that v is an object and applies each field rule in order.
// Unknown keys are ignored.
func object(fields []field) checkFunc {
	return func(c *checker, path string, v any) {
		m, ok := v.(map[string]any)
		if !ok {
			c.fail(path, expected("object", v))
			return
		}
		for _, f := range fields {
			fp := joinPath(path, f.key)
			val, present := m[f.key]
			if !present {
				if f.required {
					c.fail(fp, "Required")
				}
				continue
			}
			f.check(c, fp, val)
		}
	}
}

// record checks every value of an object with an arbitrary key set.
func record(check checkFunc) checkFunc {
	return func(c *checker, path string, v any) {
		m, ok := v.(map[string]any)
		if !ok {
			c.fail(path, expected("object", v))
			return
		}
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			check(c, joinPath(path, k), m[k])
		}
	}
}

// arrayOf checks that v is an array of at least min elements, each
// satisfying elem.
func arrayOf(elem checkFunc, min int, minMsg string) checkFunc {
	return func(c *checker, path string, v any) {
		items, ok := v.([]any)
		if !ok {
			c.fail(path, expected("array", v))
			return
		}
		if len(items) < min {
			c.fail(path, minMsg)
		}
		for i, item := range items {
			elem(c, indexPath(path, i), item)
		}
	}
}

// stringRule returns an error message, or "" when s is acceptable.
type stringRule func(s string) string

// str checks that v is a string and applies each rule, reporting every
// violated one.
func str(rules ...stringRule) checkFunc {
	return func(c *checker, path string, v any) {
		s, ok := v.(string)
		if !ok {
			c.fail(path, expected("string", v))
			return
		}
		for _, rule := range rules {
			if msg := rule(s); msg != "" {
				c.fail(path, msg)
			}
		}
	}
}

func minLen(n int, msg string) stringRule {
	return func(s string) string {
		if utf8.RuneCountInString(s) < n {
			return msg
		}
		return ""
	}
}

func maxLen(n int, msg string) stringRule {
	return func(s string) string {
		if utf8.RuneCountInString(s) > n {
			return msg
		}
		return ""
	}
}

func pattern(ok func(string) bool, msg string) stringRule {
	return func(s string) string {
		if !ok(s) {
			return msg
		}
		return ""
	}
}

var matchPatternString = str(pattern(IsValidMatchPattern, MsgMatchPattern))

func boolean(c *checker, path string, v any) {
	if _, ok := v.(bool); !ok {
		c.fail(path, expected("boolean", v))
	}
}

func enum(values ...string) checkFunc {
	return func(c *checker, path string, v any) {
		s, ok := v.(string)
		if !ok {
			c.fail(path, expected("string", v))
			return
		}
		for _, allowed := range values {
			if s == allowed {
				return
			}
		}
		c.fail(path, fmt.Sprintf("Invalid enum value. Expected %s, received '%s'", quoteAll(values), s))
	}
}

func literalInt(want int) checkFunc {
	return func(c *checker, path string, v any) {
		if n, ok := toFloat(v); ok && n == float64(want) {
			return
		}
		c.fail(path, fmt.Sprintf("Invalid literal value, expected %d", want))
	}
}

// iconMap checks an object of size to path. Every value must be a string and
// every key an accepted icon size.
func iconMap(c *checker, path string, v any) {
	m, ok := v.(map[string]any)
	if !ok {
		c.fail(path, expected("object", v))
		return
	}
	badSize := false
	for _, size := range sortedSizes(m) {
		if _, ok := m[size].(string); !ok {
			c.fail(joinPath(path, size), expected("string", m[size]))
		}
		if !IsValidIconSize(size) {
			badSize = true
		}
	}
	if badSize {
		c.fail(path, MsgIconSizes)
	}
}

func stringOrIconMap(c *checker, path string, v any) {
	switch v.(type) {
	case string:
	case map[string]any:
		iconMap(c, path, v)
	default:
		c.fail(path, "Invalid input: expected string or icon map, received "+typeName(v))
	}
}

// validateConfig checks generator input and returns every violated rule.
func validateConfig(cfg Config) []ValidationIssue {
	c := &checker{}
	if cfg.Name == "" {
		c.fail("name", MsgNameRequired)
	}
	if msg := CheckVersion(cfg.Version); msg != "" {
		c.fail("version", msg)
	}
	if cfg.HomepageURL != "" && !IsValidURL(cfg.HomepageURL) {
		c.fail("homepage_url", MsgInvalidURL)
	}
	return c.issues
}

func expected(want string, got any) string {
	return fmt.Sprintf("Expected %s, received %s", want, typeName(got))
}

func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	}
	if _, ok := toFloat(v); ok {
		return "number"
	}
	return fmt.Sprintf("%T", v)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

func quoteAll(values []string) string {
	out := ""
	for i, v := range values {
		if i > 0 {
			out += " | "
		}
		out += "'" + v + "'"
	}
	return out
}

func joinPath(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

func indexPath(path string, i int) string {
	return path + "[" + strconv.Itoa(i) + "]"
}
