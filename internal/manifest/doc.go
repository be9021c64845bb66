// Package manifest generates and validates Chrome Extension Manifest V3
// documents.
//
// Generation is validate-or-fail: Generate returns an error carrying every
// violated rule. Validation is validate-and-collect: the Validator reports
// every problem it finds as a ValidationResult and never fails on malformed
// input. Field paths use the manifest's own keys, with array indices in
// brackets ("content_scripts[0].matches").
package manifest
