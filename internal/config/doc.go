// Package config manages user-level settings stored at ~/.btools/config.yaml.
// Values can be overridden with BTOOLS_-prefixed environment variables. Keys
// cover the custom templates directory, the default template, the default
// author and log verbosity.
package config
