// Package config manages user-level settings stored at ~/.specforge/config.yaml.
// It provides functions to load, read, and write configuration keys such as
// the GitHub token, the default template source, and the probe and fetch
// timeouts. Every key can also be supplied through a SPECFORGE_-prefixed
// environment variable.
package config
