// Package config loads and validates engine configuration from YAML
// files. A Watcher can reload the configuration when the file changes
// on disk.
package config
