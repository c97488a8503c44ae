// Package config loads the vrorigins configuration file.
//
// The file is YAML, decoded strictly so that misspelled keys fail loudly.
// Relative paths are resolved against the directory holding the file.
// Command-line flags override individual fields after loading.
package config
