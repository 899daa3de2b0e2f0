// Package cli provides command-line interface setup and configuration
// for forvodl. It handles flag parsing, command creation, and merging
// the config file with explicit arguments into immutable Settings.
package cli
