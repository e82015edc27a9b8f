// Package file provides filesystem adapters: a JSON-backed workflow store
// and loaders for YAML/JSON workflow and rule definitions.
package file
