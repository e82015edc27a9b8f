// Package mcp exposes workflow validation and rule trial tools over the Model Context Protocol.
package mcp
