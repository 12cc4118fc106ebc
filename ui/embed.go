// Package ui holds the HTML templates and static assets embedded into the binaries.
package ui

import "embed"

//go:embed templates static
var Files embed.FS
