// Package web carries the embedded frontend assets served by the HTTP
// layer.
package web

import "embed"

// Templates holds the layout, page and partial HTML templates.
//
//go:embed templates/**/*.html
var Templates embed.FS

// Static holds the stylesheets and scripts served under /static/.
//
//go:embed static/**/*
var Static embed.FS
