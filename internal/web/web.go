// Package web embeds the single dashboard page. The page is plain
// HTML/JS that drives the /api endpoints; there is no build step.
package web

import _ "embed"

//go:embed index.html
var Index []byte
