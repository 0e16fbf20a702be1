// Package assets embeds the system prompt fragments and the practice and
// topic modules injected by the prompt assembler.
package assets

import "embed"

//go:embed *.txt modulos/*.txt
var FS embed.FS
