package theme

import "embed"

// EmbeddedThemes holds the themes shipped with the binary under defaults/.
//
//go:embed defaults/*.theme
var EmbeddedThemes embed.FS
