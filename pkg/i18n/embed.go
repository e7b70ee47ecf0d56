package i18n

import "embed"

// EmbeddedLocales holds locales/*.json. Use fs.Sub(EmbeddedLocales,
// "locales") to get the directory itself.
//
//go:embed locales/*.json
var EmbeddedLocales embed.FS
