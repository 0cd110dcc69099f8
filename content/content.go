// Package content embeds the default class and monster catalog.
package content

import "embed"

// FS holds classes/*.yaml and monsters/*.yaml.
//
//go:embed classes/*.yaml monsters/*.yaml
var FS embed.FS
