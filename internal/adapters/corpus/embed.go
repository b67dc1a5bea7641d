// Package corpus embeds the bundled help-assistant datasets.
// This is a standalone package with no imports beyond embed so any layer can use it.
package corpus

import "embed"

// Default is the path of the dataset used when none is configured.
const Default = "datasets/chatmon.txt"

//go:embed datasets/*.txt
var FS embed.FS
