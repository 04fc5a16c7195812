// Package embedded provides access to the tool catalogs compiled into appcaller.
package embedded

import "embed"

// ToolsDir is the directory of ToolsFS holding the tool descriptions.
const ToolsDir = "tools"

// ToolsFS contains the embedded tool description YAML files.
//
//go:embed tools/*.yaml
var ToolsFS embed.FS
