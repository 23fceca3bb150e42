// Package data holds the card and theme catalog shipped with the binaries.
package data

import _ "embed"

//go:embed catalog.yaml
var Catalog []byte
