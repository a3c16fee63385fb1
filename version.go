package snapnote

import _ "embed"

// Version is the released version of snapnote.
//
//go:embed VERSION
var Version string
