// Package autoload pushes defaults-document values into the process
// environment as a side effect of being imported:
//
//	import _ "github.com/wwd1015/cloudconduit/pkg/conduit/autoload"
//
// Set CLOUDCONDUIT_DISABLE_AUTO_CONFIG to any value to opt out. Failures
// are silent; programs that need feedback should call
// conduit.AutoConfigure explicitly.
package autoload

import (
	"os"

	"github.com/wwd1015/cloudconduit/pkg/conduit"
)

// EnvDisable opts the process out of import-time configuration.
const EnvDisable = "CLOUDCONDUIT_DISABLE_AUTO_CONFIG"

func init() {
	if _, disabled := os.LookupEnv(EnvDisable); disabled {
		return
	}
	conduit.AutoConfigure()
}
