package verbs

import (
	"fmt"

	"github.com/spf13/cobra"
)

const (
	List     = VerbValue("list")
	View     = VerbValue("view")
	Export   = VerbValue("export")
	License  = VerbValue("license")
	Activate = VerbValue("activate")
	Check    = VerbValue("check")
	Show     = VerbValue("show")
)

// Empty type to represent the _type_ Verb. Genesis is to support a key in a Context
type VerbKey struct{}

// Verb is a global instance of the VerbKey type
var Verb = VerbKey{}

// Will represent a specific Verb (list, view, export, etc)
type VerbValue string

func (v VerbValue) String() string {
	return string(v)
}

// ExactDatasetArg validates that a command received exactly one dataset
// reference.
func ExactDatasetArg(_ *cobra.Command, args []string) error {
	switch len(args) {
	case 1:
		return nil
	case 0:
		return fmt.Errorf("a dataset name or file path is required (see 'list datasets')")
	default:
		return fmt.Errorf("unexpected argument %q: only one dataset may be given", args[1])
	}
}
