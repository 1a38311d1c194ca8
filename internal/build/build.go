package build

// Info carries the version metadata stamped into the binary at link time.
type Info struct {
	Version string
	Commit  string
	Date    string
}

type Key struct{}

// InfoKey locates the *Info stored in a command context.
var InfoKey = Key{}
