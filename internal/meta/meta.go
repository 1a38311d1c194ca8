package meta

// CLIName is the binary name used in help text, config directories and
// environment variable prefixes.
const CLIName = "dashctl"

// EnvPrefix is prepended to every configuration key read from the environment.
const EnvPrefix = "DASHCTL"
