// Package cmd implements the hocon subcommands: eval, get, query, and init.
//
// Every command loads its sources through the flags of [Engine], which map
// one to one onto the loader options of the lang package.
package cmd

var (
	// CacheIdentifier is the kong variable identifier containing the path to
	// the runtime cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable identifier containing the path to
	// the user's configuration file.
	ConfigIdentifier = "config"
)

// ConfigObject is the member of the configuration file whose fields supply
// default flag values.
const ConfigObject = "config"
