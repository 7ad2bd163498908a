package config

// Build metadata, overridden by SetBuildFlags from the binary entry point
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// SetBuildFlags records the version information of the running binary
func SetBuildFlags(version, commit, date string) {
	Version = version
	Commit = commit
	Date = date
}
