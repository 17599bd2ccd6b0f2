// Package misc keeps build time information.
package misc

// set with -ldflags "-X retainformat/misc.version=... -X retainformat/misc.gitHash=..."
var (
	version = "dev"
	gitHash = "unknown"
)

const appName = "retainformat"

func GetAppName() string {
	return appName
}

func GetVersion() string {
	return version
}

func GetGitHash() string {
	return gitHash
}
