package meta

var (
	// Version is the semantic version of klimozawr.
	// This value is injected at build time via ldflags.
	Version = "HEAD"

	// Commit is the git commit hash.
	// This value is injected at build time via ldflags.
	Commit = "UNKNOWN"
)

// UserAgent is the name of klimozawr for logs and HTTP headers.
func UserAgent() string {
	return "klimozawr/" + Version
}
