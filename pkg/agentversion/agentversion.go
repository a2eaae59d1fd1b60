package agentversion

import "fmt"

// Set at build time with -ldflags "-X github.com/bizflycloud/bizfly-s3/pkg/agentversion.version=...".
var (
	version   string
	commit    string
	buildTime string
)

// Version returns the build information of the binary.
func Version() string {
	v := version
	if v == "" {
		v = "dev"
	}
	return fmt.Sprintf("version: %s, commit: %s, build: %s", v, orUnknown(commit), orUnknown(buildTime))
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
