package utils

// Build metadata, set with -ldflags at release time.
var (
	Version   = "dev"
	Sha       = "HEAD"
	Buildtime = "dev"
)

// UserAgent is sent with every request to the instance.
func UserAgent() string {
	return "replybot/" + Version
}
