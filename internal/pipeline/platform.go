package pipeline

// Platform is a docker build platform target.
type Platform string

// Platforms connector images are built for.
const (
	PlatformLinuxAMD64 Platform = "linux/amd64"
	PlatformLinuxARM64 Platform = "linux/arm64"
)

// DefaultPlatforms returns the fixed platform set used when a run does not
// narrow the targets.
func DefaultPlatforms() []Platform {
	return []Platform{PlatformLinuxAMD64, PlatformLinuxARM64}
}
