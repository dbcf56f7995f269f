package version

// Build information set by ldflags
var (
	Version = "dev"     // -X github.com/scramjet-deb/scramjet/internal/version.Version={{.Version}}
	Commit  = "unknown" // -X github.com/scramjet-deb/scramjet/internal/version.Commit={{.Commit}}
	Date    = "unknown" // -X github.com/scramjet-deb/scramjet/internal/version.Date={{.Date}}
)
