package version

// Version du service, définie lors du build:
// go build -ldflags "-X greeting/internal/version.Version=v1.2.0"
var Version = "dev"

// Informations de build complémentaires
var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)
