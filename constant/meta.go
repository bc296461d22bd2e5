// Package constant defines immutable application-level identifiers and configuration defaults.
package constant

const (
	// GTPlayer is the canonical application identifier used for filesystem paths and CLI branding.
	GTPlayer = "gtplayer"

	// Version is the current application semantic version string.
	Version = "0.1.0"

	// UserAgent is the HTTP User-Agent string used for requests to the recommendation API.
	UserAgent = "GeniusT Music Player"

	// PreviewSeconds is the fixed length of preview clips served by the API.
	PreviewSeconds = 30
)

// Loopback endpoints used when ephemeral port allocation fails or when no
// startup argument was handed to the service process.
const (
	LoopbackHost       = "127.0.0.1"
	DefaultProxyPort   = 4999
	DefaultServicePort = 5000
)

// ServiceArgEnv carries the comma-joined "proxyHost,proxyPort,servicePort"
// string to a spawned service process when no positional argument is given.
const ServiceArgEnv = "GTPLAYER_SERVICE_ARGUMENT"
