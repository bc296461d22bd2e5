// Package key defines the canonical set of configuration identifiers used for centralized settings management.
package key

// Playback - these keys govern the audio backend and default playback behavior.
const (
	PlayerBackend     = "player.backend"
	PlayerVolume      = "player.volume"
	PlayerPlayMode    = "player.play_mode"
	PlayerPosInterval = "player.pos_interval_ms"
)

// Prefetch - these keys tune the service's next-track preloading.
const (
	PrefetchEnabled   = "prefetch.enabled"
	PrefetchThreshold = "prefetch.threshold_seconds"
)

// Protocol - these keys configure the loopback control channel between proxy and service.
const (
	ProtocolProxyPort   = "protocol.proxy_port"
	ProtocolServicePort = "protocol.service_port"
)

// Recommendation API - these keys manage communication with the remote recommendation service.
const (
	APIRoot       = "api.root"
	APIRetryDelay = "api.retry_delay"
	APIRetries    = "api.retries"
	APITimeout    = "api.timeout"
)

// Downloads - these keys configure the track download and cache subsystem.
const (
	DownloadsDir          = "downloads.dir"
	DownloadsEvictOnClose = "downloads.evict_on_close"
)

// Iconography - these keys manage the visual rendering of UI symbols.
const (
	IconsVariant = "icons.variant"
)

// Logging Infrastructure - these keys manage the application's internal diagnostics.
const (
	LogsWrite = "logs.write"
	LogsLevel = "logs.level"
	LogsJson  = "logs.json"
)

// CLI Execution Environment - these settings govern non-TUI application behavior.
const (
	CliColored      = "cli.colored"
	CliVersionCheck = "cli.version_check"
)
