// bingo/config/config.go
package config

const (
	AppVersion = "0.4.1"

	// Board Geometry
	BoardSize      = 25 // 5x5 grid
	BoardDim       = 5
	BoardDraw      = 24 // tasks drawn from the pool; the 25th cell is the free space
	FreeSpaceIndex = 12 // center of the grid
	FreeSpaceID    = -1 // reserved task id for the free space

	// Proof Limits
	MinTextProofLen  = 10
	MaxProofLen      = 2000
	MaxProofFileSize = 5 * 1024 * 1024 // 5MiB
	ThumbnailWidth   = 250
	ThumbnailHeight  = 250

	// Player Name Limits
	MinNameLen = 2
	MaxNameLen = 75

	// Rate Limiting Defaults
	DefaultRateLimitEvery  = "10s"
	DefaultRateLimitBurst  = 5
	DefaultRateLimitPrune  = "1h"
	DefaultRateLimitExpire = "24h"

	// Identity Defaults
	// The shared moderator PIN is a placeholder for real authentication,
	// kept for parity with the event signup flow. Override with BINGO_MOD_PIN.
	DefaultModeratorPIN = "1111"
	DefaultSessionTTL   = "12h"
)
