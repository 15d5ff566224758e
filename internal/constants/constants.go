package constants

import "time"

const (
	DatabaseTimeout = 5 * time.Second
	// bounds outbound data store calls only; model calls run without a local timeout
	StoreAPITimeout = 10 * time.Second
)

const (
	DBMaxOpenConns    = 100
	DBMaxIdleConns    = 10
	DBConnMaxLifetime = 1 * time.Hour
	DBMaxIdleTime     = 10 * time.Minute
)

const (
	ShutdownTimeout = 5 * time.Second
)

const (
	MaxAPIKeys   = 8
	APIKeyPrefix = "csk-"
)

const (
	DefaultModel       = "qwen-3-235b-a22b-instruct-2507"
	DefaultTemperature = 0.6
	DefaultTopP        = 0.95
	DefaultMaxTokens   = 4096
)

const (
	RedTeamTemperature  = 0.8
	RedTeamMaxTokens    = 2048
	BlueTeamTemperature = 0.4
	BlueTeamMaxTokens   = 3072
)

const (
	ActualScamProbability = 0.8
	BasePoints            = 10
	DefaultConfidence     = 50
	DefaultProjectName    = "Unknown Project"
)

const (
	RecentBattlesDefault = 20
	RecentBattlesMax     = 100
)
