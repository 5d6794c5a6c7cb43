package constants

// Application Information
const (
	AppName    = "Open Payments API"
	AppVersion = "1.0.0"
)

// Environment Types
const (
	EnvDevelopment = "development"
	EnvStaging     = "staging"
	EnvProduction  = "production"
)

// Default Application Settings
const (
	DefaultPort        = "3000"
	DefaultEnvironment = EnvDevelopment
)

// Cache Key Prefixes
const (
	CacheKeyPrefix = "openpayments:"
	CacheKeyCount  = CacheKeyPrefix + "count:"
)
