package config

// EnvPrefix is passed to envconfig; individual fields carry fully-qualified keys.
const EnvPrefix = "FASALBAJAR"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "FASALBAJAR_DB_DSN"
	EnvDBHost = "FASALBAJAR_DB_HOST"
	EnvDBUser = "FASALBAJAR_DB_USER"
	EnvDBName = "FASALBAJAR_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
