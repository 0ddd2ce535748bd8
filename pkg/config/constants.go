package config

// EnvPrefix is passed to envconfig; individual fields carry explicit names.
const EnvPrefix = "LOUNGELAB"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "LOUNGELAB_DB_DSN"
	EnvDBHost = "LOUNGELAB_DB_HOST"
	EnvDBUser = "LOUNGELAB_DB_USER"
	EnvDBName = "LOUNGELAB_DB_NAME"
)

var requiredDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
