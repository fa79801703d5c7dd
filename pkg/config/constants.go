package config

const (
	EnvPrefix = "LUMENSHOP"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "LUMENSHOP_DB_DSN"
	EnvDBHost = "LUMENSHOP_DB_HOST"
	EnvDBUser = "LUMENSHOP_DB_USER"
	EnvDBName = "LUMENSHOP_DB_NAME"

	EnvVNPayTmnCode    = "LUMENSHOP_VNPAY_TMN_CODE"
	EnvVNPayHashSecret = "LUMENSHOP_VNPAY_HASH_SECRET"
	EnvVNPayReturnURL  = "LUMENSHOP_VNPAY_RETURN_URL"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
