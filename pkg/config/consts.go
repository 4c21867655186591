package config

// EnvPrefix namespaces every environment variable this service reads.
const EnvPrefix = "VENDORFLOW"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)
