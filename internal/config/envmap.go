package config

import "strings"

// Backend service identifiers. The set is small and fixed; unknown
// services still resolve through the synthesized fallback name.
const (
	ServiceSnowflake  = "snowflake"
	ServiceDatabricks = "databricks"
	ServiceS3         = "s3"
)

// envMappings is the fixed (service, parameter) → environment variable
// table. It is lookup data only; nothing mutates it after init.
var envMappings = map[string]map[string]string{
	ServiceSnowflake: {
		"account":                "SNOWFLAKE_ACCOUNT",
		"warehouse":              "SNOWFLAKE_WAREHOUSE",
		"database":               "SNOWFLAKE_DATABASE",
		"schema":                 "SNOWFLAKE_SCHEMA",
		"user":                   "SNOWFLAKE_USER",
		"password":               "SNOWFLAKE_PASSWORD",
		"private_key_path":       "SNOWFLAKE_PRIVATE_KEY_PATH",
		"private_key_passphrase": "SNOWFLAKE_PRIVATE_KEY_PASSPHRASE",
		"authenticator":          "SNOWFLAKE_AUTHENTICATOR",
	},
	ServiceDatabricks: {
		"server_hostname": "DATABRICKS_SERVER_HOSTNAME",
		"http_path":       "DATABRICKS_HTTP_PATH",
		"access_token":    "DATABRICKS_ACCESS_TOKEN",
		"catalog":         "DATABRICKS_CATALOG",
		"schema":          "DATABRICKS_SCHEMA",
	},
	ServiceS3: {
		"aws_access_key_id":     "AWS_ACCESS_KEY_ID",
		"aws_secret_access_key": "AWS_SECRET_ACCESS_KEY",
		"aws_session_token":     "AWS_SESSION_TOKEN",
		"region_name":           "AWS_DEFAULT_REGION",
	},
}

// EnvKey returns the environment variable name for a (service, parameter)
// pair. Pairs outside the fixed table synthesize SERVICE_PARAMETER
// upper-cased, so every pair has a deterministic name.
func EnvKey(service, key string) string {
	if params, ok := envMappings[service]; ok {
		if name, ok := params[key]; ok {
			return name
		}
	}
	return strings.ToUpper(service + "_" + key)
}

// EnvMappings returns a copy of the mapping table for display.
func EnvMappings() map[string]map[string]string {
	out := make(map[string]map[string]string, len(envMappings))
	for service, params := range envMappings {
		inner := make(map[string]string, len(params))
		for k, v := range params {
			inner[k] = v
		}
		out[service] = inner
	}
	return out
}
