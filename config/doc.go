// Package config loads the gamenet client configuration from YAML.
//
// Values may reference the environment with ${VAR}; a reference to an unset
// variable is an error rather than an empty string. A .env file can seed
// the environment before loading:
//
//	_ = config.LoadDotEnv()
//	cfg, err := config.Load("gamenet.yaml")
//
// Every field has a default, so an empty file (or no file) is valid as long
// as api.base_url is provided.
package config
