// Package config loads restkit client configuration.
//
// Values come from an optional YAML file, an optional .env file and
// RESTKIT_-prefixed environment variables, in increasing precedence:
//
//	var cfg config.Config
//	if err := config.Load("restkit", &cfg, config.WithConfigFile("restkit.yml")); err != nil {
//	    return err
//	}
//	cfg.ApplyDefaults()
//
// Nested keys map to underscores, so RESTKIT_LOGGING_LEVEL sets logging.level
// and RESTKIT_BASE_URL sets base_url.
package config
