// Package config handles loading and validating Homebase configuration.
//
// This package manages:
//   - Loading configuration from YAML files
//   - Loading an optional .env file into the environment
//   - Overriding with HOMEBASE_* environment variables
//   - Validation of required fields per storage backend
//
// Sensitive values (MQTT password, InfluxDB token) should be set via
// environment variables rather than committed to the YAML file.
//
// Usage:
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Storage.Backend)
package config
