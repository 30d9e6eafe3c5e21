// Package config handles loading and validating System Builder Studio configuration.
//
// This package manages:
//   - Loading configuration from YAML files
//   - Overriding with environment variables (STUDIO_*)
//   - Validation of required fields
//   - Default value handling
//
// Optional integrations (database, MQTT, InfluxDB) each carry an Enabled
// flag; their fields are only validated when enabled.
//
// Usage:
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Studio.Name)
package config
