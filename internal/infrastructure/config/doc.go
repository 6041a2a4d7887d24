// Package config handles loading and validating SmartHouse Core configuration.
//
// This package manages:
//   - Loading configuration from YAML files
//   - Overriding with environment variables (SMARTHOUSE_*)
//   - Validation of required fields and the house definition
//   - Default value handling
//
// Secrets (MQTT password) should be supplied through the environment rather
// than the config file.
//
// Usage:
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(len(cfg.House.Devices))
package config
