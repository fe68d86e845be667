// Package config handles loading and validating jobtrack configuration.
//
// This package manages:
//   - Loading configuration from YAML files
//   - Overriding with environment variables (JOBTRACK_*)
//   - Validation of required fields
//   - Default value handling
//
// Security Considerations:
//   - The JWT signing secret should be supplied via JOBTRACK_JWT_SECRET
//   - The secret and token lifetime are read once at startup and are
//     immutable afterwards; there is no runtime rotation
//   - The config file should have restricted permissions (0600)
//
// Usage:
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	key, _ := cfg.Security.JWT.SigningKey()
package config
