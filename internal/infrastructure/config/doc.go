// Package config loads and validates wxbridge configuration.
//
// Configuration is read from a YAML file, merged over hardcoded defaults,
// and finally overridden by WXBRIDGE_* environment variables. Credentials
// should always come from the environment rather than the file.
//
// # Usage
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Broker.Host)
package config
