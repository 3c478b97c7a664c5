// Package config holds the hiera configuration model and the pipeline that loads it.
//
// Store is the read-only key/value view the lookup core consumes: the ordered backend
// list, the hierarchy templates and per-backend settings sections. Hiera is the YAML
// document implementing it.
//
// Loading follows four extension points:
//   - DataFetcher: retrieves raw config data (see config/fetcher/file)
//   - Parser: deserializes raw data, with colon path navigation (see config/parser/yaml)
//   - Defaulter: applies default values before validation
//   - Validator: validates config after parsing
//
// # Example
//
//	provider := config.Provider(&config.Hiera{}, "")
//	fetcher, err := filefetcher.NewFetcher("/etc/hiera.yaml")()
//	...
//	cfg, err := provider(yamlparser.NewParser(), fetcher)
//
// A hiera section embedded in a larger document is addressed by path, e.g. "services:hiera".
package config
