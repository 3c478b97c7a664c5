package config_test

import (
	"fmt"

	"github.com/0xalexb/hjarta-hiera/config"
	yamlparser "github.com/0xalexb/hjarta-hiera/config/parser/yaml"
)

func ExampleProvider() {
	provider := config.Provider(&config.Hiera{}, "")

	// For file-based configuration, use filefetcher.NewFetcher(filepath)() instead.
	fetcher := staticFetcher(`
":backends":
  - yaml
  - json
":hierarchy":
  - "%{environment}"
  - common
`)

	cfg, err := provider(yamlparser.NewParser(), fetcher)
	if err != nil {
		fmt.Printf("Error: %v\n", err)

		return
	}

	levels, _ := cfg.Hierarchy()

	fmt.Printf("backends: %v, hierarchy: %v\n", cfg.Backends(), levels)
	// Output: backends: [yaml json], hierarchy: [%{environment} common]
}
