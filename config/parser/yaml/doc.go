// Package yaml provides the YAML parser used for hiera configuration and data files.
//
// It is built on github.com/goccy/go-yaml. Parse implements config.Parser and converts
// colon-separated paths (e.g. "services:hiera") to YAML path syntax ("$.services.hiera")
// so a hiera section can live inside a larger document. DecodeMap decodes data files
// whose root is a mapping of lookup keys to answers.
package yaml
