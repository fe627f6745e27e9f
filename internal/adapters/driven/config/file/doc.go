// Package file provides the TOML-backed configuration adapter.
// Settings live in ~/.kbsearch/config.toml and are flattened into
// dot-notation keys (for example "embedding.provider").
package file
