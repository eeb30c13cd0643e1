// Package config defines the artifact-cli configuration.
//
//   - spec.go: Config and its sections
//   - default.go: default values
//   - verify.go: validation
//   - sanitize.go: secret masking for display and logs
//   - loader.go: layered loading through confloader
//
// The configuration file lives at ~/.artifact/cli.yaml by default.
// Environment variables use the ARTIFACT_ prefix with a double
// underscore between nested keys:
//
//	ARTIFACT_STORAGE__ENGINE=pebble
//	ARTIFACT_NAMING__ALPHABET=legacy
package config
