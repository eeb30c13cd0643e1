// Package command defines the artifact-cli commands.
//
// Commands are built on urfave/cli/v2:
//
//   - token: register, create, update, get and list token records
//   - codec: encode, decode and validate names without touching storage
//   - batch: register ids from a file, rate limited
//   - shell: interactive mode sharing one open store
//   - config, version
//
// The app's Before hook loads configuration and builds a Runtime; the
// token store is opened on first use, so codec and config commands never
// lock the data directory. After closes the store and exports metrics.
package command
