// Package output renders command results for artifact-cli.
//
// Results can be printed as an aligned table (the default), JSON or YAML.
// Table headers come from the `table` struct tag, then the `json` tag.
// Values implementing fmt.Stringer (token flags) are printed with String.
//
// ProgressBar reports the progress of batch commands on stderr.
package output
