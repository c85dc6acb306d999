// Package main hosts the pixbatch CLI entrypoint and command graph.
//
// The Cobra-based command tree loads a batch from files, directories, a YAML
// manifest, or a watched directory, converts it with the shared settings, and
// delivers the results into the configured output directory. It centralizes
// configuration resolution and structured logging setup so subcommands can
// focus on presentation.
//
// Keep this package lean: new behaviour belongs in the internal packages
// first, then surfaces here through a command or flag.
package main
