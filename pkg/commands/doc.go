// Package commands implements the archwatch operations behind the CLI.
//
// Every command takes an *Env holding the resolved paths, configuration and
// watchlist store, plus its own options struct, and returns a result the CLI
// renders. Nothing here prints.
package commands
