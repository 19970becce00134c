// Package cli provides the interactive mindvault command-line client.
//
// It wires configuration, local storage, the app lock and the journal
// services behind a small REPL. On start the user is asked for the PIN if
// one is set; the journal then stays unlocked until 'lock', an idle timeout
// or exit. Private entries are encrypted with the key of the unlocked
// session and public ones are stored as written.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App and runREPL for details.
package cli
