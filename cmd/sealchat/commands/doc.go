// Package commands implements the sealchat CLI.
//
// Each subcommand maps onto one high-level service operation: identity
// creation and publication, safety-code display, conversation creation and
// membership, and sending/reading encrypted messages.
package commands
