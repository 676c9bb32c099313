// Package main provides a utility to sync Discord slash commands.
// It replaces the commands Discord has with the ones the bot defines.
//
// Usage:
//
//	sync-commands list  [--guild <id>]
//	sync-commands sync  [--guild <id>]
//	sync-commands clean [--guild <id>]
package main

func main() {
	Execute()
}
