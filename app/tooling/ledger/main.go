// This program runs the ledger from the command line against a chain held in
// one of the storage kinds.
package main

import "github.com/ardanlabs/ledger/app/tooling/ledger/cmd"

func main() {
	cmd.Execute()
}
