package main

import "github.com/frahmantamala/donation-ledger/cmd"

func main() {
	cmd.Execute()
}
