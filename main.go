// package main is the entry point of guac-vex, a bridge between GUAC
// vulnerability certifications and OpenVEX documents.
package main

import "github.com/ortelius/guac-vex/cmd"

func main() {
	cmd.Execute()
}
