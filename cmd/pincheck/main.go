// Command pincheck answers pin type questions from the shell: whether two
// pin types connect, how a value converts, and what a saved graph loses
// when it is checked against the node catalog.
package main

import "os"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
