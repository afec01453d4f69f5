// Command pattidsv parses delimiter-separated files with a declarative
// pipeline config and prints or loads the typed rows.
package main

import "github.com/sischcode/patti-csv/internal/cli"

func main() {
	cli.Execute()
}
