// chatmon answers questions about the Instanza app from a canned
// question/response dataset.
package main

import (
	"os"

	"github.com/corey/chatmon/cmd/chatmon/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
