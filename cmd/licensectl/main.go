// licensectl is the operator CLI for license-server.
package main

import "github.com/information-sharing-networks/license-server/internal/cli"

func main() {
	cli.Execute()
}
