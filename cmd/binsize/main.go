// Command binsize analyzes a linked executable and reports what makes up
// its size.
package main

import "github.com/han-qiu/binsize/cmd/binsize/cmd"

func main() {
	cmd.Execute()
}
