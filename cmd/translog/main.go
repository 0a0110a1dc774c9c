// translog - workflow engine log analyzer
//
// translog correlates transition start and end lines across log files,
// reports transitions that never finished or ran too long, and counts
// activity per time interval.
package main

import (
	"os"

	"github.com/ccollicutt/translog/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
