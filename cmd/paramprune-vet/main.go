// The paramprune-vet command runs the unused parameter analyzer as a
// standalone vet tool. Use -fix to apply the suggested removals, or run it
// through "go vet -vettool=$(which paramprune-vet)".
package main

import (
	"golang.org/x/tools/go/analysis/singlechecker"

	"github.com/aiseeq/paramprune/pkg/rules/unusedparam"
)

func main() {
	singlechecker.Main(unusedparam.Analyzer)
}
