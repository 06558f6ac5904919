// Oboindex - hierarchy and metadata indexer for OBO ontology releases.
//
// Oboindex decodes OWL/RDF ontology releases, extracts class metadata and
// subsumption hierarchies, and persists transitive closure indexes for
// downstream concept mapping.
package main

import (
	"fmt"
	"os"

	"github.com/obokit/oboindex/cmd"
)

func main() {
	cli := cmd.NewCLI()

	if err := cli.Execute(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
