package datelabel_test

import (
	"fmt"

	"opsconsole/internal/datelabel"
)

// ExampleParse shows the three supported date codes and a rejected label.
func ExampleParse() {
	labels := []string{"Gala 05-071225", "Dinner 150625", "Roadshow 0625", "Kickoff 1325"}

	for _, label := range labels {
		interval, ok := datelabel.Parse(label)
		if !ok {
			fmt.Printf("%s: none\n", label)
			continue
		}
		fmt.Printf("%s: %s\n", label, interval)
	}

	// Output:
	// Gala 05-071225: 2025-12-05..2025-12-07
	// Dinner 150625: 2025-06-15..2025-06-15
	// Roadshow 0625: 2025-06-01..2025-06-30
	// Kickoff 1325: none
}
