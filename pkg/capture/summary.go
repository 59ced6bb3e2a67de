package capture

import (
	"fmt"
	"io"

	"github.com/menta2k/camera-analyzer/pkg/types"
)

// PrintSummary writes the people count, each person's rectangle and the
// object labels of result to w.
func PrintSummary(w io.Writer, result *types.AnalysisResult) {
	fmt.Fprintln(w, "\n=== RESULTS ===")
	fmt.Fprintf(w, "People detected: %d\n", len(result.People))
	for i, p := range result.People {
		fmt.Fprintf(w, "  Person %d: position %s\n", i+1, p.Rectangle)
	}

	if len(result.Objects) == 0 {
		fmt.Fprintln(w, "\nNo objects detected")
		return
	}
	fmt.Fprintln(w, "\nObjects detected:")
	fmt.Fprintln(w, result.JoinedLabels())
}
