package capture

import (
	"bytes"
	"fmt"
	"image/color"
	"strings"
	"testing"

	"github.com/menta2k/camera-analyzer/pkg/types"
)

func sameColor(a color.Color, b color.NRGBA) bool {
	return color.NRGBAModel.Convert(a).(color.NRGBA) == b
}

func TestPrintSummaryCounts(t *testing.T) {
	for n := 0; n <= 3; n++ {
		for m := 0; m <= 3; m++ {
			t.Run(fmt.Sprintf("people=%d/objects=%d", n, m), func(t *testing.T) {
				result := &types.AnalysisResult{}
				for i := 0; i < n; i++ {
					result.People = append(result.People, types.Person{
						Rectangle: types.Rectangle{X: i, Y: i * 2, W: 10, H: 20},
					})
				}
				labels := make([]string, 0, m)
				for i := 0; i < m; i++ {
					label := fmt.Sprintf("objeto%d", i)
					labels = append(labels, label)
					result.Objects = append(result.Objects, types.Object{Object: label})
				}

				var buf bytes.Buffer
				PrintSummary(&buf, result)
				out := buf.String()

				if !strings.Contains(out, fmt.Sprintf("People detected: %d\n", n)) {
					t.Errorf("Expected people count %d in:\n%s", n, out)
				}
				if got := strings.Count(out, "  Person "); got != n {
					t.Errorf("Expected %d person lines, got %d", n, got)
				}
				if m == 0 {
					if !strings.Contains(out, "No objects detected") {
						t.Errorf("Expected the no-objects message in:\n%s", out)
					}
					return
				}
				if strings.Contains(out, "No objects detected") {
					t.Error("Unexpected no-objects message")
				}
				lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
				last := lines[len(lines)-1]
				if last != strings.Join(labels, ", ") {
					t.Errorf("Expected labels %q, got %q", strings.Join(labels, ", "), last)
				}
				if got := len(strings.Split(last, ", ")); got != m {
					t.Errorf("Expected %d labels, got %d", m, got)
				}
			})
		}
	}
}

func TestPrintSummaryRectangle(t *testing.T) {
	var buf bytes.Buffer
	PrintSummary(&buf, &types.AnalysisResult{
		People: []types.Person{{Rectangle: types.Rectangle{X: 10, Y: 20, W: 30, H: 40}}},
	})
	if !strings.Contains(buf.String(), "Person 1: position {x: 10, y: 20, w: 30, h: 40}") {
		t.Errorf("Unexpected summary:\n%s", buf.String())
	}
}
