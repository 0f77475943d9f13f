package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/rotisserie/eris"
)

const defaultChartWidth = 60

// RenderText writes a fixed-width horizontal bar chart to w, one row per
// bracket in the order given (callers pass SumByBracket output, already
// sorted by income lower bound).
func RenderText(w io.Writer, bars []Bar, width int) error {
	if width <= 0 {
		width = defaultChartWidth
	}

	maxCount := 0
	for _, b := range bars {
		if b.Count > maxCount {
			maxCount = b.Count
		}
	}

	for _, b := range bars {
		n := 0
		if maxCount > 0 {
			n = b.Count * width / maxCount
		}
		if _, err := fmt.Fprintf(w, "%-10s %8d  %s\n", b.Label, b.Count, strings.Repeat("█", n)); err != nil {
			return eris.Wrap(err, "report: write chart row")
		}
	}
	return nil
}

// RenderSVG writes the distribution as a standalone SVG bar chart.
func RenderSVG(w io.Writer, bars []Bar, title string) error {
	const (
		barWidth   = 36
		barGap     = 10
		chartH     = 320
		marginL    = 50
		marginB    = 70
		marginT    = 40
		labelShift = 12
	)

	maxCount := 0
	for _, b := range bars {
		if b.Count > maxCount {
			maxCount = b.Count
		}
	}
	if maxCount == 0 {
		maxCount = 1
	}

	totalW := marginL + len(bars)*(barWidth+barGap) + barGap
	totalH := marginT + chartH + marginB

	var sb strings.Builder
	fmt.Fprintf(&sb, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d">`+"\n", totalW, totalH)
	fmt.Fprintf(&sb, `<text x="%d" y="24" font-family="sans-serif" font-size="16">%s</text>`+"\n", marginL, title)

	for i, b := range bars {
		h := b.Count * chartH / maxCount
		x := marginL + barGap + i*(barWidth+barGap)
		y := marginT + chartH - h

		fmt.Fprintf(&sb, `<rect x="%d" y="%d" width="%d" height="%d" fill="#2b7a4b"/>`+"\n", x, y, barWidth, h)
		fmt.Fprintf(&sb, `<text x="%d" y="%d" font-family="sans-serif" font-size="10" text-anchor="middle">%d</text>`+"\n",
			x+barWidth/2, y-4, b.Count)
		fmt.Fprintf(&sb, `<text x="%d" y="%d" font-family="sans-serif" font-size="10" text-anchor="end" transform="rotate(-45 %d %d)">%s</text>`+"\n",
			x+barWidth/2, marginT+chartH+labelShift, x+barWidth/2, marginT+chartH+labelShift, b.Label)
	}

	sb.WriteString("</svg>\n")

	if _, err := io.WriteString(w, sb.String()); err != nil {
		return eris.Wrap(err, "report: write svg")
	}
	return nil
}
