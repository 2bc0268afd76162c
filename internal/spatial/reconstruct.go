// Package spatial rebuilds reading-order text from positioned fragments.
//
// PDF content streams and OCR word boxes deliver text in draw order, which
// rarely matches reading order. Reconstruct groups fragments into visual
// rows, sorts each row left to right and re-inserts the whitespace the
// layout implies, so that downstream line parsing sees columns as columns.
package spatial

import (
	"sort"
	"strings"

	"github.com/rubilakse/docparse/internal/entity"
)

const (
	minRowTolerance  = 5.0
	rowToleranceFrac = 0.4
	paragraphFactor  = 2.5
	columnGapFactor  = 3.0
	wordGapMin       = 5.0
)

// Reconstruct converts positioned fragments into plain text with one line
// per visual row. Column gaps wider than three line heights become tabs,
// vertical gaps taller than two and a half line heights become paragraph
// breaks. Fragments without geometry fall back to their input order.
func Reconstruct(fragments []entity.Fragment) string {
	frags := make([]entity.Fragment, 0, len(fragments))
	for _, f := range fragments {
		if strings.TrimSpace(f.Text) != "" {
			frags = append(frags, f)
		}
	}
	if len(frags) == 0 {
		return ""
	}

	meanH := meanHeight(frags)
	tolerance := rowToleranceFrac * meanH
	if tolerance < minRowTolerance {
		tolerance = minRowTolerance
	}

	rows := groupRows(frags, tolerance)

	var b strings.Builder
	prevY := rows[0].y
	for i, row := range rows {
		if i > 0 {
			if row.y-prevY > paragraphFactor*meanH {
				b.WriteString("\n\n")
			} else {
				b.WriteByte('\n')
			}
		}
		writeRow(&b, row.frags, meanH)
		prevY = row.y
	}
	return b.String()
}

type row struct {
	y     float64
	frags []entity.Fragment
}

// groupRows buckets fragments whose vertical centers sit within tolerance
// of each other, then orders rows top to bottom.
func groupRows(frags []entity.Fragment, tolerance float64) []row {
	sorted := make([]entity.Fragment, len(frags))
	copy(sorted, frags)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Y < sorted[j].Y
	})

	var rows []row
	for _, f := range sorted {
		if len(rows) > 0 && f.Y-rows[len(rows)-1].y <= tolerance {
			last := &rows[len(rows)-1]
			last.frags = append(last.frags, f)
			continue
		}
		rows = append(rows, row{y: f.Y, frags: []entity.Fragment{f}})
	}

	for i := range rows {
		sort.SliceStable(rows[i].frags, func(a, b int) bool {
			return rows[i].frags[a].X < rows[i].frags[b].X
		})
	}
	return rows
}

// writeRow joins one row's fragments, widening large horizontal gaps into
// tabs so table columns survive the flattening.
func writeRow(b *strings.Builder, frags []entity.Fragment, meanH float64) {
	for i, f := range frags {
		if i > 0 {
			prev := frags[i-1]
			gap := f.X - (prev.X + prev.W)
			switch {
			case gap > columnGapFactor*meanH:
				b.WriteByte('\t')
			case gap > wordGapMin:
				b.WriteByte(' ')
			}
		}
		b.WriteString(strings.TrimSpace(f.Text))
	}
}

func meanHeight(frags []entity.Fragment) float64 {
	var sum float64
	var n int
	for _, f := range frags {
		if f.H > 0 {
			sum += f.H
			n++
		}
	}
	if n == 0 {
		return 10
	}
	return sum / float64(n)
}
