package report

import (
	"bytes"
	"fmt"
	"image/color"
	"strings"

	"github.com/fogleman/gg"
	"github.com/raidledger/api/internal/model"
	"github.com/raidledger/api/internal/stats"
)

// Layout constants. The canvas width is fixed; height grows with the roster
// and footnote count.
const (
	canvasWidth = 1280

	marginX       = 40.0
	headerHeight  = 90.0
	columnWidth   = 72.0
	nameColWidth  = 220.0
	rowHeight     = 34.0
	legendHeight  = 56.0
	footnoteLine  = 22.0
	footnotesPadY = 16.0
)

var (
	colorBackground = color.RGBA{R: 0x1e, G: 0x1e, B: 0x24, A: 0xff}
	colorHeaderText = color.RGBA{R: 0xf0, G: 0xf0, B: 0xf0, A: 0xff}
	colorGridLine   = color.RGBA{R: 0x3a, G: 0x3a, B: 0x44, A: 0xff}
	colorRowText    = color.RGBA{R: 0xd8, G: 0xd8, B: 0xd8, A: 0xff}

	colorPresent = color.RGBA{R: 0x2e, G: 0x7d, B: 0x32, A: 0xff}
	colorAbsent  = color.RGBA{R: 0xc6, G: 0x28, B: 0x28, A: 0xff}
	colorBenched = color.RGBA{R: 0xf9, G: 0xa8, B: 0x25, A: 0xff}
	colorEmpty   = color.RGBA{R: 0x2a, G: 0x2a, B: 0x32, A: 0xff}
)

func statusColor(status string) color.RGBA {
	switch status {
	case model.StatusPresent:
		return colorPresent
	case model.StatusAbsent:
		return colorAbsent
	case model.StatusBenched:
		return colorBenched
	default:
		return colorEmpty
	}
}

type footnote struct {
	marker int
	text   string
}

// Generator renders attendance report images from a team view.
type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// RenderTeam draws the team view as a PNG: a header, a toon-by-raid grid
// with color-coded cells, a legend, and a footnote list for noted cells.
// Footnote markers are assigned sequentially in row-major order.
func (g *Generator) RenderTeam(view stats.TeamView) ([]byte, error) {
	footnotes := collectFootnotes(view)

	gridTop := headerHeight + rowHeight // column labels occupy one row
	gridHeight := float64(len(view.Rows)) * rowHeight
	footnotesHeight := 0.0
	if len(footnotes) > 0 {
		footnotesHeight = footnotesPadY + float64(len(footnotes))*footnoteLine
	}
	height := int(gridTop + gridHeight + legendHeight + footnotesHeight + marginX)

	dc := gg.NewContext(canvasWidth, height)
	dc.SetColor(colorBackground)
	dc.Clear()

	drawHeader(dc, view)
	drawColumnLabels(dc, view, headerHeight)
	marker := 1
	for i, row := range view.Rows {
		y := gridTop + float64(i)*rowHeight
		marker = drawRow(dc, row, y, marker)
	}
	drawLegend(dc, gridTop+gridHeight)
	drawFootnotes(dc, footnotes, gridTop+gridHeight+legendHeight+footnotesPadY)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode attendance report: %w", err)
	}
	return buf.Bytes(), nil
}

func collectFootnotes(view stats.TeamView) []footnote {
	var notes []footnote
	marker := 1
	for _, row := range view.Rows {
		for _, cell := range row.Cells {
			if !cell.HasNote {
				continue
			}
			text := ""
			if cell.Notes != nil {
				text = strings.TrimSpace(*cell.Notes)
			}
			if cell.BenchedNote != nil {
				if text != "" {
					text += "; "
				}
				text += strings.TrimSpace(*cell.BenchedNote)
			}
			notes = append(notes, footnote{marker: marker, text: fmt.Sprintf("%s: %s", row.Name, text)})
			marker++
		}
	}
	return notes
}

func drawHeader(dc *gg.Context, view stats.TeamView) {
	dc.SetColor(colorHeaderText)
	title := fmt.Sprintf("%s / %s", view.GuildName, view.TeamName)
	dc.DrawString(title, marginX, 36)

	if len(view.Raids) > 0 {
		first := view.Raids[0].ScheduledAt.Format("2006-01-02")
		last := view.Raids[len(view.Raids)-1].ScheduledAt.Format("2006-01-02")
		dc.SetColor(colorRowText)
		dc.DrawString(fmt.Sprintf("Attendance %s to %s (%d raids)", first, last, len(view.Raids)), marginX, 62)
	}
}

func drawColumnLabels(dc *gg.Context, view stats.TeamView, y float64) {
	dc.SetColor(colorRowText)
	for i, raid := range view.Raids {
		x := marginX + nameColWidth + float64(i)*columnWidth
		dc.DrawString(raid.ScheduledAt.Format("01/02"), x+10, y+rowHeight-12)
	}
}

// drawRow renders one toon row and returns the next footnote marker.
func drawRow(dc *gg.Context, row stats.ToonRow, y float64, marker int) int {
	dc.SetColor(colorRowText)
	dc.DrawString(row.Name, marginX, y+rowHeight-12)
	dc.DrawString(fmt.Sprintf("%.0f%%", row.Summary.Percentage), marginX+nameColWidth-50, y+rowHeight-12)

	for i, cell := range row.Cells {
		x := marginX + nameColWidth + float64(i)*columnWidth

		dc.SetColor(statusColor(cell.Status))
		dc.DrawRectangle(x+2, y+2, columnWidth-4, rowHeight-4)
		dc.Fill()

		dc.SetColor(colorGridLine)
		dc.DrawRectangle(x+2, y+2, columnWidth-4, rowHeight-4)
		dc.Stroke()

		if cell.HasNote {
			dc.SetColor(colorHeaderText)
			dc.DrawString(fmt.Sprintf("%d", marker), x+columnWidth-16, y+14)
			marker++
		}
	}
	return marker
}

func drawLegend(dc *gg.Context, y float64) {
	entries := []struct {
		label string
		fill  color.RGBA
	}{
		{"Present", colorPresent},
		{"Absent", colorAbsent},
		{"Benched", colorBenched},
		{"No record", colorEmpty},
	}

	x := marginX
	for _, entry := range entries {
		dc.SetColor(entry.fill)
		dc.DrawRectangle(x, y+18, 18, 18)
		dc.Fill()
		dc.SetColor(colorRowText)
		dc.DrawString(entry.label, x+24, y+32)
		x += 140
	}
}

func drawFootnotes(dc *gg.Context, notes []footnote, y float64) {
	dc.SetColor(colorRowText)
	for i, note := range notes {
		dc.DrawString(fmt.Sprintf("%d. %s", note.marker, note.text), marginX, y+float64(i+1)*footnoteLine)
	}
}
