// Package report renders a month of attendance as a PDF timesheet.
package report

import (
	"fmt"
	"io"
	"strings"
	"time"
	"unicode"

	"github.com/jung-kurt/gofpdf"
	"github.com/username/worktrack/internal/attendance"
	"github.com/username/worktrack/pkg/dateutil"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	cellWidth  = 26.0
	cellHeight = 18.0
)

var weekdayHeaders = []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// Month is the data of one rendered month
type Month struct {
	Year     int
	Month    time.Month
	Records  []attendance.Record
	Stats    attendance.Stats
	Settings attendance.Settings
}

// WriteMonthPDF renders m as a one-page A4 timesheet
func WriteMonthPDF(w io.Writer, m Month) error {
	byDate := make(map[string]attendance.Record, len(m.Records))
	for _, r := range m.Records {
		byDate[r.Date] = r
	}
	shift := m.Settings.ShiftCode
	if shift == "" {
		shift = attendance.DefaultShiftCode
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("Timesheet %04d-%02d", m.Year, int(m.Month)), false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, fmt.Sprintf("Timesheet %s %d", m.Month, m.Year))
	pdf.Ln(10)
	if m.Settings.UserName != "" {
		pdf.SetFont("Helvetica", "", 12)
		pdf.Cell(0, 8, Fold(m.Settings.UserName))
		pdf.Ln(10)
	}

	pdf.SetFont("Helvetica", "B", 10)
	for _, h := range weekdayHeaders {
		pdf.CellFormat(cellWidth, 8, h, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	drawGrid(pdf, dateutil.MonthGrid(m.Year, m.Month), byDate, shift)
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "", 11)
	lines := []string{
		fmt.Sprintf("Counted days: %s / %s", m.Stats.TotalCalculatedDays, m.Stats.TargetWorkingDays),
		fmt.Sprintf("Completed: %s", m.Stats.CompletedWorkDays),
		fmt.Sprintf("Missing: %s", m.Stats.MissingDays),
		fmt.Sprintf("Progress: %s%%", m.Stats.ProgressPercent.Round(1)),
		fmt.Sprintf("Annual leave: %s used, %s remaining of %s", m.Stats.UsedLeave, m.Stats.RemainingLeave, m.Stats.TotalLeave),
	}
	for _, line := range lines {
		pdf.Cell(0, 7, line)
		pdf.Ln(7)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to write pdf: %w", err)
	}
	return nil
}

// drawGrid draws the week rows and leaves the cursor below the last one.
// drawDay ends on its small label cells, so rows advance by cellHeight explicitly.
func drawGrid(pdf *gofpdf.Fpdf, grid []time.Time, byDate map[string]attendance.Record, shift string) {
	for i, d := range grid {
		x, y := pdf.GetXY()
		if d.IsZero() {
			pdf.CellFormat(cellWidth, cellHeight, "", "1", 0, "", false, 0, "")
		} else {
			drawDay(pdf, d, byDate[dateutil.DayID(d)], shift, x, y)
		}
		if i%7 == 6 {
			pdf.Ln(cellHeight)
		}
	}
	if len(grid)%7 != 0 {
		pdf.Ln(cellHeight)
	}
}

func drawDay(pdf *gofpdf.Fpdf, d time.Time, r attendance.Record, shift string, x, y float64) {
	if r.Type == attendance.DayTypePublicHoliday || r.Type == attendance.DayTypeSpecialHoliday {
		pdf.SetFillColor(255, 228, 225)
	} else if r.Type == attendance.DayTypeAnnualLeave || r.Type == attendance.DayTypeHalfAnnualLeave {
		pdf.SetFillColor(225, 240, 255)
	} else {
		pdf.SetFillColor(255, 255, 255)
	}
	pdf.CellFormat(cellWidth, cellHeight, "", "1", 0, "", true, 0, "")
	after := pdf.GetX()

	pdf.SetXY(x+1, y+1)
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(cellWidth-2, 4, fmt.Sprintf("%d", d.Day()), "", 0, "L", false, 0, "")

	if r.Type.Valid() {
		pdf.SetXY(x+1, y+6)
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(cellWidth-2, 5, dayLabel(r, shift), "", 0, "C", false, 0, "")
	}
	if r.Note != "" {
		pdf.SetXY(x+1, y+12)
		pdf.SetFont("Helvetica", "", 6)
		pdf.CellFormat(cellWidth-2, 4, truncate(Fold(r.Note), 18), "", 0, "C", false, 0, "")
	}

	pdf.SetXY(after, y)
}

// dayLabel is the cell caption; manual days are starred
func dayLabel(r attendance.Record, shift string) string {
	label := Fold(r.Type.Label(shift))
	if r.IsManual {
		label += "*"
	}
	return label
}

// Fold strips diacritics so the text fits the PDF core fonts ("Quốc khánh" -> "Quoc khanh")
func Fold(s string) string {
	s = strings.NewReplacer("đ", "d", "Đ", "D").Replace(s)
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "."
}
