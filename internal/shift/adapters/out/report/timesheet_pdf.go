// Package report рисует табель смен в PDF.
package report

import (
	"context"
	"fmt"
	"time"

	out "shifttrack/internal/shift/application/ports/out"
	"shifttrack/internal/shift/domain"

	"github.com/johnfercher/maroto/pkg/color"
	"github.com/johnfercher/maroto/pkg/consts"
	"github.com/johnfercher/maroto/pkg/pdf"
	"github.com/johnfercher/maroto/pkg/props"
)

var (
	headers   = []string{"Date", "Staff", "Clock in", "Clock out", "Duration"}
	gridSizes = []uint{2, 3, 2, 2, 3}
	zebra     = color.Color{Red: 240, Green: 240, Blue: 240}
)

type pdfRenderer struct {
	title string
}

// NewPDFRenderer: title печатается в шапке каждой страницы
func NewPDFRenderer(title string) out.TimesheetRenderer {
	if title == "" {
		title = "Timesheet"
	}
	return &pdfRenderer{title: title}
}

func (r *pdfRenderer) Render(ctx context.Context, ts domain.Timesheet) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m := pdf.NewMaroto(consts.Portrait, consts.A4)
	m.SetPageMargins(20, 10, 20)

	m.RegisterHeader(func() {
		m.Row(10, func() {
			m.Col(12, func() {
				m.Text(r.title, props.Text{
					Top:   3,
					Style: consts.Bold,
					Align: consts.Center,
					Size:  16,
				})
			})
		})
		m.Row(8, func() {
			m.Col(12, func() {
				m.Text(periodLabel(ts), props.Text{
					Top:   2,
					Style: consts.Normal,
					Align: consts.Center,
					Size:  11,
				})
			})
		})
	})

	for _, g := range ts.Groups {
		if g.Title != "" {
			m.Row(10, func() {
				m.Col(12, func() {
					m.Text(g.Title, props.Text{
						Top:   5,
						Style: consts.Bold,
						Size:  12,
						Align: consts.Left,
					})
				})
			})
		}

		rows := make([][]string, 0, len(g.Shifts))
		for _, s := range g.Shifts {
			rows = append(rows, shiftRow(s, ts.GeneratedAt))
		}
		if len(rows) == 0 {
			rows = append(rows, []string{"-", "no shifts", "-", "-", "-"})
		}

		m.TableList(headers, rows, props.TableList{
			HeaderProp: props.TableListContent{
				Size:      10,
				GridSizes: gridSizes,
			},
			ContentProp: props.TableListContent{
				Size:      9,
				GridSizes: gridSizes,
			},
			Align:                consts.Center,
			AlternatedBackground: &zebra,
			HeaderContentSpace:   1,
			Line:                 false,
		})

		if ts.GroupBy != domain.GroupByNone {
			subtotal := g.Total(ts.GeneratedAt)
			m.Row(10, func() {
				m.Col(12, func() {
					m.Text("Subtotal: "+FormatDuration(subtotal), props.Text{
						Style: consts.Bold,
						Align: consts.Right,
						Size:  10,
					})
				})
			})
			m.Row(5, func() {})
		}
	}

	m.Row(20, func() {
		m.Col(12, func() {
			m.Text("Total: "+FormatDuration(ts.Total()), props.Text{
				Top:   10,
				Style: consts.Bold,
				Align: consts.Right,
				Size:  12,
			})
		})
	})
	m.Row(8, func() {
		m.Col(12, func() {
			m.Text("Generated "+ts.GeneratedAt.UTC().Format("2006-01-02 15:04 UTC"), props.Text{
				Size:  8,
				Align: consts.Right,
				Color: color.Color{Red: 120, Green: 120, Blue: 120},
			})
		})
	})

	buf, err := m.Output()
	if err != nil {
		return nil, fmt.Errorf("output pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func shiftRow(s *domain.Shift, now time.Time) []string {
	clockOut := "open"
	if s.ClockOutTime != nil {
		clockOut = s.ClockOutTime.UTC().Format("15:04")
	}
	staff := s.Username
	if staff == "" {
		staff = s.UserID
	}
	return []string{
		s.ClockInTime.UTC().Format("2006-01-02"),
		staff,
		s.ClockInTime.UTC().Format("15:04"),
		clockOut,
		FormatDuration(s.Duration(now)),
	}
}

func periodLabel(ts domain.Timesheet) string {
	from, to := "beginning", "now"
	if !ts.From.IsZero() {
		from = ts.From.UTC().Format("2006-01-02")
	}
	if !ts.To.IsZero() {
		to = ts.To.UTC().Format("2006-01-02")
	}
	return fmt.Sprintf("%s - %s", from, to)
}

// FormatDuration: "8h 05m"
func FormatDuration(d time.Duration) string {
	d = d.Round(time.Minute)
	h := d / time.Hour
	m := (d % time.Hour) / time.Minute
	return fmt.Sprintf("%dh %02dm", h, m)
}
