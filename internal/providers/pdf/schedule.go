package pdf

import (
	"bytes"
	"context"
	"io"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

func (p *PDFProvider) GenerateBookingSchedule(ctx context.Context, data ScheduleData) (io.Reader, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Sida {current} av {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(20,
		text.NewCol(8, "Bokningar: "+data.ResourceName, props.Text{
			Size:  18,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
		text.NewCol(4, data.OrgName, props.Text{
			Size:  10,
			Align: align.Right,
			Top:   3,
		}),
	)

	m.AddRow(12,
		col.New(12).Add(
			text.New("Period: "+data.From.Format(dateLayout)+" till "+data.To.Format(dateLayout), props.Text{Size: 9}),
			text.New("Utskriven: "+data.GeneratedAt.Format(dateLayout+" "+timeLayout), props.Text{Size: 9, Top: 4}),
		),
	)

	m.AddRow(10,
		text.NewCol(3, "Datum", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(2, "Från", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(2, "Till", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(5, "Bokad av", props.Text{Style: fontstyle.Bold, Size: 9}),
	)

	if len(data.Rows) == 0 {
		m.AddRow(10, text.NewCol(12, "Inga bokningar under perioden.", props.Text{Size: 9}))
	}
	for _, row := range data.Rows {
		m.AddRow(8,
			text.NewCol(3, row.Start.Format(dateLayout), props.Text{Size: 9}),
			text.NewCol(2, row.Start.Format(timeLayout), props.Text{Size: 9}),
			text.NewCol(2, row.End.Format(timeLayout), props.Text{Size: 9}),
			text.NewCol(5, row.UserName, props.Text{Size: 9}),
		)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}

	return bytes.NewReader(doc.GetBytes()), nil
}
