package pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/smallbiznis/ratecard/pkg/money"
)

const dateLayout = "2006-01-02 15:04"

var ErrEmptySubject = errors.New("pdf: subject is required")

type PDFProvider struct{}

func New() Provider {
	return &PDFProvider{}
}

// RenderRateCards lays out the cards in the order given. Callers pass the
// ledger history, which is already newest first.
func (p *PDFProvider) RenderRateCards(ctx context.Context, sheet RateCardSheet) (io.Reader, error) {
	if strings.TrimSpace(sheet.SubjectID) == "" {
		return nil, ErrEmptySubject
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	title := "Rate card"
	if name := strings.TrimSpace(sheet.DisplayName); name != "" {
		title = "Rate card: " + name
	}
	m.AddRow(12,
		text.NewCol(12, title, props.Text{
			Size:  20,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
	)

	generated := ""
	if !sheet.GeneratedAt.IsZero() {
		generated = sheet.GeneratedAt.UTC().Format(dateLayout) + " UTC"
	}
	m.AddRow(16,
		col.New(6).Add(
			text.New("Subject: "+sheet.SubjectID, props.Text{Top: 0, Size: 9}),
			text.New("Currency: "+sheet.Currency, props.Text{Top: 5, Size: 9}),
		),
		col.New(6).Add(
			text.New("Generated: "+generated, props.Text{Top: 0, Size: 9, Align: align.Right}),
			text.New(fmt.Sprintf("Entries: %d", len(sheet.Cards)), props.Text{Top: 5, Size: 9, Align: align.Right}),
		),
	)

	m.AddRow(10,
		text.NewCol(4, "Date", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(3, "Platform", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(3, "Campaign", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(2, "Rate", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)
	m.AddRow(2, line.NewCol(12))

	if len(sheet.Cards) == 0 {
		m.AddRow(10, text.NewCol(12, "No rate cards generated yet.", props.Text{Size: 9, Style: fontstyle.Italic}))
	}
	for _, card := range sheet.Cards {
		m.AddRow(8,
			text.NewCol(4, card.CreatedAt.UTC().Format(dateLayout), props.Text{Size: 9}),
			text.NewCol(3, card.Platform, props.Text{Size: 9}),
			text.NewCol(3, card.CampaignType, props.Text{Size: 9}),
			text.NewCol(2, money.Format2(card.BaseRate)+" "+card.Currency, props.Text{Size: 9, Align: align.Right}),
		)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(doc.GetBytes()), nil
}
