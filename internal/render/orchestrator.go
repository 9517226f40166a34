package render

import (
	"context"
	"fmt"
	"html/template"
	"time"

	"golang.org/x/sync/errgroup"

	appLog "schedboard/internal/log"
	"schedboard/internal/mode"
	"schedboard/internal/model"
)

// Output is one rendered board. Items are the normalized items behind it,
// left column first.
type Output struct {
	HTML  string
	Items []model.Item
}

// Orchestrator renders a resolved plan. Column headers are shown in dual
// mode only.
type Orchestrator struct {
	Plan        mode.Plan
	LeftHeader  string
	RightHeader string

	// Now defaults to time.Now. It is read once per Render so both columns
	// highlight against the same instant.
	Now func() time.Time
}

type columnResult struct {
	html  template.HTML
	items []model.Item
}

// Render fetches, aggregates, and renders. In dual mode both columns are
// fetched concurrently and either failure fails the whole render.
func (o *Orchestrator) Render(ctx context.Context) (Output, error) {
	now := time.Now()
	if o.Now != nil {
		now = o.Now()
	}

	if o.Plan.Single {
		res, err := renderColumn(ctx, o.Plan.Left, now)
		if err != nil {
			return Output{}, err
		}
		html, err := Render(TemplateSingle, singleView{Body: res.html})
		if err != nil {
			return Output{}, err
		}
		return Output{HTML: html, Items: res.items}, nil
	}

	var left, right columnResult
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		left, err = renderColumn(gctx, o.Plan.Left, now)
		return err
	})
	g.Go(func() error {
		var err error
		right, err = renderColumn(gctx, o.Plan.Right, now)
		return err
	})
	if err := g.Wait(); err != nil {
		return Output{}, err
	}

	html, err := Render(TemplateDual, dualView{
		LeftHeader:  o.LeftHeader,
		Left:        left.html,
		RightHeader: o.RightHeader,
		Right:       right.html,
	})
	if err != nil {
		return Output{}, err
	}

	items := make([]model.Item, 0, len(left.items)+len(right.items))
	items = append(items, left.items...)
	items = append(items, right.items...)
	return Output{HTML: html, Items: items}, nil
}

func renderColumn(ctx context.Context, col mode.Column, now time.Time) (columnResult, error) {
	items, err := col.Source.FetchSchedule(ctx, col.Lookahead)
	if err != nil {
		return columnResult{}, err
	}

	set, err := col.Aggregator.Aggregate(items, now)
	if err != nil {
		return columnResult{}, fmt.Errorf("%s: %w", col.Mode, err)
	}

	html, err := renderSet(set)
	if err != nil {
		return columnResult{}, err
	}

	appLog.Debug("column rendered",
		"mode", string(col.Mode),
		"source", col.Source.Name(),
		"items", len(items),
		"cards", len(set.Cards),
	)
	return columnResult{html: html, items: items}, nil
}
