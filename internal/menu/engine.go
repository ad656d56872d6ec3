package menu

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/soyeahso/obiefood/internal/domain"
	"github.com/soyeahso/obiefood/internal/logging"
)

// Meal-defaulting hours, evaluated in the engine's reference time zone.
const (
	// lunchCutoverHour decides lunch vs dinner when no meal was supplied.
	lunchCutoverHour = 15
	// lunchLateHour is when "today's lunch" rolls to tomorrow's.
	lunchLateHour = 17
)

// Result is a composed menu response, ready for the response composer.
type Result struct {
	Speech    string
	CardTitle string
	CardBody  string
	// CardImage is the provider icon for the active restriction, if any.
	CardImage string
	// Found is false when retrieval failed or the filter left nothing.
	Found bool
}

// Engine turns a resolved (date, meal, restriction) request into spoken
// and visual text.
type Engine struct {
	fetcher Fetcher
	loc     *time.Location
	now     func() time.Time
	log     *logging.Logger
}

// NewEngine creates a composition engine using the given reference time
// zone for meal defaulting (e.g. "America/New_York").
func NewEngine(fetcher Fetcher, timezone string, log *logging.Logger) (*Engine, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("menu timezone: %w", err)
	}
	return &Engine{
		fetcher: fetcher,
		loc:     loc,
		now:     time.Now,
		log:     log.Sub("menu"),
	}, nil
}

// Compose fetches, filters, and renders the menu response. meal may be
// empty: it is then defaulted from the reference-zone hour. restriction
// none means no filtering.
func (e *Engine) Compose(ctx context.Context, date domain.ResolvedDate, meal string, restriction domain.Restriction) Result {
	hour := e.now().In(e.loc).Hour()

	if meal == "" {
		if hour < lunchCutoverHour {
			meal = domain.MealLunch
		} else {
			meal = domain.MealDinner
		}
	}
	// Today's lunch is over by late afternoon; serve tomorrow's instead.
	if meal == domain.MealLunch && hour > lunchLateHour {
		date = advanceDay(date)
	}

	mealLabel := meal
	if len(restriction.IconCodes()) > 0 {
		mealLabel = restriction.Spoken() + " " + meal
	}
	title := mealLabel + " " + date.DisplayDate

	m, err := e.fetcher.Fetch(ctx, date.RequestDateParam, meal)
	if err != nil {
		e.log.Warn().Err(err).
			Str("date", date.RequestDateParam).
			Str("meal", meal).
			Msg("menu retrieval failed")
		return Result{
			CardTitle: title,
			Speech: fmt.Sprintf("Sorry, I can't find information for %s for %s. Please try again later.",
				mealLabel, date.DisplayDate),
		}
	}

	sections := filterMenu(m, restriction)
	if len(sections) == 0 {
		return Result{
			CardTitle: title,
			Speech:    fmt.Sprintf("I couldn't find information for %s for %s .", mealLabel, date.DisplayDate),
		}
	}

	var speech, card strings.Builder
	for _, sec := range sections {
		var labels, annotated []string
		for _, item := range sec.Items {
			labels = append(labels, item.Label)
			if item.Icon != "" {
				annotated = append(annotated, item.Label+" ("+item.Icon+")")
			} else {
				annotated = append(annotated, item.Label)
			}
		}
		fmt.Fprintf(&speech, "%s: %s. ", sec.Cafe, strings.Join(labels, ", "))
		fmt.Fprintf(&card, "%s: %s.\n", sec.Cafe, strings.Join(annotated, ", "))
	}

	res := Result{
		Speech:    title + " : " + speech.String(),
		CardTitle: title,
		CardBody:  card.String(),
		Found:     true,
	}
	if codes := restriction.IconCodes(); len(codes) > 0 {
		res.CardImage = domain.IconURL(codes[0])
	}
	return res
}

// advanceDay moves the request date one day ahead. The display form is
// kept: the user asked about "today", the data just comes from the next
// service day.
func advanceDay(d domain.ResolvedDate) domain.ResolvedDate {
	t, err := time.Parse("2006/01/02", d.RequestDateParam)
	if err != nil {
		return d
	}
	d.RequestDateParam = t.AddDate(0, 0, 1).Format("2006/01/02")
	return d
}
