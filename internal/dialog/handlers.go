package dialog

import (
	"context"
	"strings"

	"github.com/soyeahso/obiefood/internal/domain"
	"github.com/soyeahso/obiefood/internal/slots"
)

// handleOneshotMenu answers a fully-specified query like "vegan dinner
// on Saturday". If the session's preference fetch is still in flight the
// turn parks itself as the fetch continuation and blocks until it runs;
// the abandonment timer bounds the wait.
func (e *Engine) handleOneshotMenu(ctx context.Context, sess *Session, intent *domain.Intent) domain.TurnResponse {
	out := make(chan domain.TurnResponse, 1)
	run := func() { out <- e.oneshotMenu(ctx, sess, intent) }
	if !sess.Coord.Defer(run) {
		run()
	}
	return <-out
}

func (e *Engine) oneshotMenu(ctx context.Context, sess *Session, intent *domain.Intent) domain.TurnResponse {
	date, dstate := slots.Date(intent.Slots, e.now())
	if dstate == slots.StateInvalid {
		reprompt := dateExamplePart + whichDatePart
		return ask(sess, "I'm sorry, I didn't understand that date. "+reprompt, reprompt)
	}

	meal, mstate := slots.Meal(intent.Slots)
	if mstate == slots.StateInvalid {
		return ask(sess, "Sorry, I only know the menu for lunch and dinner.", "Please try again.")
	}
	if mstate == slots.StateMissing {
		meal = ""
	}

	restriction, rstate := slots.Restriction(intent.Slots)
	if rstate == slots.StateInvalid {
		return ask(sess, "Sorry, I only know the dietary restrictions for vegan, vegetarian and gluten-free.",
			"Please try again. ")
	}
	have := rstate == slots.StateValid
	if !have {
		// Fall back to the saved preference, if one arrived in time.
		if pref := sess.preference(); pref != nil && pref.Restriction != "" {
			if r, ok := slots.CanonicalRestriction(pref.Restriction); ok {
				restriction = r
				have = true
			}
		}
	}
	if !have {
		restriction = domain.RestrictionNone
	}

	// Nothing usable at all: neither meal, restriction, nor an explicit
	// date. Guide the user instead of guessing.
	if !have && mstate == slots.StateMissing && dstate == slots.StateMissing {
		return ask(sess, repeatPrompt, otherMealPrompt)
	}

	return e.finishMenuRequest(ctx, sess, date, meal, restriction)
}

// finishMenuRequest is the shared tail of the one-shot and dialog paths:
// fetch, filter, compose, speak, and remember for repeat.
func (e *Engine) finishMenuRequest(ctx context.Context, sess *Session, date domain.ResolvedDate, meal string, restriction domain.Restriction) domain.TurnResponse {
	res := e.menus.Compose(ctx, date, meal, restriction)
	body := res.CardBody
	if body == "" {
		body = res.Speech
	}
	resp := askWithCard(sess, res.Speech, whatElsePrompt, res.CardTitle, body)
	resp.Card.ImageURL = res.CardImage
	return resp
}

// handleDialogMenu routes a multi-turn step by which slot carried a
// value. A slot present with an empty value tells us nothing about
// which slot the user meant, so it falls to the no-slot branch.
func (e *Engine) handleDialogMenu(ctx context.Context, sess *Session, intent *domain.Intent) domain.TurnResponse {
	if _, ok := slots.Menu(intent.Slots); ok {
		return e.menuTurn(ctx, sess, intent)
	}
	if _, ok := intent.Slots.Value(domain.SlotDate); ok {
		return e.dateTurn(ctx, sess, intent)
	}
	return e.noSlotTurn(ctx, sess, intent)
}

func (e *Engine) menuTurn(ctx context.Context, sess *Session, intent *domain.Intent) domain.TurnResponse {
	raw, _ := slots.Menu(intent.Slots)
	restriction, ok := slots.CanonicalRestriction(raw)
	if !ok {
		reprompt := "Currently, I know menu information for these menus: " + supportedMenusText() +
			"Which menu would you like menu information for?"
		return ask(sess, "I'm sorry, I don't have any data for "+raw+". "+reprompt, reprompt)
	}

	if sess.Date != nil {
		return e.finishMenuRequest(ctx, sess, *sess.Date, "", restriction)
	}
	sess.Menu = raw
	return ask(sess, "For which date?", "For which date would you like menu information for "+raw+"?")
}

func (e *Engine) dateTurn(ctx context.Context, sess *Session, intent *domain.Intent) domain.TurnResponse {
	date, dstate := slots.Date(intent.Slots, e.now())
	if dstate == slots.StateInvalid {
		reprompt := dateExamplePart + whichDatePart
		return ask(sess, "I'm sorry, I didn't understand that date. "+reprompt, reprompt)
	}

	if sess.Menu != "" {
		restriction, ok := slots.CanonicalRestriction(sess.Menu)
		if !ok {
			restriction = domain.RestrictionNone
		}
		return e.finishMenuRequest(ctx, sess, date, "", restriction)
	}
	sess.Date = &date
	return ask(sess, "For which menu would you like menu information for "+date.DisplayDate+"?", "For which menu?")
}

func (e *Engine) noSlotTurn(ctx context.Context, sess *Session, intent *domain.Intent) domain.TurnResponse {
	if sess.Menu != "" {
		return ask(sess, dateExamplePart, dateExamplePart)
	}
	return e.handleSupportedMenus(ctx, sess, intent)
}

func (e *Engine) handleSupportedMenus(_ context.Context, sess *Session, _ *domain.Intent) domain.TurnResponse {
	reprompt := "For which meal would you like information?"
	return ask(sess, "Currently, I know menu information for: "+supportedMenusText()+reprompt, reprompt)
}

func (e *Engine) handleSetRestriction(ctx context.Context, sess *Session, intent *domain.Intent) domain.TurnResponse {
	return e.saveRestriction(ctx, sess, intent, false)
}

func (e *Engine) handleRemoveRestriction(ctx context.Context, sess *Session, intent *domain.Intent) domain.TurnResponse {
	return e.saveRestriction(ctx, sess, intent, true)
}

// saveRestriction persists (or clears, for "I'm not vegan") the user's
// dietary restriction. The session copy is updated first so the change
// takes effect this conversation even when the store write fails.
func (e *Engine) saveRestriction(ctx context.Context, sess *Session, intent *domain.Intent, remove bool) domain.TurnResponse {
	raw, _ := intent.Slots.Value(domain.SlotRestriction)
	restriction, ok := slots.CanonicalRestriction(raw)
	if !ok || restriction == domain.RestrictionNone {
		// "none" is expressed by removing, not by setting "full".
		return ask(sess, "Sorry I didn't quite understand your dietary restriction. Can you please repeat that?",
			anythingElse)
	}

	var pref *domain.Preference
	if !remove {
		pref = &domain.Preference{Restriction: string(restriction)}
	}
	sess.setData(pref)

	if e.store != nil && sess.UserID != "" {
		if err := e.store.Set(ctx, sess.UserID, pref); err != nil {
			e.log.Error().Err(err).Str("user", sess.UserID).Msg("preference save failed")
			return ask(sess, "Sorry, I'm having trouble saving your dietary restriction. Please try again later. "+
				"In the meantime, you can ask directly, like: "+string(restriction)+" dinner.", anythingElse)
		}
	}

	if remove {
		return ask(sess, "OK. From now on I will tell you the full menu, with no restrictions.", anythingElse)
	}
	return ask(sess, "OK. From now on I will remember that you only want to hear the "+string(restriction)+
		" menu. If you want me to forget that, say: I'm not "+raw+".", anythingElse)
}

// handleCompliment is an easter egg for users showing the skill off.
func (e *Engine) handleCompliment(_ context.Context, sess *Session, intent *domain.Intent) domain.TurnResponse {
	raw, _ := slots.Compliment(intent.Slots)
	phrase := normalizePhrase(raw)

	var reply string
	switch {
	case phrase == "ilovethis" || phrase == "ilikethis":
		reply = "I'm flattered! Love is quite a strong word."
	case strings.Contains(phrase, "cool") || phrase == "wow" || phrase == "thisisbrilliant":
		reply = "I find myself pretty cool too."
	case phrase == "youvegottoseethis" || phrase == "comeseethis":
		reply = "Yes, let's wait for everybody to get settled in."
	case phrase == "comecheckthisout" || phrase == "checkthisout":
		reply = "But I don't like when people check me out."
	default:
		return ask(sess, repeatPrompt, otherMealPrompt)
	}
	return ask(sess, "Thank you! "+reply+" But seriously, what would you like me to do?", anythingElse)
}

func (e *Engine) handleHelp(_ context.Context, sess *Session, _ *domain.Intent) domain.TurnResponse {
	return ask(sess, helpText, whichMealPrompt)
}

func (e *Engine) handleRepeat(_ context.Context, sess *Session, _ *domain.Intent) domain.TurnResponse {
	if sess.Spoken != "" {
		return domain.TurnResponse{SpeechText: sess.Spoken, RepromptText: whatElsePrompt}
	}
	return ask(sess, nothingToRepeatText, whichMealPrompt)
}

func (e *Engine) handleStop(_ context.Context, _ *Session, _ *domain.Intent) domain.TurnResponse {
	return tell(goodbyeStopText)
}

func (e *Engine) handleCancel(_ context.Context, _ *Session, _ *domain.Intent) domain.TurnResponse {
	return tell(goodbyeText)
}

// normalizePhrase lowercases and strips everything but letters so
// utterance variants compare equal.
func normalizePhrase(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if r >= 'a' && r <= 'z' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
