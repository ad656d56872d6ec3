// Package slots normalizes raw slot values from the upstream NLU layer
// into typed, defaulted domain values. Resolvers are pure functions and
// never fail loudly: malformed input is encoded as StateInvalid so the
// dialog layer can speak a targeted reprompt, which is a different prompt
// than the one for a missing value.
package slots

import (
	"strings"
	"time"

	"github.com/soyeahso/obiefood/internal/domain"
)

// State classifies a resolved slot. Missing means the slot was absent or
// empty; Invalid means a value was supplied but is unsupported.
type State int

const (
	StateMissing State = iota
	StateValid
	StateInvalid
)

// Menu returns the raw cafe/menu choice, or ok=false when the slot is
// missing. No validation happens here — the call site decides what the
// supported set is, because missing and unsupported get different
// prompts.
func Menu(s domain.Slots) (string, bool) {
	return s.Value(domain.SlotMenu)
}

// Compliment returns the raw compliment phrase, or ok=false when missing.
func Compliment(s domain.Slots) (string, bool) {
	return s.Value(domain.SlotCompliment)
}

// Meal resolves the meal slot. A known ASR confusion maps "launch" to
// "lunch". Anything outside {lunch, dinner} is invalid — breakfast is
// recognized as a meal but explicitly unsupported.
func Meal(s domain.Slots) (string, State) {
	raw, ok := s.Value(domain.SlotMeal)
	if !ok {
		return "", StateMissing
	}
	meal := strings.ToLower(strings.TrimSpace(raw))
	if meal == "launch" {
		meal = domain.MealLunch
	}
	switch meal {
	case domain.MealLunch, domain.MealDinner:
		return meal, StateValid
	default:
		return meal, StateInvalid
	}
}

// Restriction resolves the dietary restriction slot into the closed
// canonical set. Matching ignores case and non-letter characters;
// "gluten intolerant" is a synonym for glutenfree, and "full" or
// "no restrictions" mean none.
func Restriction(s domain.Slots) (domain.Restriction, State) {
	raw, ok := s.Value(domain.SlotRestriction)
	if !ok {
		return "", StateMissing
	}
	r, ok := CanonicalRestriction(raw)
	if !ok {
		return "", StateInvalid
	}
	return r, StateValid
}

// CanonicalRestriction maps a free-form restriction string onto the
// canonical set, reporting ok=false for anything outside it.
func CanonicalRestriction(raw string) (domain.Restriction, bool) {
	switch stripNonLetters(raw) {
	case "vegan":
		return domain.RestrictionVegan, true
	case "vegetarian":
		return domain.RestrictionVegetarian, true
	case "glutenfree", "glutenintolerant":
		return domain.RestrictionGlutenFree, true
	case "full", "norestrictions":
		return domain.RestrictionNone, true
	default:
		return "", false
	}
}

// stripNonLetters lowercases and drops everything that is not a-z, so
// "Gluten-Free" and "GLUTEN FREE" compare equal.
func stripNonLetters(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if r >= 'a' && r <= 'z' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// futureCutoff is how far ahead a parsed date may be before it is assumed
// to belong to the prior year. Year-less utterances like "March 3rd" get
// resolved by the NLU into the next occurrence, which lands in the future
// when the user meant the most recent one.
const futureCutoff = time.Duration(6 * 30.5 * 24 * float64(time.Hour))

// dateLayouts are the wire formats the NLU delivers dates in.
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	time.RFC3339,
}

// Date resolves the date slot relative to now. Missing defaults to today
// with DisplayDate "Today"; an unparseable value is invalid. Dates more
// than about six months in the future are pulled back one year.
func Date(s domain.Slots, now time.Time) (domain.ResolvedDate, State) {
	raw, ok := s.Value(domain.SlotDate)
	if !ok {
		return resolvedDate(now, "Today"), StateMissing
	}

	var date time.Time
	parsed := false
	for _, layout := range dateLayouts {
		if d, err := time.ParseInLocation(layout, raw, now.Location()); err == nil {
			date = d
			parsed = true
			break
		}
	}
	if !parsed {
		return domain.ResolvedDate{}, StateInvalid
	}

	if date.Sub(now) > futureCutoff {
		date = date.AddDate(-1, 0, 0)
	}
	return resolvedDate(date, FormatDisplayDate(date)), StateValid
}

// FormatDisplayDate renders a date the way it is spoken back to the user.
func FormatDisplayDate(d time.Time) string {
	return d.Format("Monday January 2")
}

func resolvedDate(d time.Time, display string) domain.ResolvedDate {
	return domain.ResolvedDate{
		DisplayDate:      display,
		RequestDateParam: d.Format("2006/01/02"),
	}
}
