package dialog

import (
	"strings"

	"github.com/soyeahso/obiefood/internal/domain"
)

// Fixed prompts. These strings are part of the voice interface and are
// matched by users' ears; change them deliberately.
const (
	whichMealPrompt = "For which meal would you like the menu?"
	whatElsePrompt  = "What else would you like to know?"
	anythingElse    = "What else can I do for you ?"
	otherMealPrompt = "What other meal would you like to find out about?"
	repeatPrompt    = "Could you please repeat that?"
	dateExamplePart = "Please try again saying a day of the week, for example, Saturday. "
	whichDatePart   = "For which date would you like menu information?"
	goodbyeStopText = "Goodbye and bon appétit."
	goodbyeText     = "Goodbye"

	nothingToRepeatText = "Sorry, I have nothing to repeat." + whichMealPrompt

	welcomeText     = "Welcome to Obie food. " + whichMealPrompt
	welcomeReprompt = "I can tell you the menu specials at campus halls and cafés. " +
		"You can ask for a specific date and you can also ask for vegan, vegetarian or gluten-free only." +
		whichMealPrompt

	helpText = "Say lunch or dinner and a date to hear the menu special on campus. " +
		"You can include dietary restrictions like vegan, vegetarian and gluten-free by saying for example: " +
		"vegetarian menu. You can also say: I'm vegetarian (or vegan or gluten intolerant) " +
		"if you'd like me to also remember your dietary restriction." +
		"Or you can say exit. " + whichMealPrompt
)

// supportedMenus is the closed set offered when the user asks what I
// know, in the order it is spoken.
var supportedMenus = []string{"vegan", "vegetarian", "glutenfree", "no restrictions", "full"}

// supportedMenusText renders the set with a trailing separator so it
// reads naturally before a follow-up question.
func supportedMenusText() string {
	return strings.Join(supportedMenus, ", ") + ", "
}

// ask builds a question response and persists its speech on the session
// so a repeat request can replay it.
func ask(sess *Session, speech, reprompt string) domain.TurnResponse {
	sess.Spoken = speech
	return domain.TurnResponse{
		SpeechText:   speech,
		RepromptText: reprompt,
	}
}

// askWithCard is ask plus a visual card.
func askWithCard(sess *Session, speech, reprompt, title, body string) domain.TurnResponse {
	resp := ask(sess, speech, reprompt)
	resp.Card = &domain.Card{Title: title, Body: body}
	return resp
}

// tell builds a final statement that closes the session.
func tell(speech string) domain.TurnResponse {
	return domain.TurnResponse{
		SpeechText:       speech,
		ShouldEndSession: true,
	}
}
