package dialog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soyeahso/obiefood/internal/domain"
	"github.com/soyeahso/obiefood/internal/logging"
	"github.com/soyeahso/obiefood/internal/menu"
	"github.com/soyeahso/obiefood/internal/prefs"
)

func testLogger() *logging.Logger {
	return logging.New(nil, "silent")
}

// fakeFetcher serves a fixed menu and records the last request.
type fakeFetcher struct {
	menu      domain.Menu
	err       error
	dateParam string
	meal      string
}

func (f *fakeFetcher) Fetch(_ context.Context, dateParam, meal string) (domain.Menu, error) {
	f.dateParam = dateParam
	f.meal = meal
	if f.err != nil {
		return domain.Menu{}, f.err
	}
	return f.menu, nil
}

// blockingClient parks Get until released.
type blockingClient struct {
	release chan struct{}
	pref    *domain.Preference
}

func (c *blockingClient) Get(ctx context.Context, _ string) (*domain.Preference, error) {
	select {
	case <-c.release:
		return c.pref, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *blockingClient) Set(context.Context, string, *domain.Preference) error { return nil }

// failingClient rejects writes.
type failingClient struct{ prefs.MemoryClient }

func (c *failingClient) Set(context.Context, string, *domain.Preference) error {
	return errors.New("store down")
}

func testMenu() domain.Menu {
	return domain.Menu{Sections: []domain.CafeSection{
		{Cafe: "CafeA", Items: []domain.MenuItem{
			{Label: "Falafel Bowl", IconCodes: []int{1}},
			{Label: "Tofu Curry", IconCodes: []int{4}},
			{Label: "Burger"},
		}},
	}}
}

type testEnv struct {
	engine  *Engine
	fetcher *fakeFetcher
	client  prefs.Client
}

func newTestEnv(t *testing.T, client prefs.Client, fetchTimeout time.Duration) *testEnv {
	t.Helper()
	fetcher := &fakeFetcher{menu: testMenu()}
	menus, err := menu.NewEngine(fetcher, "UTC", testLogger())
	require.NoError(t, err)

	reg := NewRegistry(client, fetchTimeout, time.Minute, testLogger())
	e := NewEngine(reg, client, menus, testLogger())
	e.now = func() time.Time {
		return time.Date(2026, time.March, 12, 10, 0, 0, 0, time.UTC)
	}
	return &testEnv{engine: e, fetcher: fetcher, client: client}
}

func intentTurn(sessionID, userID, name string, slotvals map[string]string) domain.TurnRequest {
	s := make(domain.Slots, len(slotvals))
	for k, v := range slotvals {
		s[k] = domain.Slot{Name: k, Value: v}
	}
	return domain.TurnRequest{
		RequestType: domain.RequestTypeIntent,
		Intent:      &domain.Intent{Name: name, Slots: s},
		Session:     domain.SessionInfo{SessionID: sessionID, UserID: userID},
	}
}

func TestLaunchSpeaksWelcome(t *testing.T) {
	env := newTestEnv(t, prefs.NewMemoryClient(), time.Second)

	resp := env.engine.HandleTurn(context.Background(), domain.TurnRequest{
		RequestType: domain.RequestTypeLaunch,
		Session:     domain.SessionInfo{SessionID: "s1", New: true},
	})

	assert.Equal(t, welcomeText, resp.SpeechText)
	assert.Equal(t, welcomeReprompt, resp.RepromptText)
	assert.False(t, resp.ShouldEndSession)
	assert.Equal(t, 1, env.engine.sessions.Len())
}

func TestOneshotVegetarianLunch(t *testing.T) {
	env := newTestEnv(t, prefs.NewMemoryClient(), time.Second)

	resp := env.engine.HandleTurn(context.Background(), intentTurn("s1", "", domain.IntentOneshotMenu,
		map[string]string{domain.SlotMeal: "lunch", domain.SlotRestriction: "vegetarian"}))

	assert.Equal(t, "vegetarian lunch Today : CafeA: Falafel Bowl, Tofu Curry. ", resp.SpeechText)
	assert.Equal(t, whatElsePrompt, resp.RepromptText)
	require.NotNil(t, resp.Card)
	assert.Equal(t, "vegetarian lunch Today", resp.Card.Title)
	assert.Contains(t, resp.Card.ImageURL, "cor_icons")
	assert.Equal(t, "lunch", env.fetcher.meal)
}

func TestOneshotInvalidMeal(t *testing.T) {
	env := newTestEnv(t, prefs.NewMemoryClient(), time.Second)

	resp := env.engine.HandleTurn(context.Background(), intentTurn("s1", "", domain.IntentOneshotMenu,
		map[string]string{domain.SlotMeal: "breakfast"}))

	assert.Equal(t, "Sorry, I only know the menu for lunch and dinner.", resp.SpeechText)
}

func TestOneshotInvalidRestriction(t *testing.T) {
	env := newTestEnv(t, prefs.NewMemoryClient(), time.Second)

	resp := env.engine.HandleTurn(context.Background(), intentTurn("s1", "", domain.IntentOneshotMenu,
		map[string]string{domain.SlotMeal: "dinner", domain.SlotRestriction: "pescatarian"}))

	assert.Equal(t, "Sorry, I only know the dietary restrictions for vegan, vegetarian and gluten-free.",
		resp.SpeechText)
}

func TestOneshotNothingUsableAsksAgain(t *testing.T) {
	env := newTestEnv(t, prefs.NewMemoryClient(), time.Second)

	resp := env.engine.HandleTurn(context.Background(), intentTurn("s1", "", domain.IntentOneshotMenu, nil))

	assert.Equal(t, repeatPrompt, resp.SpeechText)
	assert.Equal(t, otherMealPrompt, resp.RepromptText)
}

func TestOneshotWaitsForPreferenceFetch(t *testing.T) {
	client := &blockingClient{
		release: make(chan struct{}),
		pref:    &domain.Preference{Restriction: "vegan"},
	}
	env := newTestEnv(t, client, time.Minute)

	env.engine.HandleTurn(context.Background(), domain.TurnRequest{
		RequestType: domain.RequestTypeLaunch,
		Session:     domain.SessionInfo{SessionID: "s1", UserID: "u1", New: true},
	})

	done := make(chan domain.TurnResponse, 1)
	go func() {
		done <- env.engine.HandleTurn(context.Background(),
			intentTurn("s1", "u1", domain.IntentOneshotMenu, map[string]string{domain.SlotMeal: "dinner"}))
	}()

	select {
	case <-done:
		t.Fatal("turn completed before preference fetch settled")
	case <-time.After(50 * time.Millisecond):
	}

	close(client.release)
	select {
	case resp := <-done:
		assert.Equal(t, "vegan dinner Today : CafeA: Tofu Curry. ", resp.SpeechText)
	case <-time.After(2 * time.Second):
		t.Fatal("deferred turn never ran")
	}
}

func TestOneshotAbandonsSlowFetch(t *testing.T) {
	client := &blockingClient{release: make(chan struct{})}
	env := newTestEnv(t, client, 10*time.Millisecond)

	env.engine.HandleTurn(context.Background(), domain.TurnRequest{
		RequestType: domain.RequestTypeLaunch,
		Session:     domain.SessionInfo{SessionID: "s1", UserID: "u1", New: true},
	})
	time.Sleep(30 * time.Millisecond)

	resp := env.engine.HandleTurn(context.Background(),
		intentTurn("s1", "u1", domain.IntentOneshotMenu, map[string]string{domain.SlotMeal: "dinner"}))

	// Timer won: proceed unfiltered rather than keep the user waiting.
	assert.Equal(t, "dinner Today : CafeA: Falafel Bowl, Tofu Curry, Burger. ", resp.SpeechText)
}

func TestDialogMenuThenDate(t *testing.T) {
	env := newTestEnv(t, prefs.NewMemoryClient(), time.Second)
	ctx := context.Background()

	resp := env.engine.HandleTurn(ctx, intentTurn("s1", "", domain.IntentDialogMenu,
		map[string]string{domain.SlotMenu: "vegan"}))
	assert.Equal(t, "For which date?", resp.SpeechText)
	assert.Equal(t, "For which date would you like menu information for vegan?", resp.RepromptText)

	resp = env.engine.HandleTurn(ctx, intentTurn("s1", "", domain.IntentDialogMenu,
		map[string]string{domain.SlotDate: "2026-03-14"}))
	assert.Contains(t, resp.SpeechText, "vegan ")
	assert.Contains(t, resp.SpeechText, "Saturday March 14 : CafeA: Tofu Curry. ")
	assert.Equal(t, "2026/03/14", env.fetcher.dateParam)
}

func TestDialogDateThenMenu(t *testing.T) {
	env := newTestEnv(t, prefs.NewMemoryClient(), time.Second)
	ctx := context.Background()

	resp := env.engine.HandleTurn(ctx, intentTurn("s1", "", domain.IntentDialogMenu,
		map[string]string{domain.SlotDate: "2026-03-14"}))
	assert.Equal(t, "For which menu would you like menu information for Saturday March 14?", resp.SpeechText)
	assert.Equal(t, "For which menu?", resp.RepromptText)

	resp = env.engine.HandleTurn(ctx, intentTurn("s1", "", domain.IntentDialogMenu,
		map[string]string{domain.SlotMenu: "full"}))
	assert.Contains(t, resp.SpeechText, "Saturday March 14 : CafeA: Falafel Bowl, Tofu Curry, Burger. ")
}

func TestDialogUnknownMenuEchoesValue(t *testing.T) {
	env := newTestEnv(t, prefs.NewMemoryClient(), time.Second)

	resp := env.engine.HandleTurn(context.Background(), intentTurn("s1", "", domain.IntentDialogMenu,
		map[string]string{domain.SlotMenu: "italian"}))

	assert.Contains(t, resp.SpeechText, "I'm sorry, I don't have any data for italian. ")
	assert.Contains(t, resp.SpeechText, "vegan, vegetarian, glutenfree, no restrictions, full, ")
	assert.Contains(t, resp.RepromptText, "Which menu would you like menu information for?")
}

func TestDialogInvalidDate(t *testing.T) {
	env := newTestEnv(t, prefs.NewMemoryClient(), time.Second)

	resp := env.engine.HandleTurn(context.Background(), intentTurn("s1", "", domain.IntentDialogMenu,
		map[string]string{domain.SlotDate: "someday"}))

	assert.Contains(t, resp.SpeechText, "I'm sorry, I didn't understand that date. ")
	assert.Contains(t, resp.RepromptText, "saying a day of the week, for example, Saturday. ")
}

func TestDialogNoSlot(t *testing.T) {
	env := newTestEnv(t, prefs.NewMemoryClient(), time.Second)
	ctx := context.Background()

	// No menu chosen yet: offer the supported set.
	resp := env.engine.HandleTurn(ctx, intentTurn("s1", "", domain.IntentDialogMenu, nil))
	assert.Contains(t, resp.SpeechText, "Currently, I know menu information for: ")

	// Menu chosen: nudge for a date instead.
	env.engine.HandleTurn(ctx, intentTurn("s1", "", domain.IntentDialogMenu,
		map[string]string{domain.SlotMenu: "vegan"}))
	resp = env.engine.HandleTurn(ctx, intentTurn("s1", "", domain.IntentDialogMenu, nil))
	assert.Equal(t, dateExamplePart, resp.SpeechText)
}

func TestSetAndRemoveRestriction(t *testing.T) {
	client := prefs.NewMemoryClient()
	env := newTestEnv(t, client, time.Second)
	ctx := context.Background()

	resp := env.engine.HandleTurn(ctx, intentTurn("s1", "u1", domain.IntentSetRestriction,
		map[string]string{domain.SlotRestriction: "Gluten Free"}))
	assert.Equal(t, "OK. From now on I will remember that you only want to hear the glutenfree menu. "+
		"If you want me to forget that, say: I'm not Gluten Free.", resp.SpeechText)

	saved, err := client.Get(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Equal(t, "glutenfree", saved.Restriction)

	resp = env.engine.HandleTurn(ctx, intentTurn("s1", "u1", domain.IntentRemoveRestriction,
		map[string]string{domain.SlotRestriction: "gluten free"}))
	assert.Equal(t, "OK. From now on I will tell you the full menu, with no restrictions.", resp.SpeechText)

	saved, err = client.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, saved)
}

func TestSetRestrictionNotUnderstood(t *testing.T) {
	env := newTestEnv(t, prefs.NewMemoryClient(), time.Second)

	resp := env.engine.HandleTurn(context.Background(), intentTurn("s1", "u1", domain.IntentSetRestriction,
		map[string]string{domain.SlotRestriction: "full"}))

	assert.Equal(t, "Sorry I didn't quite understand your dietary restriction. Can you please repeat that?",
		resp.SpeechText)
}

func TestSetRestrictionSaveFailureStillAppliesThisSession(t *testing.T) {
	env := newTestEnv(t, &failingClient{}, time.Second)
	ctx := context.Background()

	resp := env.engine.HandleTurn(ctx, intentTurn("s1", "u1", domain.IntentSetRestriction,
		map[string]string{domain.SlotRestriction: "vegan"}))
	assert.Contains(t, resp.SpeechText, "Sorry, I'm having trouble saving your dietary restriction.")
	assert.Contains(t, resp.SpeechText, "like: vegan dinner.")

	// The session copy still filters this conversation.
	resp = env.engine.HandleTurn(ctx, intentTurn("s1", "u1", domain.IntentOneshotMenu,
		map[string]string{domain.SlotMeal: "dinner"}))
	assert.Equal(t, "vegan dinner Today : CafeA: Tofu Curry. ", resp.SpeechText)
}

func TestRepeat(t *testing.T) {
	env := newTestEnv(t, prefs.NewMemoryClient(), time.Second)
	ctx := context.Background()

	resp := env.engine.HandleTurn(ctx, intentTurn("s1", "", domain.IntentRepeat, nil))
	assert.Equal(t, nothingToRepeatText, resp.SpeechText)
	assert.Equal(t, whichMealPrompt, resp.RepromptText)

	env.engine.HandleTurn(ctx, intentTurn("s1", "", domain.IntentHelp, nil))
	resp = env.engine.HandleTurn(ctx, intentTurn("s1", "", domain.IntentRepeat, nil))
	assert.Equal(t, helpText, resp.SpeechText)
	assert.Equal(t, whatElsePrompt, resp.RepromptText)
}

func TestStopAndCancelEndSession(t *testing.T) {
	env := newTestEnv(t, prefs.NewMemoryClient(), time.Second)
	ctx := context.Background()

	resp := env.engine.HandleTurn(ctx, intentTurn("s1", "", domain.IntentStop, nil))
	assert.Equal(t, goodbyeStopText, resp.SpeechText)
	assert.True(t, resp.ShouldEndSession)
	assert.Equal(t, 0, env.engine.sessions.Len())

	resp = env.engine.HandleTurn(ctx, intentTurn("s2", "", domain.IntentCancel, nil))
	assert.Equal(t, goodbyeText, resp.SpeechText)
	assert.True(t, resp.ShouldEndSession)
}

func TestCompliments(t *testing.T) {
	env := newTestEnv(t, prefs.NewMemoryClient(), time.Second)
	ctx := context.Background()

	cases := []struct {
		phrase string
		want   string
	}{
		{"this is so cool!", "Thank you! I find myself pretty cool too. But seriously, what would you like me to do?"},
		{"I love this", "Thank you! I'm flattered! Love is quite a strong word. But seriously, what would you like me to do?"},
		{"check this out", "Thank you! But I don't like when people check me out. But seriously, what would you like me to do?"},
		{"meh", repeatPrompt},
	}
	for _, tc := range cases {
		resp := env.engine.HandleTurn(ctx, intentTurn("s1", "", domain.IntentOneshotCompliment,
			map[string]string{domain.SlotCompliment: tc.phrase}))
		assert.Equal(t, tc.want, resp.SpeechText, "phrase %q", tc.phrase)
	}
}

func TestSessionEndedRemoves(t *testing.T) {
	env := newTestEnv(t, prefs.NewMemoryClient(), time.Second)
	ctx := context.Background()

	env.engine.HandleTurn(ctx, intentTurn("s1", "", domain.IntentHelp, nil))
	require.Equal(t, 1, env.engine.sessions.Len())

	env.engine.HandleTurn(ctx, domain.TurnRequest{
		RequestType: domain.RequestTypeSessionEnded,
		Session:     domain.SessionInfo{SessionID: "s1"},
	})
	assert.Equal(t, 0, env.engine.sessions.Len())
}

func TestUnknownRequestTypeKeepsSessionOpen(t *testing.T) {
	env := newTestEnv(t, prefs.NewMemoryClient(), time.Second)

	resp := env.engine.HandleTurn(context.Background(), domain.TurnRequest{
		RequestType: "AudioPlayerRequest",
		Session:     domain.SessionInfo{SessionID: "s1"},
	})
	assert.Equal(t, "Could you please repeat that?", resp.SpeechText)
	assert.False(t, resp.ShouldEndSession)
	assert.Equal(t, 1, env.engine.sessions.Len())
}

func TestRegistrySweep(t *testing.T) {
	reg := NewRegistry(prefs.NewMemoryClient(), time.Second, time.Minute, testLogger())
	sess := reg.Obtain(context.Background(), domain.SessionInfo{SessionID: "s1"})
	sess.lastSeen = time.Now().Add(-2 * time.Minute)
	reg.Obtain(context.Background(), domain.SessionInfo{SessionID: "s2"})

	assert.Equal(t, 1, reg.Sweep(time.Now()))
	assert.Equal(t, 1, reg.Len())
}

func TestMenuFetchFailureKeepsSessionOpen(t *testing.T) {
	env := newTestEnv(t, prefs.NewMemoryClient(), time.Second)
	env.fetcher.err = errors.New("upstream down")

	resp := env.engine.HandleTurn(context.Background(), intentTurn("s1", "", domain.IntentOneshotMenu,
		map[string]string{domain.SlotMeal: "dinner"}))

	assert.Equal(t, "Sorry, I can't find information for dinner for Today. Please try again later.", resp.SpeechText)
	assert.False(t, resp.ShouldEndSession)
	require.NotNil(t, resp.Card)
	assert.Equal(t, resp.SpeechText, resp.Card.Body)
}
