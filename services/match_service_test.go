package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/scoreboard/models"
)

type matchFixture struct {
	svc       MatchService
	matches   *fakeMatchRepo
	players   *fakePlayerRepo
	slides    *fakeSlideRepo
	uploader  *fakeUploader
	events    *recordingPublisher
	standings *countingStandings
	clock     *clockwork.FakeClock
}

func newMatchFixture(t *testing.T) *matchFixture {
	t.Helper()
	f := &matchFixture{
		matches:   newFakeMatchRepo(),
		players:   newFakePlayerRepo(),
		slides:    newFakeSlideRepo(),
		uploader:  newFakeUploader(),
		events:    &recordingPublisher{},
		standings: &countingStandings{},
		clock:     clockwork.NewFakeClockAt(time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)),
	}
	f.svc = NewMatchService(f.matches, f.players, f.slides, &fakeTx{}, f.standings, f.events, f.uploader, f.clock,
		MatchServiceOptions{AutoSlides: true}, discardLogger)
	return f
}

// seed stores m and registers its players as the create path would.
func (f *matchFixture) seed(t *testing.T, m *models.Match) *models.Match {
	t.Helper()
	f.matches.put(m)
	require.NoError(t, registerPlayers(context.Background(), f.players, nil, m))
	return m
}

func toggle(t *testing.T, svc MatchService, id, team, player int, rallies ...int) *ScoreUpdate {
	t.Helper()
	var last *ScoreUpdate
	for _, r := range rallies {
		update, err := svc.ToggleScore(context.Background(), id, ToggleInput{Team: team, Player: player, Rally: r})
		require.NoError(t, err, "rally %d", r)
		last = update
	}
	return last
}

func TestToggleScoreFalconsEaglesScenario(t *testing.T) {
	f := newMatchFixture(t)
	m := f.seed(t, storedMatch("Falcons", "Eagles", models.MatchStatusLive))

	toggle(t, f.svc, m.ID, 1, 1, 0, 1, 2, 3, 4)
	last := toggle(t, f.svc, m.ID, 2, 1, 0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14)

	assert.True(t, last.WinnerDeclared)
	assert.Equal(t, [2]int{5, 15}, last.Totals.Teams)

	stored := f.matches.stored(m.ID)
	assert.Equal(t, models.MatchStatusCompleted, stored.Status)
	require.NotNil(t, stored.Winner)
	assert.Equal(t, "Eagles", *stored.Winner)
	assert.Equal(t, 5, stored.Team1.Score)
	assert.Equal(t, 15, stored.Team2.Score)
	assert.Equal(t, 15, stored.Team2.Players[0].Total)

	eagle, err := f.players.GetByNameKey(context.Background(), nil, "eagles p1")
	require.NoError(t, err)
	assert.Equal(t, 1, eagle.MatchesWon)
	assert.Equal(t, 15, eagle.TotalScore)
	falcon, err := f.players.GetByNameKey(context.Background(), nil, "falcons p1")
	require.NoError(t, err)
	assert.Equal(t, 1, falcon.MatchesLost)
	assert.Equal(t, 5, falcon.TotalScore)

	types := f.events.types()
	assert.Equal(t, models.EventMatchCompleted, types[len(types)-1])
	assert.Equal(t, models.EventScoreUpdated, types[len(types)-2])
}

func TestToggleScoreNoWinnerAtFourteenAll(t *testing.T) {
	f := newMatchFixture(t)
	m := f.seed(t, storedMatch("A1", "B1", models.MatchStatusLive))

	toggle(t, f.svc, m.ID, 1, 1, 0, 1, 2, 3, 4, 5, 6)
	toggle(t, f.svc, m.ID, 1, 2, 0, 1, 2, 3, 4, 5, 6)
	toggle(t, f.svc, m.ID, 2, 1, 0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13)

	stored := f.matches.stored(m.ID)
	assert.Equal(t, 14, stored.Team1.Score)
	assert.Equal(t, 14, stored.Team2.Score)
	assert.Equal(t, models.MatchStatusLive, stored.Status)
	assert.Nil(t, stored.Winner)

	last := toggle(t, f.svc, m.ID, 1, 2, 7)
	assert.True(t, last.WinnerDeclared)
	assert.Equal(t, "A1", *f.matches.stored(m.ID).Winner)
}

func TestToggleScoreTwiceRestoresTotals(t *testing.T) {
	f := newMatchFixture(t)
	m := f.seed(t, storedMatch("A1", "B1", models.MatchStatusLive))
	toggle(t, f.svc, m.ID, 2, 2, 3, 9)

	before := f.matches.stored(m.ID)
	toggle(t, f.svc, m.ID, 2, 2, 5, 5)
	after := f.matches.stored(m.ID)

	assert.Equal(t, before.Team2.Players[1].Scores, after.Team2.Players[1].Scores)
	assert.Equal(t, before.Team2.Score, after.Team2.Score)
	assert.Equal(t, 2, after.Team2.Score)
}

func TestToggleScoreMovesUpcomingToLive(t *testing.T) {
	f := newMatchFixture(t)
	m := f.seed(t, storedMatch("A1", "B1", models.MatchStatusUpcoming))

	update := toggle(t, f.svc, m.ID, 1, 1, 0)
	assert.Equal(t, models.MatchStatusLive, update.Match.Status)
	assert.Equal(t, 1, update.Match.Team1.Score)
}

func TestToggleScoreRejectsCompletedMatch(t *testing.T) {
	f := newMatchFixture(t)
	m := storedMatch("A1", "B1", models.MatchStatusCompleted)
	winner := "A1"
	m.Winner = &winner
	f.seed(t, m)

	_, err := f.svc.ToggleScore(context.Background(), m.ID, ToggleInput{Team: 1, Player: 1, Rally: 0})
	assert.ErrorIs(t, err, ErrMatchCompleted)
	assert.Equal(t, 0, f.matches.updates)
}

func TestToggleScoreValidation(t *testing.T) {
	f := newMatchFixture(t)
	m := f.seed(t, storedMatch("A1", "B1", models.MatchStatusLive))

	for _, in := range []ToggleInput{
		{Team: 3, Player: 1, Rally: 0},
		{Team: 1, Player: 0, Rally: 0},
		{Team: 1, Player: 1, Rally: 16},
		{Team: 1, Player: 1, Rally: -1},
	} {
		_, err := f.svc.ToggleScore(context.Background(), m.ID, in)
		assert.ErrorIs(t, err, ErrValidationFailed, "%+v", in)
	}
	assert.Equal(t, 0, f.matches.updates)

	_, err := f.svc.ToggleScore(context.Background(), 999, ToggleInput{Team: 1, Player: 1})
	assert.ErrorIs(t, err, ErrMatchNotFound)
}

func TestToggleScoreVersionConflict(t *testing.T) {
	f := newMatchFixture(t)
	m := f.seed(t, storedMatch("A1", "B1", models.MatchStatusLive))
	stale := m.Version
	toggle(t, f.svc, m.ID, 1, 1, 0)

	_, err := f.svc.ToggleScore(context.Background(), m.ID, ToggleInput{Team: 1, Player: 1, Rally: 1, Version: &stale})
	assert.ErrorIs(t, err, ErrVersionConflict)
	assert.Equal(t, 1, f.matches.stored(m.ID).Team1.Score)
}

func TestToggleScoreAmbiguousWinnerIsRejected(t *testing.T) {
	f := newMatchFixture(t)
	m := storedMatch("A1", "B1", models.MatchStatusLive)
	for i := 0; i < 15; i++ {
		m.Team2.Players[0].Scores[i] = 1
	}
	for i := 0; i < 14; i++ {
		m.Team1.Players[0].Scores[i] = 1
	}
	m.Team1.Players[0].Total, m.Team1.Score = 14, 14
	m.Team2.Players[0].Total, m.Team2.Score = 15, 15
	f.seed(t, m)

	_, err := f.svc.ToggleScore(context.Background(), m.ID, ToggleInput{Team: 1, Player: 2, Rally: 0})
	assert.ErrorIs(t, err, ErrAmbiguousWinner)
	assert.Equal(t, 14, f.matches.stored(m.ID).Team1.Score)
}

func TestCreateMatchRegistersPlayersAndSlide(t *testing.T) {
	f := newMatchFixture(t)

	m, err := f.svc.CreateMatch(context.Background(), matchInput("  Falcons ", "Eagles"))
	require.NoError(t, err)

	assert.Equal(t, "Falcons", m.Team1.Name)
	assert.Equal(t, "A", m.Group)
	assert.Equal(t, models.MatchStatusUpcoming, m.Status)
	assert.Len(t, m.Team1.Players[0].Scores, models.RallySlots)
	assert.Equal(t, 1, m.Version)

	players, err := f.players.List(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, players, 4)

	slides, err := f.slides.List(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, slides, 1)
	assert.Equal(t, "#1 Group A: Falcons vs Eagles", slides[0].Title)
	require.NotNil(t, slides[0].MatchID)
	assert.Equal(t, m.ID, *slides[0].MatchID)
	assert.Equal(t, f.clock.Now().UTC(), slides[0].CreatedAt)

	assert.Equal(t, []models.EventType{models.EventMatchCreated, models.EventSlidesUpdated}, f.events.types())
	assert.Equal(t, 1, f.standings.invalidations)
}

func TestCreateMatchValidation(t *testing.T) {
	f := newMatchFixture(t)

	in := matchInput("Eagles", " EAGLES ")
	in.Date = "10/03/2026"
	in.Group = " "
	in.Team1.Players[1].Name = ""
	in.Status = models.MatchStatusCompleted

	_, err := f.svc.CreateMatch(context.Background(), in)
	require.ErrorIs(t, err, ErrValidationFailed)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "date")
	assert.Contains(t, verr.Fields, "group")
	assert.Contains(t, verr.Fields, "team2.name")
	assert.Contains(t, verr.Fields, "team1.players[1].name")
	assert.Empty(t, f.matches.matches)

	dup := matchInput("Falcons", "Eagles")
	dup.Team2.Players[0].Name = "falcons p1"
	_, err = f.svc.CreateMatch(context.Background(), dup)
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "team2.players[0].name")

	done := matchInput("Falcons", "Eagles")
	done.Status = models.MatchStatusCompleted
	_, err = f.svc.CreateMatch(context.Background(), done)
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "status")
}

func TestCreateMatchMapsTodayToUpcoming(t *testing.T) {
	f := newMatchFixture(t)
	in := matchInput("Falcons", "Eagles")
	in.Status = models.MatchStatusToday

	m, err := f.svc.CreateMatch(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, models.MatchStatusUpcoming, m.Status)
}

func TestLifecycleTransitions(t *testing.T) {
	f := newMatchFixture(t)
	ctx := context.Background()
	m := f.seed(t, storedMatch("A1", "B1", models.MatchStatusUpcoming))

	_, err := f.svc.Stop(ctx, m.ID)
	assert.ErrorIs(t, err, ErrInvalidStatusTransition)

	_, err = f.svc.Complete(ctx, m.ID, CompleteInput{})
	assert.ErrorIs(t, err, ErrInvalidStatusTransition)

	live, err := f.svc.GoLive(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, models.MatchStatusLive, live.Status)

	_, err = f.svc.GoLive(ctx, m.ID)
	assert.ErrorIs(t, err, ErrInvalidStatusTransition)

	stopped, err := f.svc.Stop(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, models.MatchStatusUpcoming, stopped.Status)
}

func TestCompleteWithNamedWinner(t *testing.T) {
	f := newMatchFixture(t)
	ctx := context.Background()
	m := f.seed(t, storedMatch("Night Owls", "Larks", models.MatchStatusLive))

	_, err := f.svc.Complete(ctx, m.ID, CompleteInput{Winner: strPtr("Sparrows")})
	assert.ErrorIs(t, err, ErrValidationFailed)

	done, err := f.svc.Complete(ctx, m.ID, CompleteInput{Winner: strPtr("  night   OWLS ")})
	require.NoError(t, err)
	assert.Equal(t, models.MatchStatusCompleted, done.Status)
	assert.Equal(t, "Night Owls", *done.Winner)

	_, err = f.svc.Complete(ctx, m.ID, CompleteInput{})
	assert.ErrorIs(t, err, ErrMatchCompleted)
}

func TestCompleteFromLeaderAndTie(t *testing.T) {
	f := newMatchFixture(t)
	ctx := context.Background()
	tied := f.seed(t, storedMatch("A1", "B1", models.MatchStatusLive))

	_, err := f.svc.Complete(ctx, tied.ID, CompleteInput{})
	assert.ErrorIs(t, err, ErrWinnerUndetermined)

	toggle(t, f.svc, tied.ID, 2, 1, 0, 1)
	done, err := f.svc.Complete(ctx, tied.ID, CompleteInput{})
	require.NoError(t, err)
	assert.Equal(t, "B1", *done.Winner)
}

func TestListMatchesTodayAndTomorrow(t *testing.T) {
	f := newMatchFixture(t)
	ctx := context.Background()

	today := storedMatch("A1", "B1", models.MatchStatusUpcoming)
	today.Date = matchDate(10)
	tomorrow := storedMatch("C1", "D1", models.MatchStatusUpcoming)
	tomorrow.Date = matchDate(11)
	liveToday := storedMatch("E1", "F1", models.MatchStatusLive)
	liveToday.Date = matchDate(10)
	f.seed(t, today)
	f.seed(t, tomorrow)
	f.seed(t, liveToday)

	got, err := f.svc.ListMatches(ctx, ListMatchesParams{Status: "today"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, today.ID, got[0].ID)

	got, err = f.svc.ListMatches(ctx, ListMatchesParams{Status: "TOMORROW"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, tomorrow.ID, got[0].ID)

	f.clock.Advance(24 * time.Hour)
	got, err = f.svc.ListMatches(ctx, ListMatchesParams{Status: "today"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, tomorrow.ID, got[0].ID)

	_, err = f.svc.ListMatches(ctx, ListMatchesParams{Status: "finished"})
	assert.ErrorIs(t, err, ErrValidationFailed)
	_, err = f.svc.ListMatches(ctx, ListMatchesParams{Status: "today", Date: "2026-03-10"})
	assert.ErrorIs(t, err, ErrValidationFailed)
}

func TestUpdateMatchRenamesWinner(t *testing.T) {
	f := newMatchFixture(t)
	ctx := context.Background()
	m := f.seed(t, storedMatch("A1", "B1", models.MatchStatusLive))
	toggle(t, f.svc, m.ID, 1, 1, 0)
	done, err := f.svc.Complete(ctx, m.ID, CompleteInput{})
	require.NoError(t, err)

	in := matchInput("Alphas", "B1")
	in.Team1.Players = [2]PlayerInput{{Name: "A1 P1"}, {Name: "New Player"}}
	updated, err := f.svc.UpdateMatch(ctx, m.ID, UpdateMatchInput{MatchInput: in, Version: done.Version})
	require.NoError(t, err)

	assert.Equal(t, "Alphas", *updated.Winner)
	assert.Equal(t, models.MatchStatusCompleted, updated.Status)
	assert.Equal(t, 1, updated.Team1.Score)

	_, err = f.players.GetByNameKey(ctx, nil, "new player")
	assert.NoError(t, err)

	_, err = f.svc.UpdateMatch(ctx, m.ID, UpdateMatchInput{MatchInput: in, Version: done.Version})
	assert.ErrorIs(t, err, ErrVersionConflict)
}

func playerCounts(t *testing.T, f *matchFixture, key string) [4]int {
	t.Helper()
	p, err := f.players.GetByNameKey(context.Background(), nil, key)
	require.NoError(t, err)
	return [4]int{p.MatchesPlayed, p.MatchesWon, p.MatchesLost, p.TotalScore}
}

func TestUpdateMatchMovesPlayerCredit(t *testing.T) {
	f := newMatchFixture(t)
	ctx := context.Background()
	m := f.seed(t, storedMatch("A1", "B1", models.MatchStatusLive))
	toggle(t, f.svc, m.ID, 1, 2, 0, 1, 2)
	toggle(t, f.svc, m.ID, 2, 2, 0)
	done, err := f.svc.Complete(ctx, m.ID, CompleteInput{})
	require.NoError(t, err)
	assert.Equal(t, [4]int{1, 1, 0, 3}, playerCounts(t, f, "a1 p2"))

	in := matchInput("A1", "B1")
	in.Team1.Players[1] = PlayerInput{Name: "Substitute"}
	_, err = f.svc.UpdateMatch(ctx, m.ID, UpdateMatchInput{MatchInput: in, Version: done.Version})
	require.NoError(t, err)

	assert.Equal(t, [4]int{0, 0, 0, 0}, playerCounts(t, f, "a1 p2"))
	assert.Equal(t, [4]int{1, 1, 0, 3}, playerCounts(t, f, "substitute"))
	assert.Equal(t, [4]int{1, 1, 0, 0}, playerCounts(t, f, "a1 p1"))
	assert.Equal(t, [4]int{1, 0, 1, 1}, playerCounts(t, f, "b1 p2"))
}

func TestDeleteCompletedMatchReversesCredit(t *testing.T) {
	f := newMatchFixture(t)
	ctx := context.Background()
	first := f.seed(t, storedMatch("A1", "B1", models.MatchStatusLive))
	f.seed(t, storedMatch("A1", "C1", models.MatchStatusUpcoming))
	toggle(t, f.svc, first.ID, 2, 1, 0, 1)
	_, err := f.svc.Complete(ctx, first.ID, CompleteInput{})
	require.NoError(t, err)
	assert.Equal(t, [4]int{2, 0, 1, 0}, playerCounts(t, f, "a1 p1"))
	assert.Equal(t, [4]int{1, 1, 0, 2}, playerCounts(t, f, "b1 p1"))

	require.NoError(t, f.svc.DeleteMatch(ctx, first.ID))
	assert.Equal(t, [4]int{1, 0, 0, 0}, playerCounts(t, f, "a1 p1"))
	assert.Equal(t, [4]int{0, 0, 0, 0}, playerCounts(t, f, "b1 p1"))
}

func TestDeleteMatchRemovesPhotos(t *testing.T) {
	f := newMatchFixture(t)
	m := storedMatch("A1", "B1", models.MatchStatusUpcoming)
	m.Team1.PhotoKey = strPtr("matches/1/team1-old.png")
	f.seed(t, m)

	require.NoError(t, f.svc.DeleteMatch(context.Background(), m.ID))
	assert.Empty(t, f.matches.matches)
	assert.Equal(t, []string{"matches/1/team1-old.png"}, f.uploader.deleted)
	assert.ErrorIs(t, f.svc.DeleteMatch(context.Background(), m.ID), ErrMatchNotFound)
}

func TestUploadTeamPhoto(t *testing.T) {
	f := newMatchFixture(t)
	ctx := context.Background()
	m := storedMatch("A1", "B1", models.MatchStatusUpcoming)
	m.Team2.PhotoKey = strPtr("matches/1/team2-old.png")
	f.seed(t, m)

	updated, err := f.svc.UploadTeamPhoto(ctx, m.ID, 2, strings.NewReader("png"), "image/png")
	require.NoError(t, err)
	require.NotNil(t, updated.Team2.PhotoKey)
	key := *updated.Team2.PhotoKey
	assert.True(t, strings.HasPrefix(key, "matches/1/team2-"), key)
	assert.True(t, strings.HasSuffix(key, ".png"), key)
	assert.Equal(t, "https://cdn.test/"+key, *updated.Team2.PhotoURL)
	assert.Equal(t, []string{"matches/1/team2-old.png"}, f.uploader.deleted)

	_, err = f.svc.UploadTeamPhoto(ctx, m.ID, 1, strings.NewReader("x"), "application/pdf")
	assert.ErrorIs(t, err, ErrUnsupportedContentType)

	_, err = f.svc.UploadTeamPhoto(ctx, m.ID, 3, strings.NewReader("x"), "image/png")
	assert.ErrorIs(t, err, ErrValidationFailed)
}

func TestUploadTeamPhotoCompensatesFailedRowUpdate(t *testing.T) {
	f := newMatchFixture(t)
	m := f.seed(t, storedMatch("A1", "B1", models.MatchStatusUpcoming))
	f.matches.photoErr = errBoom

	_, err := f.svc.UploadTeamPhoto(context.Background(), m.ID, 1, strings.NewReader("jpg"), "image/jpeg")
	require.ErrorIs(t, err, errBoom)
	require.Len(t, f.uploader.deleted, 1)
	assert.True(t, strings.HasPrefix(f.uploader.deleted[0], "matches/1/team1-"))
	assert.Empty(t, f.uploader.objects)
}

func TestUploadWithoutStorage(t *testing.T) {
	f := newMatchFixture(t)
	svc := NewMatchService(f.matches, f.players, f.slides, &fakeTx{}, f.standings, f.events, nil, f.clock, MatchServiceOptions{}, discardLogger)
	m := f.seed(t, storedMatch("A1", "B1", models.MatchStatusUpcoming))

	_, err := svc.UploadTeamPhoto(context.Background(), m.ID, 1, strings.NewReader("x"), "image/png")
	assert.ErrorIs(t, err, ErrStorageUnavailable)
}

func strPtr(s string) *string {
	return &s
}
