package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/scoreboard/cache"
	"github.com/Dosada05/scoreboard/models"
	"github.com/Dosada05/scoreboard/repositories"
)

func decided(team1, team2 string, score1, score2 int, group string) *models.Match {
	m := storedMatch(team1, team2, models.MatchStatusCompleted)
	m.Group = group
	m.Team1.Score, m.Team2.Score = score1, score2
	winner := team1
	if score2 > score1 {
		winner = team2
	}
	m.Winner = &winner
	return m
}

func TestStandingsServiceCycle(t *testing.T) {
	repo := newFakeMatchRepo()
	repo.put(decided("T1", "T2", 15, 10, "A"))
	repo.put(decided("T2", "T3", 15, 8, "A"))
	repo.put(decided("T3", "T1", 15, 12, "A"))

	svc := NewStandingsService(repo, nil, 0, discardLogger)
	standings, err := svc.Overall(context.Background())
	require.NoError(t, err)
	require.Len(t, standings, 3)

	names := []string{standings[0].Team, standings[1].Team, standings[2].Team}
	assert.Equal(t, []string{"T1", "T2", "T3"}, names)
	assert.Equal(t, []int{12, 10, 8}, []int{standings[0].LoseScore, standings[1].LoseScore, standings[2].LoseScore})
	assert.Equal(t, 1, standings[0].Rank)
}

func TestStandingsServiceCachesUntilInvalidated(t *testing.T) {
	clock := clockwork.NewFakeClock()
	store := cache.NewMemory(clock)
	repo := newFakeMatchRepo()
	repo.put(decided("Falcons", "Eagles", 5, 15, "B"))

	svc := NewStandingsService(repo, store, 30*time.Second, discardLogger)
	ctx := context.Background()

	first, err := svc.Overall(ctx)
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Equal(t, "Eagles", first[0].Team)

	repo.put(decided("Falcons", "Hawks", 15, 3, "B"))
	cached, err := svc.Overall(ctx)
	require.NoError(t, err)
	assert.Len(t, cached, 2)

	svc.Invalidate(ctx)
	fresh, err := svc.Overall(ctx)
	require.NoError(t, err)
	assert.Len(t, fresh, 3)

	repo.put(decided("Owls", "Hawks", 15, 3, "C"))
	clock.Advance(31 * time.Second)
	groups, err := svc.ByGroup(ctx)
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, "B", groups[0].Group)
	assert.Equal(t, "C", groups[1].Group)

	afterTTL, err := svc.Overall(ctx)
	require.NoError(t, err)
	assert.Len(t, afterTTL, 4)
}

// slowListRepo holds the first List call after it has read the matches
// until release is closed.
type slowListRepo struct {
	*fakeMatchRepo
	once    sync.Once
	listed  chan struct{}
	release chan struct{}
}

func (r *slowListRepo) List(ctx context.Context, exec repositories.SQLExecutor, filter models.MatchFilter) ([]models.Match, error) {
	matches, err := r.fakeMatchRepo.List(ctx, exec, filter)
	r.once.Do(func() {
		close(r.listed)
		<-r.release
	})
	return matches, err
}

func TestStandingsServiceDropsTablesReadBeforeInvalidate(t *testing.T) {
	store := cache.NewMemory(clockwork.NewFakeClock())
	repo := &slowListRepo{
		fakeMatchRepo: newFakeMatchRepo(),
		listed:        make(chan struct{}),
		release:       make(chan struct{}),
	}
	repo.put(decided("Falcons", "Eagles", 5, 15, "B"))

	svc := NewStandingsService(repo, store, 30*time.Second, discardLogger)
	ctx := context.Background()

	done := make(chan []models.Standing)
	go func() {
		standings, err := svc.Overall(ctx)
		assert.NoError(t, err)
		done <- standings
	}()

	<-repo.listed
	repo.put(decided("Falcons", "Hawks", 15, 3, "B"))
	svc.Invalidate(ctx)
	close(repo.release)

	stale := <-done
	assert.Len(t, stale, 2)

	fresh, err := svc.Overall(ctx)
	require.NoError(t, err)
	assert.Len(t, fresh, 3)

	again, err := svc.Overall(ctx)
	require.NoError(t, err)
	assert.Len(t, again, 3)
}
