package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/Dosada05/scoreboard/models"
	"github.com/Dosada05/scoreboard/repositories"
	"github.com/Dosada05/scoreboard/scoring"
	"github.com/Dosada05/scoreboard/storage"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func copyMatch(m *models.Match) *models.Match {
	c := *m
	for side := 1; side <= 2; side++ {
		team := c.Team(side)
		for p := range team.Players {
			team.Players[p].Scores = append([]int(nil), team.Players[p].Scores...)
		}
	}
	if m.Winner != nil {
		w := *m.Winner
		c.Winner = &w
	}
	return &c
}

type fakeMatchRepo struct {
	mu        sync.Mutex
	matches   map[int]*models.Match
	nextID    int
	updates   int
	photoErr  error
	createErr error
}

func newFakeMatchRepo() *fakeMatchRepo {
	return &fakeMatchRepo{matches: map[int]*models.Match{}, nextID: 1}
}

func (r *fakeMatchRepo) put(m *models.Match) *models.Match {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m.ID == 0 {
		m.ID = r.nextID
	}
	if m.ID >= r.nextID {
		r.nextID = m.ID + 1
	}
	if m.Version == 0 {
		m.Version = 1
	}
	if m.MatchNumber == 0 {
		m.MatchNumber = m.ID
	}
	r.matches[m.ID] = copyMatch(m)
	return m
}

func (r *fakeMatchRepo) stored(id int) *models.Match {
	r.mu.Lock()
	defer r.mu.Unlock()
	return copyMatch(r.matches[id])
}

func (r *fakeMatchRepo) Create(_ context.Context, _ repositories.SQLExecutor, m *models.Match) error {
	if r.createErr != nil {
		return r.createErr
	}
	m.ID = 0
	m.Version = 0
	m.MatchNumber = 0
	r.put(m)
	return nil
}

func (r *fakeMatchRepo) GetByID(_ context.Context, _ repositories.SQLExecutor, id int) (*models.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.matches[id]
	if !ok {
		return nil, repositories.ErrMatchNotFound
	}
	return copyMatch(m), nil
}

func (r *fakeMatchRepo) GetByIDForUpdate(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Match, error) {
	return r.GetByID(ctx, exec, id)
}

func (r *fakeMatchRepo) List(_ context.Context, _ repositories.SQLExecutor, filter models.MatchFilter) ([]models.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]models.Match, 0)
	for _, m := range r.matches {
		if filter.Status != nil && m.Status != *filter.Status {
			continue
		}
		if filter.Group != nil && scoring.GroupKey(m.Group) != scoring.GroupKey(*filter.Group) {
			continue
		}
		if filter.Date != nil && !m.Date.Equal(*filter.Date) {
			continue
		}
		result = append(result, *copyMatch(m))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (r *fakeMatchRepo) Update(_ context.Context, _ repositories.SQLExecutor, m *models.Match) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.matches[m.ID]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	if current.Version != m.Version {
		return repositories.ErrMatchVersionConflict
	}
	m.Version++
	r.updates++
	r.matches[m.ID] = copyMatch(m)
	return nil
}

func (r *fakeMatchRepo) UpdateTeamPhoto(_ context.Context, _ repositories.SQLExecutor, id, side int, key *string) error {
	if r.photoErr != nil {
		return r.photoErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.matches[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	m.Team(side).PhotoKey = key
	m.Version++
	return nil
}

func (r *fakeMatchRepo) Delete(_ context.Context, _ repositories.SQLExecutor, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.matches[id]; !ok {
		return repositories.ErrMatchNotFound
	}
	delete(r.matches, id)
	return nil
}

type fakePlayerRepo struct {
	mu      sync.Mutex
	players map[string]*models.Player
	nextID  int
}

func newFakePlayerRepo() *fakePlayerRepo {
	return &fakePlayerRepo{players: map[string]*models.Player{}, nextID: 1}
}

func (r *fakePlayerRepo) UpsertPlayed(_ context.Context, _ repositories.SQLExecutor, p *models.Player) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.players[p.NameKey]; ok {
		existing.MatchesPlayed++
		*p = *existing
		return nil
	}
	c := *p
	c.ID = r.nextID
	r.nextID++
	c.MatchesPlayed = 1
	r.players[p.NameKey] = &c
	*p = c
	return nil
}

func (r *fakePlayerRepo) RecordResult(_ context.Context, _ repositories.SQLExecutor, key string, won bool, score int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.players[key]
	if !ok {
		return repositories.ErrPlayerNotFound
	}
	if won {
		p.MatchesWon++
	} else {
		p.MatchesLost++
	}
	p.TotalScore += score
	return nil
}

func (r *fakePlayerRepo) Retract(_ context.Context, _ repositories.SQLExecutor, key string, result *repositories.PlayerResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.players[key]
	if !ok {
		return repositories.ErrPlayerNotFound
	}
	p.MatchesPlayed--
	if result != nil {
		if result.Won {
			p.MatchesWon--
		} else {
			p.MatchesLost--
		}
		p.TotalScore -= result.Score
	}
	return nil
}

func (r *fakePlayerRepo) GetByNameKey(_ context.Context, _ repositories.SQLExecutor, key string) (*models.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.players[key]
	if !ok {
		return nil, repositories.ErrPlayerNotFound
	}
	c := *p
	return &c, nil
}

func (r *fakePlayerRepo) List(_ context.Context, _ repositories.SQLExecutor) ([]models.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Player, 0, len(r.players))
	for _, p := range r.players {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakePlayerRepo) UpdatePhoto(_ context.Context, _ repositories.SQLExecutor, key string, photoKey *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.players[key]
	if !ok {
		return repositories.ErrPlayerNotFound
	}
	p.PhotoKey = photoKey
	return nil
}

type fakeSlideRepo struct {
	mu     sync.Mutex
	slides map[int]*models.Slide
	nextID int
}

func newFakeSlideRepo() *fakeSlideRepo {
	return &fakeSlideRepo{slides: map[int]*models.Slide{}, nextID: 1}
}

func (r *fakeSlideRepo) Create(_ context.Context, _ repositories.SQLExecutor, s *models.Slide) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s.ID = r.nextID
	r.nextID++
	c := *s
	r.slides[s.ID] = &c
	return nil
}

func (r *fakeSlideRepo) GetByID(_ context.Context, _ repositories.SQLExecutor, id int) (*models.Slide, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.slides[id]
	if !ok {
		return nil, repositories.ErrSlideNotFound
	}
	c := *s
	return &c, nil
}

func (r *fakeSlideRepo) List(_ context.Context, _ repositories.SQLExecutor) ([]models.Slide, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Slide, 0, len(r.slides))
	for _, s := range r.slides {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].OrderIndex != out[j].OrderIndex {
			return out[i].OrderIndex < out[j].OrderIndex
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *fakeSlideRepo) Update(_ context.Context, _ repositories.SQLExecutor, s *models.Slide) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.slides[s.ID]; !ok {
		return repositories.ErrSlideNotFound
	}
	c := *s
	r.slides[s.ID] = &c
	return nil
}

func (r *fakeSlideRepo) UpdateOrder(_ context.Context, _ repositories.SQLExecutor, id, order int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.slides[id]
	if !ok {
		return repositories.ErrSlideNotFound
	}
	s.OrderIndex = order
	return nil
}

func (r *fakeSlideRepo) UpdateImage(_ context.Context, _ repositories.SQLExecutor, id int, key *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.slides[id]
	if !ok {
		return repositories.ErrSlideNotFound
	}
	s.ImageKey = key
	return nil
}

func (r *fakeSlideRepo) Delete(_ context.Context, _ repositories.SQLExecutor, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.slides[id]; !ok {
		return repositories.ErrSlideNotFound
	}
	delete(r.slides, id)
	return nil
}

func (r *fakeSlideRepo) NextOrderIndex(_ context.Context, _ repositories.SQLExecutor) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	next := 0
	for _, s := range r.slides {
		if s.OrderIndex >= next {
			next = s.OrderIndex + 1
		}
	}
	return next, nil
}

type fakeUserRepo struct {
	users map[string]*models.User
}

func (r *fakeUserRepo) Create(_ context.Context, u *models.User) error {
	if _, ok := r.users[u.Email]; ok {
		return repositories.ErrUserEmailConflict
	}
	u.ID = len(r.users) + 1
	c := *u
	r.users[u.Email] = &c
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id int) (*models.User, error) {
	for _, u := range r.users {
		if u.ID == id {
			c := *u
			return &c, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	u, ok := r.users[email]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	c := *u
	return &c, nil
}

// fakeTx runs fn directly. Writes made before a failure are not undone, so
// tests that care about atomicity check what reached the repository.
type fakeTx struct {
	calls int
}

func (t *fakeTx) RunInTx(_ context.Context, fn func(exec repositories.SQLExecutor) error) error {
	t.calls++
	return fn(nil)
}

type fakeUploader struct {
	mu       sync.Mutex
	objects  map[string]string
	deleted  []string
	failNext error
}

var _ storage.FileUploader = (*fakeUploader)(nil)

func newFakeUploader() *fakeUploader {
	return &fakeUploader{objects: map[string]string{}}
}

func (u *fakeUploader) Upload(_ context.Context, key, contentType string, r io.Reader) (*storage.UploadResult, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.failNext != nil {
		err := u.failNext
		u.failNext = nil
		return nil, err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	u.objects[key] = string(data)
	return &storage.UploadResult{Key: key, Location: "https://cdn.test/" + key}, nil
}

func (u *fakeUploader) Delete(_ context.Context, key string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.deleted = append(u.deleted, key)
	delete(u.objects, key)
	return nil
}

func (u *fakeUploader) GetPublicURL(key string) string {
	return "https://cdn.test/" + key
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []models.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e models.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) types() []models.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]models.EventType, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

type countingStandings struct {
	invalidations int
}

func (c *countingStandings) Overall(context.Context) ([]models.Standing, error) { return nil, nil }
func (c *countingStandings) ByGroup(context.Context) ([]models.GroupStandings, error) {
	return []models.GroupStandings{}, nil
}
func (c *countingStandings) Invalidate(context.Context) { c.invalidations++ }

var errBoom = errors.New("boom")

func matchDate(day int) time.Time {
	return time.Date(2026, 3, day, 0, 0, 0, 0, time.UTC)
}

// storedMatch is a persisted match between two teams with zeroed scores.
func storedMatch(team1, team2 string, status models.MatchStatus) *models.Match {
	m := &models.Match{
		Date:     matchDate(10),
		DayLabel: "Day 1",
		Venue:    "Court 1",
		Group:    "A",
		Status:   status,
	}
	for side, name := range []string{team1, team2} {
		team := m.Team(side + 1)
		team.Name = name
		team.Leader = name + " Captain"
		team.Players[0] = models.PlayerEntry{Name: name + " P1", Scores: models.EmptyScores()}
		team.Players[1] = models.PlayerEntry{Name: name + " P2", Scores: models.EmptyScores()}
	}
	return m
}

func matchInput(team1, team2 string) MatchInput {
	team := func(name string) TeamInput {
		return TeamInput{
			Name:   name,
			Leader: name + " Captain",
			Players: [2]PlayerInput{
				{Name: name + " P1"},
				{Name: name + " P2"},
			},
		}
	}
	return MatchInput{
		Date:     "2026-03-10",
		DayLabel: "Day 1",
		Venue:    "Court 1",
		Group:    "a",
		Team1:    team(team1),
		Team2:    team(team2),
	}
}
