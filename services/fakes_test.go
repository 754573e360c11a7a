package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/malaebhub/malaeb-server/models"
	"github.com/malaebhub/malaeb-server/repositories"
	"github.com/malaebhub/malaeb-server/storage"
)

// memStore is a map-backed stand-in for the Dynamo repositories. It
// applies field updates the same way the store does (named fields
// overwrite, everything else is untouched) so the services see the
// weak read-modify-write semantics they run against in production.
type memStore struct {
	mu            sync.Mutex
	users         map[string]*models.User
	teams         map[string]*models.Team
	members       map[string]map[string]*models.Member // teamID -> uid
	matches       map[string]*models.Match
	tournaments   map[string]*models.Tournament
	notifications []*models.Notification
	nextID        int
}

func newMemStore() *memStore {
	return &memStore{
		users:       map[string]*models.User{},
		teams:       map[string]*models.Team{},
		members:     map[string]map[string]*models.Member{},
		matches:     map[string]*models.Match{},
		tournaments: map[string]*models.Tournament{},
	}
}

func (m *memStore) genID(prefix string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	return fmt.Sprintf("%s-%d", prefix, m.nextID)
}

func (m *memStore) addUser(id, username string, accountType models.AccountType) *models.User {
	u := &models.User{ID: id, Username: username, AccountType: accountType}
	m.users[id] = u
	return u
}

func (m *memStore) addTeam(id, name string) *models.Team {
	t := &models.Team{ID: id, TeamName: name}
	m.teams[id] = t
	return t
}

func (m *memStore) addMember(teamID, uid string, role models.MemberRole) {
	if m.members[teamID] == nil {
		m.members[teamID] = map[string]*models.Member{}
	}
	m.members[teamID][uid] = &models.Member{TeamID: teamID, UID: uid, Role: role}
}

// notificationsTo returns every notification addressed to the given
// id, oldest first.
func (m *memStore) notificationsTo(id string) []*models.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Notification
	for _, n := range m.notifications {
		if n.ToID == id {
			out = append(out, n)
		}
	}
	return out
}

// users

type memUserRepo struct{ s *memStore }

func (r *memUserRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	u, ok := r.s.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *memUserRepo) Create(_ context.Context, user *models.User) error {
	cp := *user
	r.s.users[user.ID] = &cp
	return nil
}

func (r *memUserRepo) Update(_ context.Context, id string, fields map[string]interface{}) error {
	u, ok := r.s.users[id]
	if !ok {
		return repositories.ErrUserNotFound
	}
	for k, v := range fields {
		switch k {
		case "username":
			u.Username = v.(string)
		case "accountType":
			u.AccountType = v.(models.AccountType)
		case "avatar":
			s := v.(string)
			u.Avatar = &s
		}
	}
	return nil
}

func (r *memUserRepo) UsernameTaken(_ context.Context, username string) (bool, error) {
	for _, u := range r.s.users {
		if u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

// teams

type memTeamRepo struct{ s *memStore }

func (r *memTeamRepo) GetByID(_ context.Context, id string) (*models.Team, error) {
	t, ok := r.s.teams[id]
	if !ok {
		return nil, repositories.ErrTeamNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *memTeamRepo) Create(_ context.Context, team *models.Team) (string, error) {
	id := r.s.genID("team")
	cp := *team
	cp.ID = id
	r.s.teams[id] = &cp
	return id, nil
}

func (r *memTeamRepo) Update(_ context.Context, id string, fields map[string]interface{}) error {
	t, ok := r.s.teams[id]
	if !ok {
		return repositories.ErrTeamNotFound
	}
	for k, v := range fields {
		switch k {
		case "teamName":
			t.TeamName = v.(string)
		case "teamLogo":
			t.TeamLogo = v.(string)
		case "description":
			t.Description = v.(string)
		case "updatedAt":
			t.UpdatedAt = v.(time.Time)
		}
	}
	return nil
}

func (r *memTeamRepo) NameTaken(_ context.Context, teamName string) (bool, error) {
	for _, t := range r.s.teams {
		if t.TeamName == teamName {
			return true, nil
		}
	}
	return false, nil
}

// members

type memMemberRepo struct{ s *memStore }

func (r *memMemberRepo) Get(_ context.Context, teamID, uid string) (*models.Member, error) {
	m, ok := r.s.members[teamID][uid]
	if !ok {
		return nil, repositories.ErrMemberNotFound
	}
	cp := *m
	return &cp, nil
}

func (r *memMemberRepo) Put(_ context.Context, member *models.Member) error {
	if r.s.members[member.TeamID] == nil {
		r.s.members[member.TeamID] = map[string]*models.Member{}
	}
	cp := *member
	r.s.members[member.TeamID][member.UID] = &cp
	return nil
}

func (r *memMemberRepo) Delete(_ context.Context, teamID, uid string) error {
	delete(r.s.members[teamID], uid)
	return nil
}

func (r *memMemberRepo) ListByTeam(_ context.Context, teamID string) ([]models.Member, error) {
	var out []models.Member
	for _, m := range r.s.members[teamID] {
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UID < out[j].UID })
	return out, nil
}

func (r *memMemberRepo) ListByUser(_ context.Context, uid string) ([]models.Member, error) {
	var out []models.Member
	for _, roster := range r.s.members {
		if m, ok := roster[uid]; ok {
			out = append(out, *m)
		}
	}
	return out, nil
}

// matches

type memMatchRepo struct{ s *memStore }

func (r *memMatchRepo) GetByID(_ context.Context, id string) (*models.Match, error) {
	m, ok := r.s.matches[id]
	if !ok {
		return nil, repositories.ErrMatchNotFound
	}
	cp := *m
	return &cp, nil
}

func (r *memMatchRepo) Create(_ context.Context, match *models.Match) error {
	cp := *match
	r.s.matches[match.ID] = &cp
	return nil
}

func (r *memMatchRepo) Update(_ context.Context, id string, fields map[string]interface{}) error {
	m, ok := r.s.matches[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	for k, v := range fields {
		switch k {
		case "team1":
			m.Team1 = v.(models.TeamMatch)
		case "team2":
			m.Team2 = v.(models.TeamMatch)
		case "refree":
			m.Referee = v.(models.MatchReferee)
		case "status":
			m.Status = v.(models.MatchStatus)
		case "startIn":
			t := v.(time.Time)
			m.StartIn = &t
		case "endedAt":
			t := v.(time.Time)
			m.EndedAt = &t
		case "location":
			loc := v.(string)
			m.Location = &loc
		}
	}
	return nil
}

func (r *memMatchRepo) ListActiveByTeam(_ context.Context, teamID string) ([]models.Match, error) {
	var out []models.Match
	for _, m := range r.s.matches {
		if (m.Team1.ID == teamID || m.Team2.ID == teamID) && !m.Status.Terminal() {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (r *memMatchRepo) ListActiveByReferee(_ context.Context, uid string) ([]models.Match, error) {
	var out []models.Match
	for _, m := range r.s.matches {
		if m.Referee.ID == nil || *m.Referee.ID != uid {
			continue
		}
		if m.Status.Terminal() || m.Status == models.MatchStatusCoachsEdit {
			continue
		}
		out = append(out, *m)
	}
	return out, nil
}

// tournaments

type memTournamentRepo struct{ s *memStore }

func (r *memTournamentRepo) GetByID(_ context.Context, id string) (*models.Tournament, error) {
	t, ok := r.s.tournaments[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *memTournamentRepo) Update(_ context.Context, id string, fields map[string]interface{}) error {
	t, ok := r.s.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	for k, v := range fields {
		switch k {
		case "participants":
			t.Participants = v.([]string)
		case "refree_ids":
			t.RefereeIDs = v.([]string)
		}
	}
	return nil
}

func (r *memTournamentRepo) Delete(_ context.Context, id string) error {
	delete(r.s.tournaments, id)
	return nil
}

func (r *memTournamentRepo) ListActiveByManager(_ context.Context, uid string) ([]models.Tournament, error) {
	var out []models.Tournament
	for _, t := range r.s.tournaments {
		if t.ManagerID == uid && !t.Status.Terminal() {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (r *memTournamentRepo) ListByReferee(_ context.Context, uid string) ([]models.Tournament, error) {
	var out []models.Tournament
	for _, t := range r.s.tournaments {
		if t.HasReferee(uid) {
			out = append(out, *t)
		}
	}
	return out, nil
}

// notifications

type memNotificationRepo struct{ s *memStore }

func (r *memNotificationRepo) GetByID(_ context.Context, id string) (*models.Notification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, n := range r.s.notifications {
		if n.ID == id {
			cp := *n
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotificationNotFound
}

func (r *memNotificationRepo) Create(_ context.Context, notification *models.Notification) (string, error) {
	cp := *notification
	cp.ID = r.s.genID("notif")
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.notifications = append(r.s.notifications, &cp)
	return cp.ID, nil
}

func (r *memNotificationRepo) SetAction(_ context.Context, id string, action models.Action) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, n := range r.s.notifications {
		if n.ID == id {
			a := action
			n.Action = &a
			return nil
		}
	}
	return repositories.ErrNotificationNotFound
}

func (r *memNotificationRepo) ListByRecipient(_ context.Context, toID string) ([]models.Notification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.Notification
	for _, n := range r.s.notifications {
		if n.ToID == toID {
			out = append(out, *n)
		}
	}
	return out, nil
}

// fakeUploader records uploads and hands back deterministic URLs.
type fakeUploader struct {
	uploaded []string
}

func (f *fakeUploader) Upload(_ context.Context, key, _ string, _ io.Reader) (*storage.UploadResult, error) {
	f.uploaded = append(f.uploaded, key)
	return &storage.UploadResult{Key: key, Location: "https://cdn.test/" + key}, nil
}

func (f *fakeUploader) Delete(_ context.Context, _ string) error { return nil }

func (f *fakeUploader) GetPublicURL(key string) string { return "https://cdn.test/" + key }

// testEnv wires every service against a single memStore, the same
// shape main uses for the real wiring.
type testEnv struct {
	store         *memStore
	clock         *clockwork.FakeClock
	uploader      *fakeUploader
	notifier      Notifier
	membership    MembershipService
	matches       MatchService
	tournaments   TournamentService
	teams         TeamService
	users         UserService
	notifications NotificationService
}

func newTestEnv() *testEnv {
	s := newMemStore()
	clock := clockwork.NewFakeClockAt(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	logger := testLogger()
	uploader := &fakeUploader{}

	userRepo := &memUserRepo{s}
	teamRepo := &memTeamRepo{s}
	memberRepo := &memMemberRepo{s}
	matchRepo := &memMatchRepo{s}
	tournamentRepo := &memTournamentRepo{s}
	notificationRepo := &memNotificationRepo{s}

	notifier := NewNotifier(notificationRepo, memberRepo, clock)
	membership := NewMembershipService(userRepo, teamRepo, memberRepo, notifier, clock, logger)
	matches := NewMatchService(userRepo, teamRepo, memberRepo, matchRepo, notifier, clock, logger)
	tournaments := NewTournamentService(userRepo, teamRepo, memberRepo, tournamentRepo, notifier, logger)
	teams := NewTeamService(userRepo, teamRepo, memberRepo, matchRepo, membership, notifier, uploader, clock, logger)
	users := NewUserService(userRepo, memberRepo, matchRepo, tournamentRepo, uploader, clock)
	dispatcher := NewDispatcher(membership, matches, tournaments, logger)
	notifications := NewNotificationService(notificationRepo, memberRepo, tournamentRepo, dispatcher)

	return &testEnv{
		store:         s,
		clock:         clock,
		uploader:      uploader,
		notifier:      notifier,
		membership:    membership,
		matches:       matches,
		tournaments:   tournaments,
		teams:         teams,
		users:         users,
		notifications: notifications,
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(discardWriter{}, &slog.HandlerOptions{Level: slog.LevelError}))
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }
