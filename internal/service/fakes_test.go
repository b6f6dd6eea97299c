package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/ascmontjoie/club-portal-backend/internal/repository"
)

// Map-backed fakes for the pgx repositories. Each fake can be primed
// with rows and taught to fail via the err field. Reads hand out
// copies and writes persist only the columns the production SQL
// writes, so a statement that drops a field fails here too.

// ============================================
// Profile fake
// ============================================

type fakeProfileRepo struct {
	profiles  map[string]*repository.Profile
	err       error
	deleteErr error
	archived  []string
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{profiles: make(map[string]*repository.Profile)}
}

func (f *fakeProfileRepo) add(p *repository.Profile) *repository.Profile {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	f.profiles[p.ID] = p
	return p
}

func (f *fakeProfileRepo) Create(ctx context.Context, p *repository.Profile) error {
	if f.err != nil {
		return f.err
	}
	f.add(p)
	return nil
}

func (f *fakeProfileRepo) FindByID(ctx context.Context, id string) (*repository.Profile, error) {
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.profiles[id]
	if !ok {
		return nil, nil
	}
	row := *p
	return &row, nil
}

func (f *fakeProfileRepo) FindByEmail(ctx context.Context, email string) (*repository.Profile, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, p := range f.profiles {
		if p.Email == email {
			row := *p
			return &row, nil
		}
	}
	return nil, nil
}

func (f *fakeProfileRepo) FindAll(ctx context.Context) ([]*repository.Profile, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]*repository.Profile, 0, len(f.profiles))
	for _, p := range f.profiles {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeProfileRepo) FindByRole(ctx context.Context, role string) ([]*repository.Profile, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*repository.Profile
	for _, p := range f.profiles {
		if p.Role == role {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeProfileRepo) Update(ctx context.Context, p *repository.Profile) error {
	if f.err != nil {
		return f.err
	}
	if existing, ok := f.profiles[p.ID]; ok {
		existing.Email = p.Email
		existing.FullName = p.FullName
	}
	return nil
}

func (f *fakeProfileRepo) UpdatePassword(ctx context.Context, id, hashedPassword string) error {
	if f.err != nil {
		return f.err
	}
	if existing, ok := f.profiles[id]; ok {
		existing.Password = hashedPassword
	}
	return nil
}

func (f *fakeProfileRepo) UpdateRole(ctx context.Context, id, role string) error {
	if f.err != nil {
		return f.err
	}
	if p, ok := f.profiles[id]; ok {
		p.Role = role
	}
	return nil
}

func (f *fakeProfileRepo) SetActive(ctx context.Context, id string, active bool) error {
	if f.err != nil {
		return f.err
	}
	if p, ok := f.profiles[id]; ok {
		p.IsActive = active
	}
	return nil
}

func (f *fakeProfileRepo) Delete(ctx context.Context, id string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if f.err != nil {
		return f.err
	}
	delete(f.profiles, id)
	return nil
}

func (f *fakeProfileRepo) Archive(ctx context.Context, id string) error {
	if p, ok := f.profiles[id]; ok {
		p.Email = fmt.Sprintf("archived-%s@invalid.local", p.ID[:8])
		p.FullName = "Archived user"
		p.Role = "viewer"
		p.IsActive = false
		f.archived = append(f.archived, id)
	}
	return nil
}

// ============================================
// Team fake
// ============================================

type fakeTeamRepo struct {
	teams          map[string]*repository.Team
	memberships    map[string][]string // userID -> teamIDs
	err            error
	membershipsErr error
	// countOverride forces CountByCoachID to lie, simulating a
	// concurrent writer between reassign and verify.
	countOverride *int
}

func newFakeTeamRepo() *fakeTeamRepo {
	return &fakeTeamRepo{
		teams:       make(map[string]*repository.Team),
		memberships: make(map[string][]string),
	}
}

func (f *fakeTeamRepo) add(t *repository.Team) *repository.Team {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	f.teams[t.ID] = t
	return t
}

func (f *fakeTeamRepo) Create(ctx context.Context, t *repository.Team) error {
	if f.err != nil {
		return f.err
	}
	t.CreatedAt = time.Now()
	f.add(t)
	return nil
}

func (f *fakeTeamRepo) FindByID(ctx context.Context, id string) (*repository.Team, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.teams[id], nil
}

func (f *fakeTeamRepo) FindAll(ctx context.Context) ([]*repository.Team, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]*repository.Team, 0, len(f.teams))
	for _, t := range f.teams {
		out = append(out, t)
	}
	return out, nil
}

func (f *fakeTeamRepo) FindByIDs(ctx context.Context, ids []string) ([]*repository.Team, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*repository.Team
	for _, id := range ids {
		if t, ok := f.teams[id]; ok {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeTeamRepo) FindByCoachID(ctx context.Context, coachID string) ([]*repository.Team, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*repository.Team
	for _, t := range f.teams {
		if t.CoachID != nil && *t.CoachID == coachID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeTeamRepo) Update(ctx context.Context, t *repository.Team) error {
	if f.err != nil {
		return f.err
	}
	if existing, ok := f.teams[t.ID]; ok {
		existing.Name = t.Name
		existing.Category = t.Category
		existing.Pole = t.Pole
	}
	return nil
}

func (f *fakeTeamRepo) AssignCoach(ctx context.Context, teamID string, coachID *string) error {
	if f.err != nil {
		return f.err
	}
	if t, ok := f.teams[teamID]; ok {
		t.CoachID = coachID
	}
	return nil
}

func (f *fakeTeamRepo) ClearCoach(ctx context.Context, coachID string) error {
	if f.err != nil {
		return f.err
	}
	for _, t := range f.teams {
		if t.CoachID != nil && *t.CoachID == coachID {
			t.CoachID = nil
		}
	}
	return nil
}

func (f *fakeTeamRepo) CountByCoachID(ctx context.Context, coachID string) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	if f.countOverride != nil {
		return *f.countOverride, nil
	}
	count := 0
	for _, t := range f.teams {
		if t.CoachID != nil && *t.CoachID == coachID {
			count++
		}
	}
	return count, nil
}

func (f *fakeTeamRepo) FindMembershipTeamIDs(ctx context.Context, userID string) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.memberships[userID], nil
}

func (f *fakeTeamRepo) ReplaceMemberships(ctx context.Context, userID string, teamIDs []string) error {
	if f.membershipsErr != nil {
		return f.membershipsErr
	}
	f.memberships[userID] = teamIDs
	return nil
}

// ============================================
// Player fake
// ============================================

type fakePlayerRepo struct {
	players   map[string]*repository.Player
	err       error
	createErr error
	compat    int // CreateCompat call count
}

func newFakePlayerRepo() *fakePlayerRepo {
	return &fakePlayerRepo{players: make(map[string]*repository.Player)}
}

func (f *fakePlayerRepo) add(p *repository.Player) *repository.Player {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	f.players[p.ID] = p
	return p
}

func (f *fakePlayerRepo) Create(ctx context.Context, p *repository.Player) error {
	if f.createErr != nil {
		return f.createErr
	}
	if f.err != nil {
		return f.err
	}
	f.add(p)
	return nil
}

func (f *fakePlayerRepo) CreateCompat(ctx context.Context, p *repository.Player) error {
	f.compat++
	if f.err != nil {
		return f.err
	}
	f.add(p)
	return nil
}

func (f *fakePlayerRepo) FindByID(ctx context.Context, id string) (*repository.Player, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.players[id], nil
}

func (f *fakePlayerRepo) FindByTeamID(ctx context.Context, teamID string) ([]*repository.Player, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*repository.Player
	for _, p := range f.players {
		if p.TeamID == teamID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePlayerRepo) FindAll(ctx context.Context) ([]*repository.Player, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]*repository.Player, 0, len(f.players))
	for _, p := range f.players {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakePlayerRepo) Count(ctx context.Context) (int, error) {
	return len(f.players), nil
}

func (f *fakePlayerRepo) Update(ctx context.Context, p *repository.Player) error {
	if f.err != nil {
		return f.err
	}
	if existing, ok := f.players[p.ID]; ok {
		existing.Firstname = p.Firstname
		existing.Lastname = p.Lastname
		existing.Birthdate = p.Birthdate
		existing.LicenceNumber = p.LicenceNumber
		existing.Position = p.Position
		existing.TeamID = p.TeamID
	}
	return nil
}

func (f *fakePlayerRepo) Move(ctx context.Context, playerID, teamID string) error {
	if f.err != nil {
		return f.err
	}
	if p, ok := f.players[playerID]; ok {
		p.TeamID = teamID
	}
	return nil
}

func (f *fakePlayerRepo) Delete(ctx context.Context, id string) error {
	if f.err != nil {
		return f.err
	}
	delete(f.players, id)
	return nil
}

// ============================================
// Planning fake
// ============================================

type fakePlanningRepo struct {
	sessions   map[string]*repository.PlanningSession
	attendance []*repository.AttendanceRecord
	err        error
	createErr  error
	compat     int
}

func newFakePlanningRepo() *fakePlanningRepo {
	return &fakePlanningRepo{sessions: make(map[string]*repository.PlanningSession)}
}

func (f *fakePlanningRepo) add(s *repository.PlanningSession) *repository.PlanningSession {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	f.sessions[s.ID] = s
	return s
}

func (f *fakePlanningRepo) Create(ctx context.Context, s *repository.PlanningSession) error {
	if f.createErr != nil {
		return f.createErr
	}
	if f.err != nil {
		return f.err
	}
	f.add(s)
	return nil
}

func (f *fakePlanningRepo) CreateCompat(ctx context.Context, s *repository.PlanningSession) error {
	f.compat++
	if f.err != nil {
		return f.err
	}
	f.add(s)
	return nil
}

func (f *fakePlanningRepo) FindByID(ctx context.Context, id string) (*repository.PlanningSession, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.sessions[id], nil
}

func (f *fakePlanningRepo) FindByTeamID(ctx context.Context, teamID string) ([]*repository.PlanningSession, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*repository.PlanningSession
	for _, s := range f.sessions {
		if s.TeamID == teamID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakePlanningRepo) FindAll(ctx context.Context) ([]*repository.PlanningSession, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]*repository.PlanningSession, 0, len(f.sessions))
	for _, s := range f.sessions {
		out = append(out, s)
	}
	return out, nil
}

func (f *fakePlanningRepo) Delete(ctx context.Context, id string) error {
	if f.err != nil {
		return f.err
	}
	delete(f.sessions, id)
	return nil
}

func (f *fakePlanningRepo) UpsertAttendance(ctx context.Context, r *repository.AttendanceRecord) error {
	if f.err != nil {
		return f.err
	}
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	f.attendance = append(f.attendance, r)
	return nil
}

func (f *fakePlanningRepo) FindAttendance(ctx context.Context, sessionID string, date time.Time) ([]*repository.AttendanceRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*repository.AttendanceRecord
	for _, r := range f.attendance {
		if r.SessionID == sessionID && r.SessionDate.Equal(date) {
			out = append(out, r)
		}
	}
	return out, nil
}

// ============================================
// Approval fake
// ============================================

type fakeApprovalRepo struct {
	requests map[string]*repository.ApprovalRequest
	err      error
	// beforeMark runs at the top of MarkDecided, for interleaving a
	// concurrent decision between the service's read and its update.
	beforeMark func()
}

func newFakeApprovalRepo() *fakeApprovalRepo {
	return &fakeApprovalRepo{requests: make(map[string]*repository.ApprovalRequest)}
}

func (f *fakeApprovalRepo) Create(ctx context.Context, r *repository.ApprovalRequest) error {
	if f.err != nil {
		return f.err
	}
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	r.CreatedAt = time.Now()
	f.requests[r.ID] = r
	return nil
}

func (f *fakeApprovalRepo) FindByID(ctx context.Context, id string) (*repository.ApprovalRequest, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.requests[id], nil
}

func (f *fakeApprovalRepo) FindPending(ctx context.Context) ([]*repository.ApprovalRequest, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*repository.ApprovalRequest
	for _, r := range f.requests {
		if r.Status == "pending" {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeApprovalRepo) FindByRequester(ctx context.Context, userID string) ([]*repository.ApprovalRequest, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*repository.ApprovalRequest
	for _, r := range f.requests {
		if r.RequestedBy == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeApprovalRepo) CountPending(ctx context.Context) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	count := 0
	for _, r := range f.requests {
		if r.Status == "pending" {
			count++
		}
	}
	return count, nil
}

func (f *fakeApprovalRepo) MarkDecided(ctx context.Context, id, status, decidedBy string) error {
	if f.beforeMark != nil {
		f.beforeMark()
	}
	if f.err != nil {
		return f.err
	}
	r, ok := f.requests[id]
	if !ok || r.Status != "pending" {
		return pgx.ErrNoRows
	}
	r.Status = status
	now := time.Now()
	r.DecidedAt = &now
	r.DecidedBy = &decidedBy
	return nil
}

// ============================================
// Shared fixture helpers
// ============================================

type fixture struct {
	profiles *fakeProfileRepo
	teams    *fakeTeamRepo
	players  *fakePlayerRepo
	planning *fakePlanningRepo
	approval *fakeApprovalRepo

	scope     ScopeService
	approvals ApprovalService
}

func newFixture() *fixture {
	f := &fixture{
		profiles: newFakeProfileRepo(),
		teams:    newFakeTeamRepo(),
		players:  newFakePlayerRepo(),
		planning: newFakePlanningRepo(),
		approval: newFakeApprovalRepo(),
	}
	f.scope = NewScopeService(f.profiles, f.teams)
	f.approvals = NewApprovalService(f.approval, f.players, f.planning, f.teams, f.profiles, f.scope, nil, nil)
	return f
}

func (f *fixture) addUser(role string, active bool) *repository.Profile {
	return f.profiles.add(&repository.Profile{
		Email:    uuid.New().String() + "@ascmontjoie.fr",
		FullName: "Test User",
		Role:     role,
		IsActive: active,
	})
}

func (f *fixture) addTeam(name string) *repository.Team {
	return f.teams.add(&repository.Team{Name: name, Category: "u13"})
}

func (f *fixture) assignCoach(teamID, coachID string) {
	f.teams.teams[teamID].CoachID = &coachID
}
