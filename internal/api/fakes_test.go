package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sort"
	"time"

	"hackhub/internal/storage"
)

// In-memory stores mirroring the Postgres implementations' contracts, so
// handler tests run without a database.

/* ------------------- profiles ------------------- */

type fakeProfileStore struct {
	profiles map[int]*storage.Profile
	hashes   map[string]string // email -> pass hash
	nextID   int
	calls    []string
}

func newFakeProfileStore() *fakeProfileStore {
	return &fakeProfileStore{
		profiles: map[int]*storage.Profile{},
		hashes:   map[string]string{},
		nextID:   1,
	}
}

func (s *fakeProfileStore) add(p *storage.Profile) *storage.Profile {
	if p.ID == 0 {
		p.ID = s.nextID
		s.nextID++
	} else if p.ID >= s.nextID {
		s.nextID = p.ID + 1
	}
	s.profiles[p.ID] = p
	return p
}

func (s *fakeProfileStore) Create(_ context.Context, p *storage.Profile, passHash string) (int, error) {
	s.calls = append(s.calls, "create")
	for _, existing := range s.profiles {
		if existing.Email == p.Email {
			return 0, storage.ErrAlreadyExists
		}
	}
	s.add(p)
	s.hashes[p.Email] = passHash
	return p.ID, nil
}

func (s *fakeProfileStore) Get(_ context.Context, id int) (*storage.Profile, error) {
	p, ok := s.profiles[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *fakeProfileStore) GetCredentials(_ context.Context, email string) (*storage.Profile, string, error) {
	for _, p := range s.profiles {
		if p.Email == email {
			cp := *p
			return &cp, s.hashes[email], nil
		}
	}
	return nil, "", storage.ErrNotFound
}

func (s *fakeProfileStore) List(_ context.Context, role string) ([]*storage.Profile, error) {
	var out []*storage.Profile
	for _, p := range s.profiles {
		if role == "" || role == "all" || p.Role == role {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *fakeProfileStore) Update(_ context.Context, p *storage.Profile) error {
	if _, ok := s.profiles[p.ID]; !ok {
		return storage.ErrNotFound
	}
	cp := *p
	s.profiles[p.ID] = &cp
	return nil
}

func (s *fakeProfileStore) Delete(_ context.Context, id int) error {
	if _, ok := s.profiles[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.profiles, id)
	return nil
}

func (s *fakeProfileStore) SetMentorStatus(_ context.Context, id int, status string, reason *string, approvedAt *time.Time) error {
	s.calls = append(s.calls, "set_mentor_status")
	p, ok := s.profiles[id]
	if !ok || p.Role != storage.RoleMentor {
		return storage.ErrNotFound
	}
	p.MentorStatus = &status
	p.RejectionReason = reason
	p.ApprovedAt = approvedAt
	return nil
}

func (s *fakeProfileStore) ListMentorApplications(_ context.Context, status string) ([]*storage.Profile, error) {
	var out []*storage.Profile
	for _, p := range s.profiles {
		if p.Role != storage.RoleMentor {
			continue
		}
		if status == "" || status == "all" || (p.MentorStatus != nil && *p.MentorStatus == status) {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *fakeProfileStore) ListApprovedMentors(_ context.Context) ([]*storage.Profile, error) {
	return s.ListMentorApplications(context.Background(), storage.MentorApproved)
}

/* ------------------- teams ------------------- */

type fakeTeamStore struct {
	teams   map[int]*storage.Team
	members []*storage.TeamMember
	nextID  int
}

func newFakeTeamStore() *fakeTeamStore {
	return &fakeTeamStore{teams: map[int]*storage.Team{}, nextID: 1}
}

func (s *fakeTeamStore) memberTeam(userID int) (int, bool) {
	for _, m := range s.members {
		if m.UserID == userID {
			return m.TeamID, true
		}
	}
	return 0, false
}

func (s *fakeTeamStore) memberCount(teamID int) int {
	n := 0
	for _, m := range s.members {
		if m.TeamID == teamID {
			n++
		}
	}
	return n
}

func (s *fakeTeamStore) Create(_ context.Context, t *storage.Team) error {
	if _, in := s.memberTeam(t.LeaderID); in {
		return storage.ErrAlreadyInTeam
	}
	t.ID = s.nextID
	s.nextID++
	t.JoinCode = "code-" + time.Now().Format("150405.000000000")
	t.CreatedAt = time.Now()
	s.teams[t.ID] = t
	s.members = append(s.members, &storage.TeamMember{
		ID: len(s.members) + 1, TeamID: t.ID, UserID: t.LeaderID,
	})
	return nil
}

func (s *fakeTeamStore) Get(_ context.Context, id int) (*storage.Team, error) {
	t, ok := s.teams[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (s *fakeTeamStore) GetByJoinCode(_ context.Context, code string) (*storage.Team, error) {
	for _, t := range s.teams {
		if t.JoinCode == code {
			cp := *t
			return &cp, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (s *fakeTeamStore) Lobby(_ context.Context) ([]*storage.Team, error) {
	var out []*storage.Team
	for _, t := range s.teams {
		if t.LookingForMembers && s.memberCount(t.ID) < t.MaxMembers {
			cp := *t
			cp.JoinCode = ""
			cp.MemberCount = s.memberCount(t.ID)
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *fakeTeamStore) TeamOfUser(_ context.Context, userID int) (*storage.Team, error) {
	id, ok := s.memberTeam(userID)
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *s.teams[id]
	return &cp, nil
}

func (s *fakeTeamStore) Members(_ context.Context, teamID int) ([]*storage.TeamMember, error) {
	var out []*storage.TeamMember
	for _, m := range s.members {
		if m.TeamID == teamID {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *fakeTeamStore) Join(_ context.Context, teamID, userID int) error {
	t, ok := s.teams[teamID]
	if !ok {
		return storage.ErrNotFound
	}
	if _, in := s.memberTeam(userID); in {
		return storage.ErrAlreadyInTeam
	}
	if s.memberCount(teamID) >= t.MaxMembers {
		return storage.ErrTeamFull
	}
	s.members = append(s.members, &storage.TeamMember{
		ID: len(s.members) + 1, TeamID: teamID, UserID: userID,
	})
	return nil
}

func (s *fakeTeamStore) RemoveMember(_ context.Context, teamID, userID int) error {
	for i, m := range s.members {
		if m.TeamID == teamID && m.UserID == userID {
			s.members = append(s.members[:i], s.members[i+1:]...)
			return nil
		}
	}
	return storage.ErrNotFound
}

func (s *fakeTeamStore) SetReady(_ context.Context, teamID int, ready bool) error {
	t, ok := s.teams[teamID]
	if !ok {
		return storage.ErrNotFound
	}
	t.IsReady = ready
	return nil
}

func (s *fakeTeamStore) UpdateSettings(_ context.Context, teamID int, name, description string, stack []string, looking bool) error {
	t, ok := s.teams[teamID]
	if !ok {
		return storage.ErrNotFound
	}
	t.Name, t.Description, t.TechStack, t.LookingForMembers = name, description, stack, looking
	return nil
}

func (s *fakeTeamStore) Delete(_ context.Context, id int) error {
	if _, ok := s.teams[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.teams, id)
	kept := s.members[:0]
	for _, m := range s.members {
		if m.TeamID != id {
			kept = append(kept, m)
		}
	}
	s.members = kept
	return nil
}

/* ------------------- benefits ------------------- */

type fakeBenefitStore struct {
	benefits    []*storage.Benefit
	assignments []*storage.Assignment
	profiles    []*storage.Profile // consulted by AutoAssign
	nextID      int
}

func newFakeBenefitStore() *fakeBenefitStore {
	return &fakeBenefitStore{nextID: 1}
}

func (s *fakeBenefitStore) addBenefit(vendorID int, code string) *storage.Benefit {
	b := &storage.Benefit{
		ID: s.nextID, VendorID: vendorID, CouponCode: code,
		IsActive: true, UserType: storage.RoleParticipant,
		CreatedAt: time.Now().Add(time.Duration(s.nextID) * time.Millisecond),
	}
	s.nextID++
	s.benefits = append(s.benefits, b)
	return b
}

func (s *fakeBenefitStore) Create(_ context.Context, b *storage.Benefit) error {
	b.ID = s.nextID
	s.nextID++
	b.CreatedAt = time.Now()
	s.benefits = append(s.benefits, b)
	return nil
}

func (s *fakeBenefitStore) BulkCreate(_ context.Context, bs []*storage.Benefit) (int, error) {
	for _, b := range bs {
		b.ID = s.nextID
		s.nextID++
		s.benefits = append(s.benefits, b)
	}
	return len(bs), nil
}

func (s *fakeBenefitStore) List(_ context.Context, vendorID int, unassignedOnly bool) ([]*storage.Benefit, error) {
	var out []*storage.Benefit
	for _, b := range s.benefits {
		if vendorID != 0 && b.VendorID != vendorID {
			continue
		}
		if unassignedOnly && (b.IsAssigned || !b.IsActive) {
			continue
		}
		cp := *b
		out = append(out, &cp)
	}
	return out, nil
}

func (s *fakeBenefitStore) Update(_ context.Context, b *storage.Benefit) error {
	for _, existing := range s.benefits {
		if existing.ID == b.ID {
			existing.CouponCode = b.CouponCode
			existing.IsActive = b.IsActive
			existing.ExpiryDate = b.ExpiryDate
			existing.UserType = b.UserType
			return nil
		}
	}
	return storage.ErrNotFound
}

func (s *fakeBenefitStore) Delete(_ context.Context, id int) error {
	for i, b := range s.benefits {
		if b.ID == id {
			s.benefits = append(s.benefits[:i], s.benefits[i+1:]...)
			return nil
		}
	}
	return storage.ErrNotFound
}

func (s *fakeBenefitStore) unassigned(vendorID int) []*storage.Benefit {
	var out []*storage.Benefit
	for _, b := range s.benefits {
		if b.VendorID == vendorID && !b.IsAssigned && b.IsActive {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func (s *fakeBenefitStore) Assign(_ context.Context, vendorID int, userIDs []int) (int, error) {
	free := s.unassigned(vendorID)
	if len(free) < len(userIDs) {
		return 0, storage.ErrNotEnoughBenefits
	}
	for i, userID := range userIDs {
		b := free[i]
		b.IsAssigned = true
		s.assignments = append(s.assignments, &storage.Assignment{
			ID: len(s.assignments) + 1, UserID: userID, BenefitID: b.ID,
			CouponCode: b.CouponCode,
		})
	}
	return len(userIDs), nil
}

func (s *fakeBenefitStore) hasVendorAssignment(userID, vendorID int) bool {
	for _, a := range s.assignments {
		for _, b := range s.benefits {
			if a.BenefitID == b.ID && a.UserID == userID && b.VendorID == vendorID {
				return true
			}
		}
	}
	return false
}

func (s *fakeBenefitStore) AutoAssign(ctx context.Context, vendorID int, role string) (int, error) {
	var eligible []int
	for _, p := range s.profiles {
		if p.Role == role && !s.hasVendorAssignment(p.ID, vendorID) {
			eligible = append(eligible, p.ID)
		}
	}
	sort.Ints(eligible)
	if len(eligible) == 0 {
		return 0, nil
	}
	return s.Assign(ctx, vendorID, eligible)
}

func (s *fakeBenefitStore) AssignmentsForUser(_ context.Context, userID int) ([]*storage.Assignment, error) {
	var out []*storage.Assignment
	for _, a := range s.assignments {
		if a.UserID == userID {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *fakeBenefitStore) Redeem(_ context.Context, assignmentID, userID int) error {
	for _, a := range s.assignments {
		if a.ID == assignmentID && a.UserID == userID {
			if !a.IsRedeemed {
				a.IsRedeemed = true
				now := time.Now()
				a.RedeemedAt = &now
			}
			return nil
		}
	}
	return storage.ErrNotFound
}

/* ------------------- settings / audit ------------------- */

type fakeSettingsStore struct {
	values map[string]json.RawMessage
}

func newFakeSettingsStore() *fakeSettingsStore {
	return &fakeSettingsStore{values: map[string]json.RawMessage{}}
}

func (s *fakeSettingsStore) Get(_ context.Context, key string) (json.RawMessage, error) {
	v, ok := s.values[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return v, nil
}

func (s *fakeSettingsStore) Put(_ context.Context, key string, value json.RawMessage) error {
	s.values[key] = value
	return nil
}

func (s *fakeSettingsStore) All(_ context.Context) ([]*storage.Setting, error) {
	var out []*storage.Setting
	for k, v := range s.values {
		out = append(out, &storage.Setting{Key: k, Value: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

type fakeNewsStore struct {
	posts  []*storage.News
	nextID int
}

func (s *fakeNewsStore) Create(_ context.Context, n *storage.News) error {
	s.nextID++
	n.ID = s.nextID
	n.CreatedAt = time.Now()
	n.UpdatedAt = n.CreatedAt
	s.posts = append(s.posts, n)
	return nil
}

func (s *fakeNewsStore) Get(_ context.Context, id int) (*storage.News, error) {
	for _, n := range s.posts {
		if n.ID == id {
			cp := *n
			return &cp, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (s *fakeNewsStore) List(_ context.Context, publishedOnly bool) ([]*storage.News, error) {
	out := []*storage.News{}
	for _, n := range s.posts {
		if publishedOnly && !n.IsPublished {
			continue
		}
		cp := *n
		out = append(out, &cp)
	}
	return out, nil
}

func (s *fakeNewsStore) Update(_ context.Context, n *storage.News) error {
	for _, existing := range s.posts {
		if existing.ID == n.ID {
			existing.Title, existing.Body = n.Title, n.Body
			existing.CoverImage, existing.IsPublished = n.CoverImage, n.IsPublished
			existing.UpdatedAt = time.Now()
			return nil
		}
	}
	return storage.ErrNotFound
}

func (s *fakeNewsStore) Delete(_ context.Context, id int) error {
	for i, n := range s.posts {
		if n.ID == id {
			s.posts = append(s.posts[:i], s.posts[i+1:]...)
			return nil
		}
	}
	return storage.ErrNotFound
}

type fakeLegalStore struct {
	docs   []*storage.LegalDocument
	nextID int
}

func (s *fakeLegalStore) Create(_ context.Context, d *storage.LegalDocument) error {
	s.nextID++
	d.ID = s.nextID
	d.CreatedAt = time.Now()
	s.docs = append(s.docs, d)
	return nil
}

func (s *fakeLegalStore) List(_ context.Context) ([]*storage.LegalDocument, error) {
	out := []*storage.LegalDocument{}
	for _, d := range s.docs {
		cp := *d
		out = append(out, &cp)
	}
	return out, nil
}

func (s *fakeLegalStore) LatestPublished(_ context.Context, slug string) (*storage.LegalDocument, error) {
	var latest *storage.LegalDocument
	for _, d := range s.docs {
		if d.Slug != slug || !d.IsPublished {
			continue
		}
		if latest == nil || (d.PublishedAt != nil && latest.PublishedAt != nil && d.PublishedAt.After(*latest.PublishedAt)) {
			latest = d
		}
	}
	if latest == nil {
		return nil, storage.ErrNotFound
	}
	cp := *latest
	return &cp, nil
}

func (s *fakeLegalStore) Update(_ context.Context, d *storage.LegalDocument) error {
	for _, existing := range s.docs {
		if existing.ID == d.ID {
			existing.Slug, existing.Title = d.Slug, d.Title
			existing.Content, existing.Version = d.Content, d.Version
			return nil
		}
	}
	return storage.ErrNotFound
}

func (s *fakeLegalStore) Publish(_ context.Context, id int) error {
	for _, d := range s.docs {
		if d.ID == id {
			now := time.Now()
			d.IsPublished = true
			d.PublishedAt = &now
			return nil
		}
	}
	return storage.ErrNotFound
}

func (s *fakeLegalStore) Delete(_ context.Context, id int) error {
	for i, d := range s.docs {
		if d.ID == id {
			s.docs = append(s.docs[:i], s.docs[i+1:]...)
			return nil
		}
	}
	return storage.ErrNotFound
}

type fakeContactStore struct {
	messages []*storage.ContactMessage
}

func (s *fakeContactStore) Create(_ context.Context, m *storage.ContactMessage) error {
	m.ID = len(s.messages) + 1
	m.CreatedAt = time.Now()
	s.messages = append(s.messages, m)
	return nil
}

func (s *fakeContactStore) List(_ context.Context) ([]*storage.ContactMessage, error) {
	out := []*storage.ContactMessage{}
	for _, m := range s.messages {
		cp := *m
		out = append(out, &cp)
	}
	return out, nil
}

func (s *fakeContactStore) Delete(_ context.Context, id int) error {
	for i, m := range s.messages {
		if m.ID == id {
			s.messages = append(s.messages[:i], s.messages[i+1:]...)
			return nil
		}
	}
	return storage.ErrNotFound
}

type fakeEventStore struct {
	events  []*storage.Event
	gallery []*storage.GalleryImage
	nextID  int

	failAddImage bool
}

func (s *fakeEventStore) Create(_ context.Context, e *storage.Event) error {
	s.nextID++
	e.ID = s.nextID
	e.CreatedAt = time.Now()
	s.events = append(s.events, e)
	return nil
}

func (s *fakeEventStore) Get(_ context.Context, id int) (*storage.Event, error) {
	for _, e := range s.events {
		if e.ID == id {
			cp := *e
			return &cp, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (s *fakeEventStore) List(_ context.Context, publishedOnly bool) ([]*storage.Event, error) {
	out := []*storage.Event{}
	for _, e := range s.events {
		if publishedOnly && !e.IsPublished {
			continue
		}
		cp := *e
		out = append(out, &cp)
	}
	return out, nil
}

func (s *fakeEventStore) Update(_ context.Context, e *storage.Event) error {
	for _, existing := range s.events {
		if existing.ID == e.ID {
			*existing = *e
			return nil
		}
	}
	return storage.ErrNotFound
}

func (s *fakeEventStore) Delete(_ context.Context, id int) error {
	for i, e := range s.events {
		if e.ID == id {
			s.events = append(s.events[:i], s.events[i+1:]...)
			return nil
		}
	}
	return storage.ErrNotFound
}

func (s *fakeEventStore) AddImage(_ context.Context, img *storage.GalleryImage) error {
	if s.failAddImage {
		return errors.New("insert failed")
	}
	img.ID = len(s.gallery) + 1
	img.CreatedAt = time.Now()
	s.gallery = append(s.gallery, img)
	return nil
}

func (s *fakeEventStore) Gallery(_ context.Context, eventID int) ([]*storage.GalleryImage, error) {
	out := []*storage.GalleryImage{}
	for _, img := range s.gallery {
		if img.EventID == eventID {
			cp := *img
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *fakeEventStore) RemoveImage(_ context.Context, id int) (*storage.GalleryImage, error) {
	for i, img := range s.gallery {
		if img.ID == id {
			s.gallery = append(s.gallery[:i], s.gallery[i+1:]...)
			return img, nil
		}
	}
	return nil, storage.ErrNotFound
}

// fakeObjectStore records keys to verify upload compensation.
type fakeObjectStore struct {
	objects map[string]bool
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{objects: map[string]bool{}}
}

func (s *fakeObjectStore) Put(_ context.Context, key string, _ io.Reader, _ int64, _ string) (string, error) {
	s.objects[key] = true
	return "http://cdn.local/" + key, nil
}

func (s *fakeObjectStore) Remove(_ context.Context, key string) error {
	delete(s.objects, key)
	return nil
}

type fakeThemeStore struct {
	themes []*storage.Theme
	nextID int
}

func (s *fakeThemeStore) Create(_ context.Context, t *storage.Theme) error {
	s.nextID++
	t.ID = s.nextID
	s.themes = append(s.themes, t)
	return nil
}

func (s *fakeThemeStore) GetAll(_ context.Context) ([]*storage.Theme, error) {
	return append([]*storage.Theme{}, s.themes...), nil
}

func (s *fakeThemeStore) Active(_ context.Context) (*storage.Theme, error) {
	for _, t := range s.themes {
		if t.IsActive {
			cp := *t
			return &cp, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (s *fakeThemeStore) Update(_ context.Context, t *storage.Theme) error {
	for _, existing := range s.themes {
		if existing.ID == t.ID {
			existing.Name, existing.Colors = t.Name, t.Colors
			return nil
		}
	}
	return storage.ErrNotFound
}

func (s *fakeThemeStore) Activate(_ context.Context, id int) error {
	found := false
	for _, t := range s.themes {
		if t.ID == id {
			found = true
		}
	}
	if !found {
		return storage.ErrNotFound
	}
	for _, t := range s.themes {
		t.IsActive = t.ID == id
	}
	return nil
}

func (s *fakeThemeStore) Delete(_ context.Context, id int) error {
	for i, t := range s.themes {
		if t.ID == id {
			s.themes = append(s.themes[:i], s.themes[i+1:]...)
			return nil
		}
	}
	return storage.ErrNotFound
}

type fakeAuditStore struct {
	entries []string
}

func (s *fakeAuditStore) Record(_ context.Context, _ *int, action, _ string) {
	s.entries = append(s.entries, action)
}

func (s *fakeAuditStore) List(_ context.Context, _ int) ([]*storage.LogEntry, error) {
	out := []*storage.LogEntry{}
	for i, a := range s.entries {
		out = append(out, &storage.LogEntry{ID: int64(i + 1), Action: a})
	}
	return out, nil
}
