package application

import (
	"database/sql"
	"errors"
	"math"
	"sort"
	"testing"

	"featherrank/internal/models"
	"featherrank/internal/repository"
)

type fakeMatches struct {
	nextID  int
	matches map[int]*models.Match
	sigs    map[int]map[string]models.Signature
}

func newFakeMatches() *fakeMatches {
	return &fakeMatches{
		nextID:  1,
		matches: make(map[int]*models.Match),
		sigs:    make(map[int]map[string]models.Signature),
	}
}

func (f *fakeMatches) CreatePending(match *models.Match) (int, error) {
	id := f.nextID
	f.nextID++
	m := *match
	m.ID = id
	m.Status = models.StatusPending
	f.matches[id] = &m
	return id, nil
}

func (f *fakeMatches) Get(id int) (*models.Match, error) {
	m, ok := f.matches[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *m
	return &cp, nil
}

func (f *fakeMatches) UpsertSignature(sig models.Signature) error {
	if f.sigs[sig.MatchID] == nil {
		f.sigs[sig.MatchID] = make(map[string]models.Signature)
	}
	f.sigs[sig.MatchID][sig.UserID] = sig
	return nil
}

func (f *fakeMatches) Signatures(matchID int) ([]models.Signature, error) {
	var out []models.Signature
	for _, s := range f.sigs[matchID] {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (f *fakeMatches) SetStatus(matchID int, from, to models.MatchStatus) (bool, error) {
	m, ok := f.matches[matchID]
	if !ok || m.Status != from {
		return false, nil
	}
	m.Status = to
	return true, nil
}

func (f *fakeMatches) FinalizeScores(matchID int, ptsA, ptsB int, winner models.Team) error {
	m, ok := f.matches[matchID]
	if !ok || m.Status != models.StatusPending {
		return nil
	}
	m.PointsA, m.PointsB, m.Winner = ptsA, ptsB, winner
	return nil
}

func (f *fakeMatches) ListPendingForUser(guildID, userID string) ([]models.Match, error) {
	var out []models.Match
	for _, m := range f.matches {
		if m.GuildID == guildID && m.Status == models.StatusPending && m.HasParticipant(userID) {
			out = append(out, *m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (f *fakeMatches) LatestPendingForUser(guildID, userID string) (*models.Match, error) {
	pending, _ := f.ListPendingForUser(guildID, userID)
	if len(pending) == 0 {
		return nil, sql.ErrNoRows
	}
	return &pending[0], nil
}

func (f *fakeMatches) RecentForUser(userID string, limit int) ([]models.Match, error) {
	var out []models.Match
	for _, m := range f.matches {
		if m.Status == models.StatusVerified && m.HasParticipant(userID) && len(out) < limit {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (f *fakeMatches) CountByStatus(guildID string) (map[models.MatchStatus]int, error) {
	counts := make(map[models.MatchStatus]int)
	for _, m := range f.matches {
		if m.GuildID == guildID {
			counts[m.Status]++
		}
	}
	return counts, nil
}

type fakePlayers struct {
	players map[string]*models.Player
	updates int
}

func newFakePlayers() *fakePlayers {
	return &fakePlayers{players: make(map[string]*models.Player)}
}

func (f *fakePlayers) GetOrCreate(id, username string, baseRating float64) (*models.Player, error) {
	if p, ok := f.players[id]; ok {
		p.Username = username
		cp := *p
		return &cp, nil
	}
	p := &models.Player{ID: id, Username: username, Rating: baseRating}
	f.players[id] = p
	cp := *p
	return &cp, nil
}

func (f *fakePlayers) Get(id string) (*models.Player, error) {
	p, ok := f.players[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *p
	return &cp, nil
}

func (f *fakePlayers) UpdateRating(id string, rating float64, won bool) error {
	p, ok := f.players[id]
	if !ok {
		return sql.ErrNoRows
	}
	p.Rating = rating
	if won {
		p.Wins++
	} else {
		p.Losses++
	}
	f.updates++
	return nil
}

func (f *fakePlayers) Rename(id, username string) error { return nil }

func (f *fakePlayers) Top(limit int) ([]models.Player, error) {
	all, _ := f.All()
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (f *fakePlayers) All() ([]models.Player, error) {
	var out []models.Player
	for _, p := range f.players {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Rating > out[j].Rating })
	return out, nil
}

type fakeVerif struct {
	terms    map[string]models.TermsAcceptance
	settings map[string]string
}

func newFakeVerif() *fakeVerif {
	return &fakeVerif{
		terms:    make(map[string]models.TermsAcceptance),
		settings: make(map[string]string),
	}
}

func (f *fakeVerif) RecordMessage(msg models.VerificationMessage) error { return nil }
func (f *fakeVerif) GetMessage(messageID string) (*models.VerificationMessage, error) {
	return nil, sql.ErrNoRows
}
func (f *fakeVerif) DeleteMessagesForMatch(matchID int) error { return nil }

func (f *fakeVerif) AcceptTerms(acc models.TermsAcceptance) error {
	f.terms[acc.UserID] = acc
	return nil
}

func (f *fakeVerif) GetTerms(userID string) (*models.TermsAcceptance, error) {
	a, ok := f.terms[userID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &a, nil
}

func (f *fakeVerif) GetSetting(key string) (string, error) { return f.settings[key], nil }
func (f *fakeVerif) SetSetting(key, value string) error    { f.settings[key] = value; return nil }

type nopLogger struct{}

func (nopLogger) Error(format string, v ...interface{}) {}
func (nopLogger) Warn(format string, v ...interface{})  {}
func (nopLogger) Info(format string, v ...interface{})  {}
func (nopLogger) Debug(format string, v ...interface{}) {}

func newTestService(guestID string) (*MatchServiceImpl, *fakeMatches, *fakePlayers) {
	fm := newFakeMatches()
	fp := newFakePlayers()
	repos := &repository.Repository{Match: fm, Player: fp, Verification: newFakeVerif()}
	settings := Settings{KFactor: 32, BaseRating: 1200, WinBy: 2, GuestUserID: guestID}
	return NewMatchServiceImpl(repos, settings, nopLogger{}), fm, fp
}

func singlesRequest(reporter, opponent string) SubmitRequest {
	return SubmitRequest{
		GuildID:      "g1",
		Mode:         models.ModeSingles,
		TeamA:        []string{reporter},
		TeamB:        []string{opponent},
		Sets:         []models.SetScore{{A: 21, B: 15}, {A: 21, B: 18}},
		Reporter:     reporter,
		TargetPoints: 21,
	}
}

func TestSubmitMatchRejectsBadScores(t *testing.T) {
	svc, _, _ := newTestService("")
	req := singlesRequest("alice", "bob")
	req.Sets = []models.SetScore{{A: 21, B: 20}, {A: 21, B: 15}}
	if _, err := svc.SubmitMatch(req); err == nil {
		t.Fatal("expected an invalid set error")
	}

	req.Sets = []models.SetScore{{A: 21, B: 15}, {A: 15, B: 21}}
	if _, err := svc.SubmitMatch(req); err == nil {
		t.Fatal("expected an indeterminate match error")
	}
}

func TestSubmitMatchRejectsOverlappingTeams(t *testing.T) {
	svc, _, _ := newTestService("")
	req := singlesRequest("alice", "alice")
	if _, err := svc.SubmitMatch(req); !errors.Is(err, models.ErrTeamOverlap) {
		t.Fatalf("err = %v, want ErrTeamOverlap", err)
	}
}

func TestSinglesVerifyFlow(t *testing.T) {
	svc, fm, fp := newTestService("")
	id, err := svc.SubmitMatch(singlesRequest("alice", "bob"))
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	status, err := svc.SignMatch(id, "bob", models.DecisionApprove, "Bob")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if status != models.StatusVerified {
		t.Fatalf("status = %s, want verified", status)
	}

	m := fm.matches[id]
	if m.Winner != models.TeamA || m.PointsA != 42 || m.PointsB != 33 {
		t.Errorf("finalized as winner=%s %d-%d", m.Winner, m.PointsA, m.PointsB)
	}

	alice, _ := fp.Get("alice")
	bob, _ := fp.Get("bob")
	if alice.Rating <= 1200 || bob.Rating >= 1200 {
		t.Errorf("ratings did not move toward the winner: %f vs %f", alice.Rating, bob.Rating)
	}
	if alice.Wins != 1 || bob.Losses != 1 {
		t.Errorf("win-loss records wrong: %+v %+v", alice, bob)
	}
	// Zero-sum.
	if math.Abs((alice.Rating-1200)+(bob.Rating-1200)) > 1e-9 {
		t.Error("rating exchange is not zero-sum")
	}
}

func TestSelfVerificationForbidden(t *testing.T) {
	svc, _, _ := newTestService("")
	id, _ := svc.SubmitMatch(singlesRequest("alice", "bob"))

	if _, err := svc.SignMatch(id, "alice", models.DecisionApprove, "Alice"); !errors.Is(err, ErrSelfVerification) {
		t.Fatalf("err = %v, want ErrSelfVerification", err)
	}
}

func TestNonParticipantForbidden(t *testing.T) {
	svc, _, _ := newTestService("")
	id, _ := svc.SubmitMatch(singlesRequest("alice", "bob"))

	if _, err := svc.SignMatch(id, "mallory", models.DecisionApprove, "Mallory"); !errors.Is(err, ErrNotAParticipant) {
		t.Fatalf("err = %v, want ErrNotAParticipant", err)
	}
}

func TestSignUnknownMatch(t *testing.T) {
	svc, _, _ := newTestService("")
	if _, err := svc.SignMatch(999, "bob", models.DecisionApprove, "Bob"); !errors.Is(err, ErrMatchNotFound) {
		t.Fatalf("err = %v, want ErrMatchNotFound", err)
	}
}

func TestRejectionShortCircuits(t *testing.T) {
	svc, _, fp := newTestService("")
	req := SubmitRequest{
		GuildID:      "g1",
		Mode:         models.ModeDoubles,
		TeamA:        []string{"a1", "a2"},
		TeamB:        []string{"b1", "b2"},
		Sets:         []models.SetScore{{A: 21, B: 10}, {A: 21, B: 12}},
		Reporter:     "a1",
		TargetPoints: 21,
	}
	id, err := svc.SubmitMatch(req)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	if _, err := svc.SignMatch(id, "a2", models.DecisionApprove, ""); err != nil {
		t.Fatalf("sign a2: %v", err)
	}
	status, err := svc.SignMatch(id, "b1", models.DecisionReject, "")
	if err != nil {
		t.Fatalf("sign b1: %v", err)
	}
	if status != models.StatusRejected {
		t.Fatalf("status = %s, want rejected", status)
	}

	// A later approval cannot resurrect it.
	status, err = svc.SignMatch(id, "b2", models.DecisionApprove, "")
	if err != nil {
		t.Fatalf("late sign: %v", err)
	}
	if status != models.StatusRejected {
		t.Fatalf("late sign flipped status to %s", status)
	}
	if fp.updates != 0 {
		t.Errorf("rejected match moved ratings %d times", fp.updates)
	}
}

func TestDoublesNeedsAllVerifiers(t *testing.T) {
	svc, _, _ := newTestService("")
	req := SubmitRequest{
		GuildID:      "g1",
		Mode:         models.ModeDoubles,
		TeamA:        []string{"a1", "a2"},
		TeamB:        []string{"b1", "b2"},
		Sets:         []models.SetScore{{A: 21, B: 1}, {A: 21, B: 2}},
		Reporter:     "a1",
		TargetPoints: 21,
	}
	id, _ := svc.SubmitMatch(req)

	for _, signer := range []string{"a2", "b1"} {
		status, err := svc.SignMatch(id, signer, models.DecisionApprove, "")
		if err != nil {
			t.Fatalf("sign %s: %v", signer, err)
		}
		if status != models.StatusPending {
			t.Fatalf("after %s status = %s, want still pending", signer, status)
		}
	}

	status, err := svc.SignMatch(id, "b2", models.DecisionApprove, "")
	if err != nil {
		t.Fatalf("final sign: %v", err)
	}
	if status != models.StatusVerified {
		t.Fatalf("status = %s, want verified", status)
	}
}

// Lopsided doubles: share 42/45 against an even expectation moves every
// member of each pair by the same full team delta.
func TestDoublesPointShareDelta(t *testing.T) {
	svc, _, fp := newTestService("")
	req := SubmitRequest{
		GuildID:      "g1",
		Mode:         models.ModeDoubles,
		TeamA:        []string{"a1", "a2"},
		TeamB:        []string{"b1", "b2"},
		Sets:         []models.SetScore{{A: 21, B: 1}, {A: 21, B: 2}},
		Reporter:     "a1",
		TargetPoints: 21,
	}
	id, _ := svc.SubmitMatch(req)
	for _, signer := range []string{"a2", "b1", "b2"} {
		if _, err := svc.SignMatch(id, signer, models.DecisionApprove, ""); err != nil {
			t.Fatalf("sign %s: %v", signer, err)
		}
	}

	wantDelta := 32 * (42.0/45.0 - 0.5)
	for _, id := range []string{"a1", "a2"} {
		p, _ := fp.Get(id)
		if math.Abs(p.Rating-(1200+wantDelta)) > 1e-9 {
			t.Errorf("%s rating = %f, want %f", id, p.Rating, 1200+wantDelta)
		}
	}
	for _, id := range []string{"b1", "b2"} {
		p, _ := fp.Get(id)
		if math.Abs(p.Rating-(1200-wantDelta)) > 1e-9 {
			t.Errorf("%s rating = %f, want %f", id, p.Rating, 1200-wantDelta)
		}
	}
}

func TestFinalizeIdempotent(t *testing.T) {
	svc, _, fp := newTestService("")
	id, _ := svc.SubmitMatch(singlesRequest("alice", "bob"))

	if _, err := svc.SignMatch(id, "bob", models.DecisionApprove, ""); err != nil {
		t.Fatalf("first sign: %v", err)
	}
	updatesAfterFirst := fp.updates

	// Duplicate delivery of the same approval must not touch ratings again.
	status, err := svc.SignMatch(id, "bob", models.DecisionApprove, "")
	if err != nil {
		t.Fatalf("duplicate sign: %v", err)
	}
	if status != models.StatusVerified {
		t.Fatalf("status = %s, want verified", status)
	}
	if fp.updates != updatesAfterFirst {
		t.Errorf("duplicate signature moved ratings again (%d -> %d)", updatesAfterFirst, fp.updates)
	}
}

func TestLastWriteWinsSignature(t *testing.T) {
	svc, fm, _ := newTestService("")
	req := SubmitRequest{
		GuildID:      "g1",
		Mode:         models.ModeDoubles,
		TeamA:        []string{"a1", "a2"},
		TeamB:        []string{"b1", "b2"},
		Sets:         []models.SetScore{{A: 21, B: 10}, {A: 21, B: 12}},
		Reporter:     "a1",
		TargetPoints: 21,
	}
	id, _ := svc.SubmitMatch(req)

	if _, err := svc.SignMatch(id, "b1", models.DecisionApprove, ""); err != nil {
		t.Fatal(err)
	}
	// Changed their mind while the match is still pending.
	status, err := svc.SignMatch(id, "b1", models.DecisionReject, "")
	if err != nil {
		t.Fatal(err)
	}
	if status != models.StatusRejected {
		t.Fatalf("status = %s, want rejected after changed mind", status)
	}
	if len(fm.sigs[id]) != 1 {
		t.Errorf("signature rows = %d, want 1", len(fm.sigs[id]))
	}
}

func TestGuestExcludedFromQuorumAndRating(t *testing.T) {
	svc, fm, fp := newTestService("guest")
	req := SubmitRequest{
		GuildID:      "g1",
		Mode:         models.ModeDoubles,
		TeamA:        []string{"a1", "a2"},
		TeamB:        []string{"b1", "guest"},
		Sets:         []models.SetScore{{A: 21, B: 10}, {A: 21, B: 12}},
		Reporter:     "a1",
		TargetPoints: 21,
	}
	id, _ := svc.SubmitMatch(req)

	if _, ok := fp.players["guest"]; ok {
		t.Error("guest placeholder must not get a player row")
	}

	// Only a2 and b1 count; the guest's approval is never needed.
	if _, err := svc.SignMatch(id, "a2", models.DecisionApprove, ""); err != nil {
		t.Fatal(err)
	}
	status, err := svc.SignMatch(id, "b1", models.DecisionApprove, "")
	if err != nil {
		t.Fatal(err)
	}
	if status != models.StatusVerified {
		t.Fatalf("status = %s, want verified without guest approval", status)
	}

	if fm.matches[id].Winner != models.TeamA {
		t.Errorf("winner = %s", fm.matches[id].Winner)
	}
	// b1 carries the full team delta alone; the team exchange stays zero-sum.
	a1, _ := fp.Get("a1")
	b1, _ := fp.Get("b1")
	if math.Abs((a1.Rating-1200)+(b1.Rating-1200)) > 1e-9 {
		t.Error("guest match exchange is not zero-sum over rated players")
	}
}

func TestGuestOnlyOpponentAutoFinalizes(t *testing.T) {
	svc, fm, _ := newTestService("guest")
	req := singlesRequest("alice", "guest")
	id, err := svc.SubmitMatch(req)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if fm.matches[id].Status != models.StatusVerified {
		t.Fatalf("status = %s, want auto-verified with no verifiers left", fm.matches[id].Status)
	}
}

func TestLatestPendingForUser(t *testing.T) {
	svc, _, _ := newTestService("")
	if _, err := svc.LatestPendingForUser("g1", "bob"); !errors.Is(err, ErrNoPendingMatches) {
		t.Fatalf("err = %v, want ErrNoPendingMatches", err)
	}

	first, _ := svc.SubmitMatch(singlesRequest("alice", "bob"))
	second, _ := svc.SubmitMatch(singlesRequest("carol", "bob"))

	latest, err := svc.LatestPendingForUser("g1", "bob")
	if err != nil {
		t.Fatal(err)
	}
	if latest.ID != second {
		t.Errorf("latest pending = %d, want %d (not %d)", latest.ID, second, first)
	}
}

func TestTermsGate(t *testing.T) {
	svc, _, _ := newTestService("")
	ok, err := svc.HasAcceptedTerms("alice")
	if err != nil || ok {
		t.Fatalf("fresh user accepted = %v, err = %v", ok, err)
	}
	if err := svc.AcceptTerms("alice", "Alice L."); err != nil {
		t.Fatal(err)
	}
	ok, err = svc.HasAcceptedTerms("alice")
	if err != nil || !ok {
		t.Fatalf("after signing accepted = %v, err = %v", ok, err)
	}
}
