package application

import (
	"database/sql"
	"errors"
	"fmt"

	"featherrank/internal/mmr"
	"featherrank/internal/models"
	"featherrank/internal/repository"
	"featherrank/internal/rules"
)

type MatchServiceImpl struct {
	matches  repository.Match
	players  repository.Player
	verif    repository.Verification
	notifier Notifier
	settings Settings
	locks    *guildLocks
	logger   Logger
}

func NewMatchServiceImpl(repos *repository.Repository, settings Settings, logger Logger) *MatchServiceImpl {
	return &MatchServiceImpl{
		matches:  repos.Match,
		players:  repos.Player,
		verif:    repos.Verification,
		settings: settings,
		locks:    newGuildLocks(),
		logger:   logger,
	}
}

// AttachNotifier wires the delivery layer in after both sides exist.
func (s *MatchServiceImpl) AttachNotifier(n Notifier) {
	s.notifier = n
}

// SubmitMatch validates a reported result, persists it as pending and prompts
// the other participants to verify. Validation is fail-fast: nothing is
// stored unless the rosters and every counted set are acceptable.
func (s *MatchServiceImpl) SubmitMatch(req SubmitRequest) (int, error) {
	match, err := models.NewMatch(req.GuildID, req.Mode, req.TeamA, req.TeamB, req.Sets, req.Reporter, req.TargetPoints)
	if err != nil {
		return 0, err
	}

	cap := rules.DeriveCap(req.TargetPoints)
	if _, _, _, _, _, err := rules.MatchWinner(req.Sets, req.TargetPoints, s.settings.WinBy, cap); err != nil {
		return 0, err
	}

	for _, id := range s.ratedRoster(match.Participants()) {
		name := req.Names[id]
		if name == "" {
			name = id
		}
		if _, err := s.players.GetOrCreate(id, name, s.settings.BaseRating); err != nil {
			return 0, fmt.Errorf("failed to register participant %s: %w", id, err)
		}
	}

	matchID, err := s.matches.CreatePending(match)
	if err != nil {
		return 0, err
	}
	match.ID = matchID

	s.logger.Info("match %d submitted in guild %s by %s (%s)", matchID, req.GuildID, req.Reporter, req.Mode)

	if s.notifier != nil {
		go s.notifier.NotifyPendingMatch(match)
	}

	// A report whose only opponents are guests has nobody left to ask.
	if len(s.VerifiersFor(match)) == 0 {
		lock := s.locks.Get(match.GuildID)
		lock.Lock()
		defer lock.Unlock()
		if _, err := s.tryFinalize(match); err != nil {
			s.logger.Error("auto-finalize of match %d failed: %v", matchID, err)
		}
	}

	return matchID, nil
}

// SignMatch records one participant's approve/reject decision and finalizes
// the match when the verdict is in. Signing an already resolved match is a
// soft no-op that reports the current status. A participant who signs twice
// keeps only the latest decision.
func (s *MatchServiceImpl) SignMatch(matchID int, userID string, decision models.Decision, signedName string) (models.MatchStatus, error) {
	match, err := s.Match(matchID)
	if err != nil {
		return "", err
	}

	lock := s.locks.Get(match.GuildID)
	lock.Lock()
	defer lock.Unlock()

	// Re-read under the lock: a concurrent signer may have resolved it.
	match, err = s.Match(matchID)
	if err != nil {
		return "", err
	}
	if match.Terminal() {
		return match.Status, nil
	}
	if !match.HasParticipant(userID) {
		return "", ErrNotAParticipant
	}
	if userID == match.Reporter {
		return "", ErrSelfVerification
	}

	err = s.matches.UpsertSignature(models.Signature{
		MatchID:    matchID,
		UserID:     userID,
		Decision:   decision,
		SignedName: signedName,
	})
	if err != nil {
		return "", err
	}

	return s.tryFinalize(match)
}

func (s *MatchServiceImpl) Match(id int) (*models.Match, error) {
	match, err := s.matches.Get(id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	return match, nil
}

func (s *MatchServiceImpl) PendingForUser(guildID, userID string) ([]models.Match, error) {
	return s.matches.ListPendingForUser(guildID, userID)
}

func (s *MatchServiceImpl) LatestPendingForUser(guildID, userID string) (*models.Match, error) {
	match, err := s.matches.LatestPendingForUser(guildID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoPendingMatches
		}
		return nil, err
	}
	return match, nil
}

// VerifiersFor lists the participants whose word decides the match: everyone
// except the reporter and the guest placeholder.
func (s *MatchServiceImpl) VerifiersFor(match *models.Match) []string {
	var out []string
	for _, id := range match.Participants() {
		if id == match.Reporter || id == s.settings.GuestUserID {
			continue
		}
		out = append(out, id)
	}
	return out
}

// RecordVerificationPrompt remembers which DM prompt belongs to which match
// and verifier, so a reaction on it can be routed back.
func (s *MatchServiceImpl) RecordVerificationPrompt(msg models.VerificationMessage) error {
	return s.verif.RecordMessage(msg)
}

func (s *MatchServiceImpl) VerificationPrompt(messageID string) (*models.VerificationMessage, error) {
	msg, err := s.verif.GetMessage(messageID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return msg, nil
}

func (s *MatchServiceImpl) AcceptTerms(userID, signedName string) error {
	return s.verif.AcceptTerms(models.TermsAcceptance{
		UserID:     userID,
		Version:    termsVersion,
		SignedName: signedName,
	})
}

func (s *MatchServiceImpl) HasAcceptedTerms(userID string) (bool, error) {
	_, err := s.verif.GetTerms(userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// tryFinalize re-evaluates the verdict for a pending match. Caller must hold
// the guild lock. Any rejection loses immediately; otherwise singles need one
// approval and doubles need every verifier's approval. On quorum the stored
// sets are re-scored and the points-share rating update is applied, exactly
// once: the conditional status flip is the commit point, and ratings only
// move for the process that wins it.
func (s *MatchServiceImpl) tryFinalize(match *models.Match) (models.MatchStatus, error) {
	sigs, err := s.matches.Signatures(match.ID)
	if err != nil {
		return "", err
	}

	decisions := make(map[string]models.Decision, len(sigs))
	for _, sig := range sigs {
		decisions[sig.UserID] = sig.Decision
	}

	verifiers := s.VerifiersFor(match)
	for _, id := range verifiers {
		if decisions[id] == models.DecisionReject {
			return s.reject(match)
		}
	}

	approvals := 0
	for _, id := range verifiers {
		if decisions[id] == models.DecisionApprove {
			approvals++
		}
	}
	quorum := len(verifiers) == 0 ||
		(match.Mode == models.ModeSingles && approvals >= 1) ||
		(match.Mode == models.ModeDoubles && approvals == len(verifiers))
	if !quorum {
		return models.StatusPending, nil
	}

	return s.verify(match)
}

func (s *MatchServiceImpl) reject(match *models.Match) (models.MatchStatus, error) {
	moved, err := s.matches.SetStatus(match.ID, models.StatusPending, models.StatusRejected)
	if err != nil {
		return "", err
	}
	if !moved {
		return s.currentStatus(match.ID)
	}
	s.logger.Info("match %d rejected", match.ID)
	s.resolved(match, models.StatusRejected)
	return models.StatusRejected, nil
}

func (s *MatchServiceImpl) verify(match *models.Match) (models.MatchStatus, error) {
	cap := rules.DeriveCap(match.TargetPoints)
	winner, _, _, ptsA, ptsB, err := rules.MatchWinner(match.SetScores, match.TargetPoints, s.settings.WinBy, cap)
	if err != nil {
		// Stored sets were validated at submission, so this is a bug or
		// data corruption. Leave the match pending for an admin to look at.
		return "", fmt.Errorf("stored sets of match %d no longer score: %w", match.ID, err)
	}

	ratedA := s.ratedRoster(match.TeamA)
	ratedB := s.ratedRoster(match.TeamB)

	playersA, err := s.loadPlayers(ratedA)
	if err != nil {
		return "", err
	}
	playersB, err := s.loadPlayers(ratedB)
	if err != nil {
		return "", err
	}

	shareA := mmr.Share(ptsA, ptsB)
	newA, newB := mmr.TeamPointsUpdate(ratingsOf(playersA), ratingsOf(playersB), shareA, s.settings.KFactor)

	if err := s.matches.FinalizeScores(match.ID, ptsA, ptsB, winner); err != nil {
		return "", err
	}

	moved, err := s.matches.SetStatus(match.ID, models.StatusPending, models.StatusVerified)
	if err != nil {
		return "", err
	}
	if !moved {
		return s.currentStatus(match.ID)
	}

	for i, p := range playersA {
		if err := s.players.UpdateRating(p.ID, newA[i], winner == models.TeamA); err != nil {
			s.logger.Error("rating update for %s on match %d failed: %v", p.ID, match.ID, err)
		}
	}
	for i, p := range playersB {
		if err := s.players.UpdateRating(p.ID, newB[i], winner == models.TeamB); err != nil {
			s.logger.Error("rating update for %s on match %d failed: %v", p.ID, match.ID, err)
		}
	}

	s.logger.Info("match %d verified: %s wins %d-%d on points, share %.3f", match.ID, winner, ptsA, ptsB, shareA)

	match.PointsA, match.PointsB, match.Winner = ptsA, ptsB, winner
	s.resolved(match, models.StatusVerified)
	return models.StatusVerified, nil
}

func (s *MatchServiceImpl) resolved(match *models.Match, status models.MatchStatus) {
	if err := s.verif.DeleteMessagesForMatch(match.ID); err != nil {
		s.logger.Warn("could not clean verification prompts for match %d: %v", match.ID, err)
	}
	if s.notifier != nil {
		go s.notifier.NotifyMatchResolved(match, status)
	}
}

func (s *MatchServiceImpl) currentStatus(matchID int) (models.MatchStatus, error) {
	match, err := s.Match(matchID)
	if err != nil {
		return "", err
	}
	return match.Status, nil
}

// ratedRoster drops the guest placeholder; guests are never rated.
func (s *MatchServiceImpl) ratedRoster(ids []string) []string {
	if s.settings.GuestUserID == "" {
		return ids
	}
	var out []string
	for _, id := range ids {
		if id != s.settings.GuestUserID {
			out = append(out, id)
		}
	}
	return out
}

func (s *MatchServiceImpl) loadPlayers(ids []string) ([]*models.Player, error) {
	players := make([]*models.Player, 0, len(ids))
	for _, id := range ids {
		p, err := s.players.Get(id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, fmt.Errorf("%w: %s", ErrPlayerNotFound, id)
			}
			return nil, err
		}
		players = append(players, p)
	}
	return players, nil
}

func ratingsOf(players []*models.Player) []float64 {
	out := make([]float64, len(players))
	for i, p := range players {
		out[i] = p.Rating
	}
	return out
}
