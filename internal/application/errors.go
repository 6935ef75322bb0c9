package application

import "errors"

var (
	ErrMatchNotFound    = errors.New("match not found")
	ErrNotAParticipant  = errors.New("only match participants can verify")
	ErrSelfVerification = errors.New("the reporter cannot verify their own match")
	ErrPlayerNotFound   = errors.New("player not found")
	ErrNoPendingMatches = errors.New("no pending matches to verify")
)
