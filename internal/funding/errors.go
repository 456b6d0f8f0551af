// Package funding holds the error taxonomy and lookup helpers shared by the
// campaign services (projects, auction, contributions, rounds).
package funding

import "errors"

// Not-found / wrong-phase. All validation runs before any write, so every
// error below surfaces with no partial state observable.
var (
	ErrProjectNotFound      = errors.New("Project not found")
	ErrIncorrectRound       = errors.New("Operation not allowed in the current round")
	ErrEvaluationNotStarted = errors.New("Evaluation round has not started")
	ErrAuctionNotStarted    = errors.New("Auction round has not started")
	ErrTooLateForRound      = errors.New("Round has already ended")
)

// Limit violations.
var (
	ErrTooLow                    = errors.New("Ticket size below the minimum for this investor class")
	ErrTooHigh                   = errors.New("Ticket size above the maximum for this identity")
	ErrTooManyUserParticipations = errors.New("Too many participations by this account")
	ErrProjectSoldOut            = errors.New("No contribution tokens remaining")
)

// Policy violations.
var (
	ErrPolicyMismatch           = errors.New("Participation policy hash does not match")
	ErrParticipationToOwnProject = errors.New("Issuer cannot participate in their own project")
	ErrUserHasWinningBid        = errors.New("Winning bidders may contribute only once the remainder round opens")
	ErrNotIssuer                = errors.New("Only the issuer may advance their own project")
)

// Invariant violations. These indicate a programming or data-corruption bug,
// not user error; handlers log them at error level and return 500.
var (
	ErrImpossibleState = errors.New("Impossible state reached")
	ErrWapNotSet       = errors.New("Weighted average price has not been set")
)
