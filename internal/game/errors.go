package game

import "errors"

var (
	ErrEmptyAnswer         = errors.New("answer is required")
	ErrRoundComplete       = errors.New("round already complete")
	ErrRoundClosed         = errors.New("round is not open")
	ErrStaleSubmission     = errors.New("submission is for a different question")
	ErrDuplicateSubmission = errors.New("answer already submitted")
	ErrSubmissionInFlight  = errors.New("submission already in progress")

	ErrOperativeRequired   = errors.New("operative must be selected first")
	ErrOperativeIneligible = errors.New("member cannot be selected as operative")
	ErrNoEligibleOperative = errors.New("no eligible operative")
	ErrInvalidSuit         = errors.New("invalid suit")
	ErrSuitUsed            = errors.New("suit already used in another round")

	ErrTeamDisqualified  = errors.New("team is disqualified")
	ErrInvalidTransition = errors.New("invalid game transition")
	ErrInvalidRound      = errors.New("invalid round number")
	ErrInvalidQuestion   = errors.New("invalid question")
)
