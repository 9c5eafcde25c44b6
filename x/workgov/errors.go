package workgov

import (
	"github.com/iov-one/weave/errors"
)

var (
	// ErrAlreadyVoted is returned when a voter casts a second vote on the
	// same proposal.
	ErrAlreadyVoted = errors.Register(160, "already voted")

	// ErrNotPassed is returned when executing a proposal that did not
	// reach the approval threshold.
	ErrNotPassed = errors.Register(161, "proposal not passed")

	// ErrProposal is returned when a proposal declaration is invalid.
	ErrProposal = errors.Register(162, "invalid proposal")
)
