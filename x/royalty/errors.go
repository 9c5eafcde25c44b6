package royalty

import (
	"github.com/iov-one/weave/errors"
)

var (
	// ErrCollaborators is returned when a collaborator list is empty,
	// too long, does not match the percentage list or contains the same
	// address twice.
	ErrCollaborators = errors.Register(150, "invalid collaborator set")

	// ErrPercentage is returned when a royalty percentage is out of
	// range or a percentage set does not sum up to exactly 10000 basis
	// points.
	ErrPercentage = errors.Register(151, "invalid percentage set")

	// ErrNoRevenue is returned when distribution is requested for a
	// work that has no pending revenue.
	ErrNoRevenue = errors.Register(152, "no pending revenue")

	// ErrWorkLocked is returned when a payment is made to a work that
	// is not accepting revenue.
	ErrWorkLocked = errors.Register(153, "work locked")
)
