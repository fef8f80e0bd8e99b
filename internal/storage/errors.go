package storage

import "errors"

var (
	ErrNotFound          = errors.New("item not found in storage")
	ErrAlreadyExists     = errors.New("item already exists")
	ErrAlreadyInTeam     = errors.New("user already belongs to a team")
	ErrTeamFull          = errors.New("team is at capacity")
	ErrNotEnoughBenefits = errors.New("not enough unassigned benefits")
)
