package actorgroup

import "errors"

var (
	// ErrNotFound is returned when no group matches the given ID or name.
	ErrNotFound = errors.New("actorgroup: not found")

	// ErrMemberNotFound is returned when the actor is not in the group.
	ErrMemberNotFound = errors.New("actorgroup: member not found")

	// ErrDuplicateName is returned when the normalized group name is taken.
	ErrDuplicateName = errors.New("actorgroup: name already taken")

	// ErrDuplicateMember is returned when the actor is already a member.
	ErrDuplicateMember = errors.New("actorgroup: actor already a member")
)
