package core

import (
	"math/rand"

	"github.com/dkeye/Syndicate/internal/domain"
)

// SyndicateCount is ceil(n/3), fixed for the round at assignment time.
func SyndicateCount(n int) int {
	return (n + 2) / 3
}

// AssignRoles deals a role to every id: a uniform Fisher-Yates shuffle,
// then the deterministic deal in assignShuffled. No side effects.
func AssignRoles(ids []ConnID, s domain.Settings) map[ConnID]domain.RoleKind {
	shuffled := make([]ConnID, len(ids))
	copy(shuffled, ids)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return assignShuffled(shuffled, s)
}

// assignShuffled deals roles to an already-shuffled order: the first
// ceil(n/3) ids are Syndicate, the next is the Detective, then at most
// one EyeWitness and one BodyGuard when enabled, everyone else an
// InnocentBystander.
func assignShuffled(ids []ConnID, s domain.Settings) map[ConnID]domain.RoleKind {
	roles := make(map[ConnID]domain.RoleKind, len(ids))
	cut := SyndicateCount(len(ids))
	for _, id := range ids[:cut] {
		roles[id] = domain.RoleSyndicate
	}
	eyeWitnessLeft := s.EyeWitness
	bodyGuardLeft := s.BodyGuard
	for i, id := range ids[cut:] {
		switch {
		case i == 0:
			roles[id] = domain.RoleDetective
		case eyeWitnessLeft:
			roles[id] = domain.RoleEyeWitness
			eyeWitnessLeft = false
		case bodyGuardLeft:
			roles[id] = domain.RoleBodyGuard
			bodyGuardLeft = false
		default:
			roles[id] = domain.RoleBystander
		}
	}
	return roles
}
