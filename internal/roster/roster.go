// Package roster assigns hidden roles and tracks who is still alive.
package roster

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"sync"

	"github.com/Iron-Ham/nightfall/internal/errors"
)

// Role is a hidden role held by one actor for the whole game.
type Role string

const (
	Saboteur  Role = "Saboteur"
	Seeker    Role = "Seeker"
	Protector Role = "Protector"
	Bystander Role = "Bystander"
)

// Valid reports whether r is one of the four known roles.
func (r Role) Valid() bool {
	switch r {
	case Saboteur, Seeker, Protector, Bystander:
		return true
	}
	return false
}

// Faction is the win-condition side a role plays for.
type Faction string

const (
	// FactionDespair is the saboteur minority.
	FactionDespair Faction = "despair"
	// FactionHope is everyone else.
	FactionHope Faction = "hope"
)

// Faction returns the side r plays for.
func (r Role) Faction() Faction {
	if r == Saboteur {
		return FactionDespair
	}
	return FactionHope
}

// Actor is one seat at the table.
type Actor struct {
	Name  string
	Role  Role
	Alive bool
}

// Counts is the living head-count by faction.
type Counts struct {
	Saboteurs int
	Others    int
}

// Distribution returns the fixed role multiset for n actors with the given
// saboteur count: one Seeker, one Protector, and Bystanders for the rest.
// A saboteur count of 0 derives max(1, n/4).
//
// Saboteurs must be a strict minority, so n must be at least 3.
func Distribution(n, saboteurs int) ([]Role, error) {
	if n < 3 {
		return nil, errors.NewValidationError("need at least 3 actors").
			WithField("game.roster").WithValue(n).WithCause(errors.ErrRosterTooSmall)
	}
	if saboteurs == 0 {
		saboteurs = max(1, n/4)
	}
	if saboteurs < 0 || saboteurs*2 >= n {
		return nil, errors.NewValidationError("saboteurs must be a strict minority").
			WithField("game.saboteurs").WithValue(saboteurs)
	}
	if saboteurs+2 > n {
		return nil, errors.NewValidationError("not enough actors for seeker and protector").
			WithField("game.roster").WithValue(n).WithCause(errors.ErrRosterTooSmall)
	}

	roles := make([]Role, 0, n)
	for range saboteurs {
		roles = append(roles, Saboteur)
	}
	roles = append(roles, Seeker, Protector)
	for len(roles) < n {
		roles = append(roles, Bystander)
	}
	return roles, nil
}

// Roster holds every actor in seating order. Seating order is the order the
// names were given to Assign and doubles as the speaking order.
// It is safe for concurrent use.
type Roster struct {
	mu     sync.RWMutex
	actors []Actor
	index  map[string]int
}

// Assign shuffles dist with rng and deals one role to each name. The roster
// is seated in the order of names.
func Assign(names []string, dist []Role, rng *rand.Rand) (*Roster, error) {
	if len(names) != len(dist) {
		return nil, errors.NewValidationError(
			fmt.Sprintf("%d names for %d roles", len(names), len(dist))).WithField("game.roster")
	}

	roles := slices.Clone(dist)
	rng.Shuffle(len(roles), func(i, j int) { roles[i], roles[j] = roles[j], roles[i] })

	actors := make([]Actor, len(names))
	for i, name := range names {
		actors[i] = Actor{Name: name, Role: roles[i], Alive: true}
	}
	return New(actors)
}

// New builds a roster from an explicit assignment, as when replaying a
// recorded game. Names must be unique and non-empty.
func New(actors []Actor) (*Roster, error) {
	r := &Roster{
		actors: slices.Clone(actors),
		index:  make(map[string]int, len(actors)),
	}
	for i, a := range r.actors {
		if a.Name == "" {
			return nil, errors.NewValidationError("actor name is empty").WithField("game.roster")
		}
		if !a.Role.Valid() {
			return nil, errors.NewValidationError("unknown role").WithField(a.Name).WithValue(a.Role)
		}
		if _, dup := r.index[a.Name]; dup {
			return nil, errors.NewValidationError("duplicate actor name").WithField("game.roster").WithValue(a.Name)
		}
		r.index[a.Name] = i
	}
	return r, nil
}

// Actors returns a copy of every actor in seating order.
func (r *Roster) Actors() []Actor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.actors)
}

// Living returns the names of living actors in seating order. With no roles
// given every living actor is returned; otherwise only holders of one of
// the given roles.
func (r *Roster) Living(roles ...Role) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var names []string
	for _, a := range r.actors {
		if !a.Alive {
			continue
		}
		if len(roles) > 0 && !slices.Contains(roles, a.Role) {
			continue
		}
		names = append(names, a.Name)
	}
	return names
}

// Get returns the actor with the given name.
func (r *Roster) Get(name string) (Actor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i, ok := r.index[name]
	if !ok {
		return Actor{}, errors.NewNotFoundError("actor", name).WithCause(errors.ErrUnknownActor)
	}
	return r.actors[i], nil
}

// Has reports whether name is on the roster.
func (r *Roster) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.index[name]
	return ok
}

// RoleOf returns the role held by name.
func (r *Roster) RoleOf(name string) (Role, error) {
	a, err := r.Get(name)
	if err != nil {
		return "", err
	}
	return a.Role, nil
}

// IsAlive reports whether name is on the roster and alive.
func (r *Roster) IsAlive(name string) bool {
	a, err := r.Get(name)
	return err == nil && a.Alive
}

// Holder returns the living holder of a unique role, if any.
func (r *Roster) Holder(role Role) (string, bool) {
	names := r.Living(role)
	if len(names) == 0 {
		return "", false
	}
	return names[0], true
}

// Teammates returns the other living saboteurs when name is a saboteur,
// and nil otherwise.
func (r *Roster) Teammates(name string) []string {
	role, err := r.RoleOf(name)
	if err != nil || role != Saboteur {
		return nil
	}
	var mates []string
	for _, n := range r.Living(Saboteur) {
		if n != name {
			mates = append(mates, n)
		}
	}
	return mates
}

// Counts returns living saboteurs against everyone else alive.
func (r *Roster) Counts() Counts {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var c Counts
	for _, a := range r.actors {
		if !a.Alive {
			continue
		}
		if a.Role == Saboteur {
			c.Saboteurs++
		} else {
			c.Others++
		}
	}
	return c
}

// Eliminate marks name as dead. Liveness only ever goes from true to false;
// eliminating a dead actor returns ErrActorEliminated. Callers are
// responsible for running the win check afterwards.
func (r *Roster) Eliminate(name string) (Role, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i, ok := r.index[name]
	if !ok {
		return "", errors.NewNotFoundError("actor", name).WithCause(errors.ErrUnknownActor)
	}
	if !r.actors[i].Alive {
		return r.actors[i].Role, errors.Wrapf(errors.ErrActorEliminated, "eliminate %s", name)
	}
	r.actors[i].Alive = false
	return r.actors[i].Role, nil
}
