package roster

import (
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/Iron-Ham/nightfall/internal/errors"
)

func TestDistribution(t *testing.T) {
	tests := []struct {
		name       string
		n          int
		saboteurs  int
		wantSab    int
		wantErr    bool
		wantTooFew bool
	}{
		{name: "twelve derived", n: 12, saboteurs: 0, wantSab: 3},
		{name: "seven derived", n: 7, saboteurs: 0, wantSab: 1},
		{name: "three derived", n: 3, saboteurs: 0, wantSab: 1},
		{name: "explicit", n: 8, saboteurs: 2, wantSab: 2},
		{name: "half is not a minority", n: 8, saboteurs: 4, wantErr: true},
		{name: "negative", n: 8, saboteurs: -1, wantErr: true},
		{name: "too few", n: 2, saboteurs: 0, wantErr: true, wantTooFew: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			roles, err := Distribution(tt.n, tt.saboteurs)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Distribution() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantTooFew && !errors.Is(err, errors.ErrRosterTooSmall) {
				t.Errorf("error = %v, want ErrRosterTooSmall", err)
			}
			if tt.wantErr {
				return
			}
			if len(roles) != tt.n {
				t.Fatalf("len = %d, want %d", len(roles), tt.n)
			}
			count := func(r Role) int {
				n := 0
				for _, x := range roles {
					if x == r {
						n++
					}
				}
				return n
			}
			if got := count(Saboteur); got != tt.wantSab {
				t.Errorf("saboteurs = %d, want %d", got, tt.wantSab)
			}
			if count(Seeker) != 1 || count(Protector) != 1 {
				t.Errorf("want exactly one seeker and one protector, got %v", roles)
			}
		})
	}
}

func TestAssign_Deterministic(t *testing.T) {
	names := []string{"A", "B", "C", "D", "E", "F", "G", "H"}
	dist, err := Distribution(len(names), 0)
	if err != nil {
		t.Fatal(err)
	}

	roles := func(seed uint64) []Role {
		r, err := Assign(names, dist, rand.New(rand.NewPCG(seed, seed)))
		if err != nil {
			t.Fatalf("Assign() error = %v", err)
		}
		var out []Role
		for _, a := range r.Actors() {
			out = append(out, a.Role)
		}
		return out
	}

	if !slices.Equal(roles(7), roles(7)) {
		t.Error("same seed produced different assignments")
	}

	r, _ := Assign(names, dist, rand.New(rand.NewPCG(1, 1)))
	if !slices.Equal(r.Living(), names) {
		t.Errorf("Living() = %v, want seating order %v", r.Living(), names)
	}

	if _, err := Assign(names[:3], dist, rand.New(rand.NewPCG(1, 1))); err == nil {
		t.Error("Assign() with mismatched lengths should fail")
	}
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name   string
		actors []Actor
	}{
		{"empty name", []Actor{{Name: "", Role: Bystander}}},
		{"bad role", []Actor{{Name: "A", Role: "wizard"}}},
		{"duplicate", []Actor{{Name: "A", Role: Bystander}, {Name: "A", Role: Seeker}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.actors); err == nil {
				t.Error("New() error = nil, want error")
			}
		})
	}
}

func newFixture(t *testing.T) *Roster {
	t.Helper()
	r, err := New([]Actor{
		{Name: "Ann", Role: Saboteur, Alive: true},
		{Name: "Ben", Role: Seeker, Alive: true},
		{Name: "Cal", Role: Saboteur, Alive: true},
		{Name: "Dee", Role: Protector, Alive: true},
		{Name: "Eve", Role: Bystander, Alive: true},
	})
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func TestRoster_Queries(t *testing.T) {
	r := newFixture(t)

	if got := r.Living(Saboteur); !slices.Equal(got, []string{"Ann", "Cal"}) {
		t.Errorf("Living(Saboteur) = %v", got)
	}
	if got := r.Teammates("Ann"); !slices.Equal(got, []string{"Cal"}) {
		t.Errorf("Teammates(Ann) = %v", got)
	}
	if got := r.Teammates("Eve"); got != nil {
		t.Errorf("Teammates(Eve) = %v, want nil", got)
	}
	if name, ok := r.Holder(Seeker); !ok || name != "Ben" {
		t.Errorf("Holder(Seeker) = %q, %v", name, ok)
	}
	if c := r.Counts(); c != (Counts{Saboteurs: 2, Others: 3}) {
		t.Errorf("Counts() = %+v", c)
	}
	if _, err := r.Get("Zed"); !errors.Is(err, errors.ErrUnknownActor) {
		t.Errorf("Get(Zed) error = %v, want ErrUnknownActor", err)
	}
	if Saboteur.Faction() != FactionDespair || Seeker.Faction() != FactionHope {
		t.Error("unexpected faction mapping")
	}
}

func TestRoster_Eliminate(t *testing.T) {
	r := newFixture(t)

	role, err := r.Eliminate("Ben")
	if err != nil {
		t.Fatalf("Eliminate() error = %v", err)
	}
	if role != Seeker {
		t.Errorf("role = %q, want seeker", role)
	}
	if r.IsAlive("Ben") {
		t.Error("Ben still alive")
	}
	if _, ok := r.Holder(Seeker); ok {
		t.Error("Holder(Seeker) should report no living holder")
	}
	if _, err := r.Eliminate("Ben"); !errors.Is(err, errors.ErrActorEliminated) {
		t.Errorf("second Eliminate() error = %v, want ErrActorEliminated", err)
	}
	if _, err := r.Eliminate("Zed"); !errors.Is(err, errors.ErrUnknownActor) {
		t.Errorf("Eliminate(Zed) error = %v, want ErrUnknownActor", err)
	}
	if c := r.Counts(); c.Others != 2 {
		t.Errorf("Others = %d, want 2", c.Others)
	}
}
