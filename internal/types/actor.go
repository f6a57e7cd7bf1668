package types

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Actor identifies who created, funded or administers an entity.
//
// Sealed: only CouncilActor and MemberActor implement it. Actors compare
// with == since both variants are plain values.
type Actor interface {
	actor()
	// Key is the stable storage key of the actor. Keys order councils
	// before members and members by id.
	Key() string
	String() string
}

// CouncilActor is the council acting through the root origin.
type CouncilActor struct{}

// MemberActor is a specific member.
type MemberActor struct {
	ID MemberID
}

func (CouncilActor) actor() {}
func (MemberActor) actor()  {}

func (CouncilActor) Key() string { return "0:council" }
func (a MemberActor) Key() string {
	return fmt.Sprintf("1:member:%020d", uint64(a.ID))
}

func (CouncilActor) String() string  { return "council" }
func (a MemberActor) String() string { return "member:" + a.ID.String() }

// Council returns the council actor.
func Council() Actor { return CouncilActor{} }

// Member returns the actor for member id.
func Member(id MemberID) Actor { return MemberActor{ID: id} }

// ParseActor parses the String form of an actor ("council" or "member:<id>").
func ParseActor(s string) (Actor, error) {
	if s == "council" {
		return Council(), nil
	}
	rest, ok := strings.CutPrefix(s, "member:")
	if !ok {
		return nil, fmt.Errorf("unknown actor %q", s)
	}
	id, err := strconv.ParseUint(rest, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parse member id %q: %w", rest, err)
	}
	return Member(MemberID(id)), nil
}

// ActorJSON carries an actor through encoding/json and yaml.v3, which cannot
// decode into an interface. It encodes as the actor's String form.
type ActorJSON struct {
	Actor
}

func (a ActorJSON) MarshalJSON() ([]byte, error) {
	if a.Actor == nil {
		return []byte("null"), nil
	}
	return json.Marshal(a.Actor.String())
}

func (a *ActorJSON) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("decode actor: %w", err)
	}
	actor, err := ParseActor(s)
	if err != nil {
		return err
	}
	a.Actor = actor
	return nil
}
