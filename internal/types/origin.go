package types

import (
	"encoding/json"
	"fmt"
)

// Origin is the authenticated source of a call.
//
// Sealed: only RootOrigin, SignedOrigin and NoneOrigin implement it.
type Origin interface {
	origin()
	String() string
}

// RootOrigin is the privileged origin. The council acts through it.
type RootOrigin struct{}

// SignedOrigin is a call signed by an account.
type SignedOrigin struct {
	Account AccountID
}

// NoneOrigin is an unsigned call.
type NoneOrigin struct{}

func (RootOrigin) origin()   {}
func (SignedOrigin) origin() {}
func (NoneOrigin) origin()   {}

func (RootOrigin) String() string     { return "root" }
func (o SignedOrigin) String() string { return "signed:" + string(o.Account) }
func (NoneOrigin) String() string     { return "none" }

// Root returns the root origin.
func Root() Origin { return RootOrigin{} }

// Signed returns an origin signed by account.
func Signed(account AccountID) Origin { return SignedOrigin{Account: account} }

// None returns the unsigned origin.
func None() Origin { return NoneOrigin{} }

// originWire is the JSON form shared by the call log, scenarios and the API:
// {"kind":"root"}, {"kind":"signed","account":"alice"} or {"kind":"none"}.
type originWire struct {
	Kind    string    `json:"kind" yaml:"kind"`
	Account AccountID `json:"account,omitempty" yaml:"account,omitempty"`
}

// MarshalOrigin encodes an origin to its wire form.
func MarshalOrigin(o Origin) ([]byte, error) {
	switch v := o.(type) {
	case RootOrigin:
		return json.Marshal(originWire{Kind: "root"})
	case SignedOrigin:
		return json.Marshal(originWire{Kind: "signed", Account: v.Account})
	case NoneOrigin:
		return json.Marshal(originWire{Kind: "none"})
	default:
		return nil, fmt.Errorf("unknown origin %T", o)
	}
}

// UnmarshalOrigin decodes the wire form produced by MarshalOrigin.
func UnmarshalOrigin(data []byte) (Origin, error) {
	var w originWire
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("decode origin: %w", err)
	}
	return ParseOrigin(w.Kind, w.Account)
}

// ParseOrigin builds an origin from its kind and, for signed origins, the account.
func ParseOrigin(kind string, account AccountID) (Origin, error) {
	switch kind {
	case "root":
		return Root(), nil
	case "signed":
		if account == "" {
			return nil, fmt.Errorf("signed origin requires an account")
		}
		return Signed(account), nil
	case "none", "":
		return None(), nil
	default:
		return nil, fmt.Errorf("unknown origin kind %q", kind)
	}
}
