package embedding

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownKind is returned for model names outside the supported set.
var ErrUnknownKind = errors.New("unknown embedding model kind")

// Kind is the closed set of embedding models a Trainer can produce.
type Kind int

const (
	// TransE is the translational model: h + r ≈ t.
	TransE Kind = iota + 1
	// DistMult is the bilinear-diagonal model: <h, r, t> is high for true triples.
	DistMult
	// Lexical embeds class labels with a text embedding service.
	Lexical
)

var kindNames = map[Kind]string{
	TransE:   "TransE",
	DistMult: "DistMult",
	Lexical:  "Lexical",
}

var kindAliases = map[string]Kind{
	"transe":        TransE,
	"translational": TransE,
	"distmult":      DistMult,
	"bilinear":      DistMult,
	"lexical":       Lexical,
	"text":          Lexical,
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

func (k Kind) Valid() bool {
	_, ok := kindNames[k]
	return ok
}

// MarshalText lets kinds appear by name in JSON and TOML.
func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, int(k))
	}
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(b []byte) error {
	parsed, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ParseKind resolves a case-insensitive model name or alias.
func ParseKind(s string) (Kind, error) {
	if k, ok := kindAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return k, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// ParseKinds resolves a list of names, failing on the first unknown one.
func ParseKinds(names []string) ([]Kind, error) {
	kinds := make([]Kind, 0, len(names))
	for _, n := range names {
		k, err := ParseKind(n)
		if err != nil {
			return nil, err
		}
		kinds = append(kinds, k)
	}
	return kinds, nil
}
