package resource

import (
	"path"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
)

// Scheme says where an identity's resource comes from.
type Scheme uint8

const (
	SchemePath   Scheme = iota + 1 // a file below the asset root
	SchemeMemory                   // data supplied at registration
)

// ID is a stable resource identity. IDs are comparable and safe as map keys.
type ID struct {
	Scheme Scheme
	Key    string
}

// Path returns the identity of a file. Separators are normalized to
// slashes, the path is cleaned and its text is NFC-normalized so that
// differently composed spellings of one name map to one resource.
func Path(p string) ID {
	p = strings.ReplaceAll(p, "\\", "/")
	p = norm.NFC.String(path.Clean(p))
	return ID{Scheme: SchemePath, Key: p}
}

// Memory returns the identity of an in-memory resource.
func Memory(name string) ID {
	return ID{Scheme: SchemeMemory, Key: name}
}

// NewMemoryID returns a fresh, unique in-memory identity.
func NewMemoryID() ID {
	return Memory(uuid.NewString())
}

// IsZero reports whether id is the zero identity.
func (id ID) IsZero() bool {
	return id == ID{}
}

func (id ID) String() string {
	switch id.Scheme {
	case SchemePath:
		return "path:" + id.Key
	case SchemeMemory:
		return "mem:" + id.Key
	default:
		return "<none>"
	}
}
