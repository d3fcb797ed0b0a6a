// Package snapshot captures a reachable object graph from a realm into a
// CBOR document and rebuilds it in another realm. Shapes are not stored;
// they are re-derived by replaying property definitions in own-key order.
package snapshot

import (
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"
)

// FormatVersion is bumped on incompatible layout changes.
const FormatVersion = 1

// ValueTag identifies the variant held by a Value.
type ValueTag uint8

const (
	TagUndefined ValueTag = 0
	TagNull      ValueTag = 1
	TagBoolean   ValueTag = 2
	TagNumber    ValueTag = 3
	TagString    ValueTag = 4
	TagSymbol    ValueTag = 5
	TagObject    ValueTag = 6 // index into Snapshot.Objects
	TagIntrinsic ValueTag = 7 // name of a realm intrinsic
)

// Value is the wire form of a script value.
type Value struct {
	Tag    ValueTag `cbor:"1,keyasint"`
	Bool   bool     `cbor:"2,keyasint,omitempty"`
	Number float64  `cbor:"3,keyasint"`
	String string   `cbor:"4,keyasint,omitempty"`
	Ref    uint32   `cbor:"5,keyasint,omitempty"` // object or symbol index
}

// Property is one own property, in own-key order.
type Property struct {
	Key    Value  `cbor:"1,keyasint"` // string or symbol
	Attrs  uint8  `cbor:"2,keyasint"`
	Value  Value  `cbor:"3,keyasint"`
	Getter *Value `cbor:"4,keyasint,omitempty"`
	Setter *Value `cbor:"5,keyasint,omitempty"`
}

// Object is the wire form of an object record.
type Object struct {
	Kind           string     `cbor:"1,keyasint"`
	Class          string     `cbor:"2,keyasint,omitempty"`
	Proto          Value      `cbor:"3,keyasint"`
	Extensible     bool       `cbor:"4,keyasint"`
	Properties     []Property `cbor:"5,keyasint,omitempty"`
	Length         uint32     `cbor:"6,keyasint,omitempty"`
	LengthReadOnly bool       `cbor:"7,keyasint,omitempty"`
	Primitive      *Value     `cbor:"8,keyasint,omitempty"`
}

// Symbol records a non-well-known symbol by description.
type Symbol struct {
	Description string `cbor:"1,keyasint"`
}

// Snapshot is a self-contained object graph.
type Snapshot struct {
	Version int      `cbor:"1,keyasint"`
	Realm   string   `cbor:"2,keyasint"` // id of the capturing realm
	Roots   []Value  `cbor:"3,keyasint"`
	Objects []Object `cbor:"4,keyasint"`
	Symbols []Symbol `cbor:"5,keyasint,omitempty"`
}

var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("snapshot: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// Marshal serializes a snapshot to CBOR bytes.
func Marshal(s *Snapshot) ([]byte, error) {
	return cborEncMode.Marshal(s)
}

// Unmarshal deserializes a snapshot from CBOR bytes.
func Unmarshal(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := cbor.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("snapshot: unmarshal: %w", err)
	}
	if s.Version != FormatVersion {
		return nil, fmt.Errorf("snapshot: unsupported format version %d", s.Version)
	}
	return &s, nil
}

// Encode writes s to w.
func Encode(w io.Writer, s *Snapshot) error {
	return cborEncMode.NewEncoder(w).Encode(s)
}

// Decode reads one snapshot from r.
func Decode(r io.Reader) (*Snapshot, error) {
	var s Snapshot
	if err := cbor.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("snapshot: decode: %w", err)
	}
	if s.Version != FormatVersion {
		return nil, fmt.Errorf("snapshot: unsupported format version %d", s.Version)
	}
	return &s, nil
}
