package dispatch

import "fmt"

// Mode classifies a dispatch call.
type Mode int

const (
	// ModeImmediate means every operation in the call requires isolated consistency.
	ModeImmediate Mode = iota
	// ModeBatch means at least one operation may be flushed together with other writes.
	ModeBatch
)

// Modes lists every dispatch mode.
var Modes = []Mode{ModeImmediate, ModeBatch}

// String returns the string representation of the mode.
func (m Mode) String() string {
	switch m {
	case ModeImmediate:
		return "immediate"
	case ModeBatch:
		return "batch"
	default:
		return "unknown"
	}
}

func (m Mode) valid() bool {
	return m == ModeImmediate || m == ModeBatch
}

func (m Mode) check() error {
	if !m.valid() {
		return fmt.Errorf("%w: unknown dispatch mode %d", ErrInvalidArgument, int(m))
	}
	return nil
}

// Consistency is the dispatch requirement of a single operation.
type Consistency int

const (
	// ConsistencyDefault lets the operation be batched with other pending writes.
	ConsistencyDefault Consistency = iota
	// ConsistencyIsolated requires the operation to be sent immediately and on its own.
	ConsistencyIsolated
)

// String returns the string representation of the consistency.
func (c Consistency) String() string {
	switch c {
	case ConsistencyDefault:
		return "default"
	case ConsistencyIsolated:
		return "isolated"
	default:
		return "unknown"
	}
}

// Operation is one outgoing transport operation inside a dispatch call.
type Operation struct {
	MessageID   string
	Destination string
	MessageType string
	Headers     map[string]string
	Body        []byte
	Consistency Consistency
}

// Isolated reports whether the operation requires isolated consistency.
func (o Operation) Isolated() bool {
	return o.Consistency == ConsistencyIsolated
}

// Classify returns the mode of a dispatch call.
// A call is immediate only when all of its operations are isolated; a single
// non-isolated operation forces batch handling. An empty call is immediate.
func Classify(ops []Operation) Mode {
	for _, op := range ops {
		if !op.Isolated() {
			return ModeBatch
		}
	}
	return ModeImmediate
}
