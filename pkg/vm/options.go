package vm

import "github.com/rs/zerolog"

const DefaultMaxArguments = 65535

// Options tunes a Realm. Zero fields take their defaults.
type Options struct {
	// DenseGapLimit is the largest hole a write may leave in dense element
	// storage before it switches to sparse.
	DenseGapLimit uint32
	// MaxDenseLength caps the dense representation.
	MaxDenseLength uint32
	// MaxArguments bounds the argument count of one call.
	MaxArguments int
	// MaxObjects bounds live heap objects; 0 is unlimited.
	MaxObjects int

	Logger  zerolog.Logger
	Barrier WriteBarrier
}

func DefaultOptions() Options {
	return Options{
		DenseGapLimit:  DefaultDenseGapLimit,
		MaxDenseLength: DefaultMaxDenseLength,
		MaxArguments:   DefaultMaxArguments,
		Logger:         zerolog.Nop(),
	}
}

func (o Options) withDefaults() Options {
	if o.DenseGapLimit == 0 {
		o.DenseGapLimit = DefaultDenseGapLimit
	}
	if o.MaxDenseLength == 0 {
		o.MaxDenseLength = DefaultMaxDenseLength
	}
	if o.MaxArguments <= 0 {
		o.MaxArguments = DefaultMaxArguments
	}
	return o
}
