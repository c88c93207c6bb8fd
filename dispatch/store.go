package dispatch

// slot holds the two representations configured for one mode.
type slot struct {
	policy   Executor
	pipeline Executor
}

func (s *slot) set(rep Representation, e Executor) {
	if rep == RepresentationPipeline {
		s.pipeline = e
		return
	}
	s.policy = e
}

// Defaults holds the process-wide default strategies for each dispatch mode.
//
// Contract:
//   - Concurrency: SetDefault is not safe for concurrent use and must complete
//     before dispatching begins. GetDefault is safe for concurrent use.
//   - Immutability: once Freeze is called SetDefault fails with ErrConfigurationFrozen.
type Defaults struct {
	slots  [2]slot
	frozen bool
}

// NewDefaults creates an empty Defaults.
func NewDefaults() *Defaults {
	return &Defaults{}
}

// SetDefault stores the default strategy for the given mode and representation.
// A policy and a pipeline are stored independently for the same mode.
func (d *Defaults) SetDefault(mode Mode, rep Representation, e Executor) error {
	if err := mode.check(); err != nil {
		return err
	}
	if err := checkRepresentation(rep); err != nil {
		return err
	}
	if err := checkExecutor(e); err != nil {
		return err
	}
	if d.frozen {
		return ErrConfigurationFrozen
	}

	d.slots[mode].set(rep, e)
	return nil
}

// GetDefault returns the default policy and pipeline for mode.
// Either or both may be nil.
func (d *Defaults) GetDefault(mode Mode) (policy, pipeline Executor) {
	if d == nil || !mode.valid() {
		return nil, nil
	}
	s := d.slots[mode]
	return s.policy, s.pipeline
}

// Freeze ends the configuration phase.
func (d *Defaults) Freeze() {
	d.frozen = true
}

// Frozen reports whether Freeze was called.
func (d *Defaults) Frozen() bool {
	return d.frozen
}
