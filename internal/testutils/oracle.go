package testutils

import (
	"fmt"

	"github.com/am610/firecrown/internal/oracle"
)

// RecordingOracle wraps the stub engine and records every call in order, so
// tests can assert what the pipeline asked for and when.
type RecordingOracle struct {
	inner *oracle.Stub

	// Events lists the calls as "cosmology", "tracer <name>" and
	// "cl <first>-<second>".
	Events []string
	// Params is the last native parameter object received.
	Params oracle.NativeParameters
	// Specs holds the last tracer spec received per tracer name.
	Specs map[string]oracle.TracerSpec

	// FailCosmology, when set, is returned by NewCosmology.
	FailCosmology error
	// FailTracer makes NewTracer fail for the named tracer.
	FailTracer string
}

// NewRecordingOracle returns an empty recorder.
func NewRecordingOracle() *RecordingOracle {
	return &RecordingOracle{
		inner: oracle.NewStub(),
		Specs: make(map[string]oracle.TracerSpec),
	}
}

// Reset clears the recorded events.
func (o *RecordingOracle) Reset() {
	o.Events = nil
	o.Specs = make(map[string]oracle.TracerSpec)
}

// NewCosmology records the parameters and delegates to the stub.
func (o *RecordingOracle) NewCosmology(params oracle.NativeParameters) (oracle.Cosmology, error) {
	o.Events = append(o.Events, "cosmology")
	o.Params = params
	if o.FailCosmology != nil {
		return nil, o.FailCosmology
	}
	c, err := o.inner.NewCosmology(params)
	if err != nil {
		return nil, err
	}
	return &recordingCosmology{owner: o, inner: c}, nil
}

type recordingCosmology struct {
	owner *RecordingOracle
	inner oracle.Cosmology
}

func (c *recordingCosmology) NewTracer(spec oracle.TracerSpec) (oracle.Tracer, error) {
	c.owner.Events = append(c.owner.Events, "tracer "+spec.Name)
	c.owner.Specs[spec.Name] = spec.Clone()
	if c.owner.FailTracer == spec.Name {
		return nil, fmt.Errorf("tracer %s rejected", spec.Name)
	}
	return c.inner.NewTracer(spec)
}

func (c *recordingCosmology) AngularCl(t1, t2 oracle.Tracer, ells []float64) ([]float64, error) {
	c.owner.Events = append(c.owner.Events, fmt.Sprintf("cl %s-%s", t1.Name(), t2.Name()))
	return c.inner.AngularCl(t1, t2, ells)
}
