package label_test

import (
	"testing"

	"github.com/ostafen/partedit/internal/label"
	"github.com/ostafen/partedit/internal/perr"
	"github.com/ostafen/partedit/internal/ptable"
	"github.com/stretchr/testify/require"
)

func TestRegistryProbeReturnsFirstMatch(t *testing.T) {
	r := label.NewRegistry()
	r.Register("gpt", func() label.Driver { return &fakeDriver{name: "gpt", present: false} })
	r.Register("dos", func() label.Driver { return &fakeDriver{name: "dos", present: true} })

	ctx := &label.Context{}
	drv, err := r.Probe(ctx)
	require.NoError(t, err)
	require.Equal(t, "dos", drv.Name())
}

func TestRegistryProbeNoneMatchIsNotFound(t *testing.T) {
	r := label.NewRegistry()
	r.Register("dos", func() label.Driver { return &fakeDriver{name: "dos", present: false} })

	ctx := &label.Context{Dev: nil}
	_, err := r.Probe(&label.Context{Dev: ctx.Dev})
	require.Error(t, err)
	require.True(t, perr.Is(err, perr.NotFound))
}

// fakeDriver is a minimal label.Driver used only to exercise the registry's
// probe-in-order behavior.
type fakeDriver struct {
	name    string
	present bool
}

func (f *fakeDriver) Name() string { return f.name }
func (f *fakeDriver) Probe(ctx *label.Context) (bool, error) { return f.present, nil }
func (f *fakeDriver) Create(ctx *label.Context) error        { return nil }
func (f *fakeDriver) Read(ctx *label.Context) error          { return nil }
func (f *fakeDriver) Write(ctx *label.Context) error         { return nil }
func (f *fakeDriver) Verify(ctx *label.Context) (int, error) { return 0, nil }
func (f *fakeDriver) AddPartition(ctx *label.Context, template ptable.Partition) (int, error) {
	return 0, nil
}
func (f *fakeDriver) DeletePartition(ctx *label.Context, ordinal int) error { return nil }
func (f *fakeDriver) GetPartition(ctx *label.Context, ordinal int) (ptable.Partition, error) {
	return ptable.Partition{}, nil
}
func (f *fakeDriver) SetPartition(ctx *label.Context, ordinal int, template ptable.Partition) error {
	return nil
}
func (f *fakeDriver) Reorder(ctx *label.Context) error { return nil }
func (f *fakeDriver) ListFreespace(ctx *label.Context) ([]ptable.Partition, error) {
	return nil, nil
}
