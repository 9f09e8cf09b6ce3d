package script

import (
	"errors"

	"github.com/ostafen/partedit/internal/label"
	"github.com/ostafen/partedit/internal/perr"
)

// ApplyToContext creates ctx's label fresh (ctx.Driver must already be set
// to the driver named by s.Label) and adds every partition s describes, in
// order. The first failure aborts and rolls ctx.Table back to its state
// before the call, so a partially-applied script never leaves a context
// half-mutated.
func ApplyToContext(ctx *label.Context, s *Script) error {
	if ctx.Driver == nil {
		return perr.New(perr.Unsupported, "context has no label driver selected")
	}

	snapshot := ctx.Table.Clone()
	ctx.ScriptRef = s

	if err := ctx.Driver.Create(ctx); err != nil {
		ctx.Table = snapshot
		return err
	}

	for i, tmpl := range s.Partitions {
		if _, err := ctx.Driver.AddPartition(ctx, tmpl); err != nil {
			ctx.Table = snapshot
			return perr.Wrap(kindOf(err), err, "applying partition %d", i+1)
		}
	}
	return nil
}

func kindOf(err error) perr.Kind {
	var pe *perr.Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return perr.InvalidArgument
}
