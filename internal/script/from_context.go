package script

import "github.com/ostafen/partedit/internal/label"

// FromContext captures ctx's live, in-memory table into a Script ready for
// Emit: the header fields come from the active driver's name and (when it
// implements label.LabelIdentified) its label-wide identifier, and the
// partition list mirrors the table in start-sector order.
func FromContext(ctx *label.Context) *Script {
	s := &Script{Unit: "sectors"}
	if ctx.Driver != nil {
		s.Label = ctx.Driver.Name()
		if li, ok := ctx.Driver.(label.LabelIdentified); ok {
			s.LabelID = li.LabelID()
		}
	}
	if ctx.Dev != nil {
		s.Device = ctx.Dev.Path()
	}

	for _, ref := range ctx.Table.ByStart() {
		p, ok := ctx.Table.Get(ref)
		if !ok || p.IsFreespace {
			continue
		}
		s.Partitions = append(s.Partitions, *p)
	}
	return s
}
