// Package drivers wires every concrete label implementation into a single
// label.Registry. It is the one place that imports label/mbr, label/gpt,
// and label/bsd together; internal/label itself never references a
// concrete driver package, to avoid the import cycle that would create.
package drivers

import (
	"github.com/ostafen/partedit/internal/label"
	"github.com/ostafen/partedit/internal/label/bsd"
	"github.com/ostafen/partedit/internal/label/gpt"
	"github.com/ostafen/partedit/internal/label/mbr"
)

// NewRegistry returns a label.Registry with every shipped driver
// registered in probe order. GPT is probed before MBR: a GPT disk's
// protective MBR also carries the 0xAA55 signature the MBR driver's Probe
// checks, so GPT must get first refusal or every GPT disk would be
// misidentified as a plain MBR one.
func NewRegistry() *label.Registry {
	reg := label.NewRegistry()
	reg.Register("gpt", gpt.New)
	reg.Register("dos", mbr.New)
	reg.Register("bsd", bsd.New)
	return reg
}
