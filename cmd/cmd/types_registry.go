package cmd

import (
	"github.com/ostafen/partedit/internal/ptype"
	"github.com/ostafen/partedit/internal/ptype/bsdtype"
	"github.com/ostafen/partedit/internal/ptype/gpttype"
	"github.com/ostafen/partedit/internal/ptype/mbrtype"
)

// typeRegistryFor resolves the partition-type catalog a given label name
// resolves `type=`/`Id=` script fields against.
func typeRegistryFor(labelName string) *ptype.Registry {
	switch labelName {
	case "gpt":
		return gpttype.NewRegistry()
	case "bsd":
		return bsdtype.NewRegistry()
	default:
		return mbrtype.NewRegistry()
	}
}
