package drivers_test

import (
	"testing"

	"github.com/ostafen/partedit/internal/drivers"
	"github.com/stretchr/testify/require"
)

func TestNewRegistryOrderAndNames(t *testing.T) {
	reg := drivers.NewRegistry()
	require.Equal(t, []string{"gpt", "dos", "bsd"}, reg.Names())

	for _, name := range reg.Names() {
		drv, err := reg.New(name)
		require.NoError(t, err)
		require.Equal(t, name, drv.Name())
	}
}
