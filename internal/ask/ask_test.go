package ask_test

import (
	"errors"
	"testing"

	"github.com/ostafen/partedit/internal/ask"
	"github.com/ostafen/partedit/internal/perr"
	"github.com/stretchr/testify/require"
)

func TestDispatchNumberHappyPath(t *testing.T) {
	req := ask.NewNumber("start sector", 2048, 2048, 1000000)

	err := ask.Dispatch(func(r *ask.Request) error {
		r.SetNumber(4096)
		return nil
	}, req)

	require.NoError(t, err)
	require.Equal(t, int64(4096), req.Number())
}

func TestDispatchCancelYieldsEscapeCancel(t *testing.T) {
	req := ask.NewYesNo("proceed?")

	err := ask.Dispatch(func(r *ask.Request) error {
		r.Cancel()
		return nil
	}, req)

	require.Error(t, err)
	require.True(t, perr.Is(err, perr.EscapeCancel))
}

func TestDispatchPropagatesCallbackError(t *testing.T) {
	req := ask.NewString("name", "")
	boom := errors.New("boom")

	err := ask.Dispatch(func(r *ask.Request) error {
		return boom
	}, req)

	require.ErrorIs(t, err, boom)
}

func TestSetterPanicsOnWrongKind(t *testing.T) {
	req := ask.NewNumber("n", 0, 0, 10)
	require.Panics(t, func() {
		req.SetString("oops")
	})
}

func TestDispatchNoCallbackIsUnsupported(t *testing.T) {
	err := ask.Dispatch(nil, ask.NewInfo("hi"))
	require.True(t, perr.Is(err, perr.Unsupported))
}
