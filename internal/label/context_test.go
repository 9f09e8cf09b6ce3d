package label_test

import (
	"testing"

	"github.com/ostafen/partedit/internal/ask"
	"github.com/ostafen/partedit/internal/label"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestNewContextDefaultsLocaleToEnglish(t *testing.T) {
	dev := makeDevice(t, 4)
	ctx := label.NewContext(dev, false, label.NewRegistry())
	require.Equal(t, language.English, ctx.Locale)
}

func TestDispatchStampsContextLocaleOntoRequest(t *testing.T) {
	ctx := &label.Context{Locale: language.French}

	var seen language.Tag
	ctx.Ask = func(req *ask.Request) error {
		seen = req.Locale
		req.SetYesNo(true)
		return nil
	}

	req := ask.NewYesNo("proceed?")
	require.NoError(t, ctx.Dispatch(req))
	require.Equal(t, language.French, seen)
	require.Equal(t, language.French, req.Locale)
}
