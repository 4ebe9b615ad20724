package emitter

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/Wolfnicos/DevizElite/internal/catalog"
	cfgpkg "github.com/Wolfnicos/DevizElite/internal/config"
	"github.com/Wolfnicos/DevizElite/internal/sink"
	"github.com/Wolfnicos/DevizElite/internal/sink/mocks"
)

type stubProvider struct {
	name     string
	products []catalog.Product
	err      error
}

func (p stubProvider) Name() string { return p.name }

func (p stubProvider) Products(context.Context) ([]catalog.Product, error) {
	return p.products, p.err
}

func discardLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestNew_Defaults(t *testing.T) {
	e, err := New(cfgpkg.Config{OutputPath: "out.json"}, discardLogger())
	require.NoError(t, err)
	require.Len(t, e.providers, 1)
	require.IsType(t, catalog.StaticProvider{}, e.providers[0])
	require.IsType(t, &sink.FileSink{}, e.outSink)
}

func TestNew_StdoutOutput(t *testing.T) {
	e, err := New(cfgpkg.Config{OutputPath: cfgpkg.StdoutPath}, discardLogger())
	require.NoError(t, err)
	require.IsType(t, &sink.JSONSink{}, e.outSink)
}

func TestNew_EmptyOutputPath(t *testing.T) {
	_, err := New(cfgpkg.Config{}, discardLogger())
	require.ErrorIs(t, err, ErrNoOutput)
}

func TestNew_WithProvidersRequiresOne(t *testing.T) {
	_, err := New(cfgpkg.Config{OutputPath: "out.json"}, discardLogger(), WithProviders())
	require.ErrorIs(t, err, ErrNoProviders)
}

func TestRun_PublishesSeed(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ms := mocks.NewMockSink(ctrl)

	var got []catalog.Product
	ms.EXPECT().Publish(gomock.Any(), gomock.AssignableToTypeOf([]catalog.Product{})).DoAndReturn(
		func(_ context.Context, p []catalog.Product) error { got = p; return nil },
	).Times(1)

	e, err := New(cfgpkg.Config{OutputPath: "unused"}, discardLogger(), WithSink(ms))
	require.NoError(t, err)

	require.NoError(t, e.Run(context.Background()))
	require.Equal(t, catalog.Seed(), got)
}

func TestRun_ProvidersInOrder(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	a := catalog.Product{ID: "a"}
	b := catalog.Product{ID: "b"}
	c := catalog.Product{ID: "c"}

	ms := mocks.NewMockSink(ctrl)
	ms.EXPECT().Publish(gomock.Any(), []catalog.Product{a, b, c}).Return(nil)

	e, err := New(cfgpkg.Config{OutputPath: "unused"}, discardLogger(),
		WithSink(ms),
		WithProviders(
			stubProvider{name: "first", products: []catalog.Product{a, b}},
			stubProvider{name: "second", products: []catalog.Product{c}},
		),
	)
	require.NoError(t, err)
	require.NoError(t, e.Run(context.Background()))
}

func TestRun_ProviderErrorSkipsPublish(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ms := mocks.NewMockSink(ctrl)
	ms.EXPECT().Publish(gomock.Any(), gomock.Any()).Times(0)

	boom := errors.New("boom")
	e, err := New(cfgpkg.Config{OutputPath: "unused"}, discardLogger(),
		WithSink(ms),
		WithProviders(stubProvider{name: "inies", err: boom}),
	)
	require.NoError(t, err)

	err = e.Run(context.Background())
	require.ErrorIs(t, err, boom)
	require.ErrorContains(t, err, "provider inies")
}

func TestRun_PublishErrorPropagates(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ms := mocks.NewMockSink(ctrl)
	ms.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(sink.ErrFilesystem)

	e, err := New(cfgpkg.Config{OutputPath: "unused"}, discardLogger(), WithSink(ms))
	require.NoError(t, err)

	require.ErrorIs(t, e.Run(context.Background()), sink.ErrFilesystem)
}

func TestRun_WritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products_fr_be.json")

	e, err := New(cfgpkg.Config{OutputPath: path}, discardLogger())
	require.NoError(t, err)
	require.NoError(t, e.Run(context.Background()))

	b, err := os.ReadFile(path)
	require.NoError(t, err)

	var got []map[string]any
	require.NoError(t, json.Unmarshal(b, &got))
	require.Len(t, got, 1)
	require.Equal(t, map[string]any{
		"id":       "fr-EX",
		"nameFR":   "Exemple INIES",
		"nameEN":   "Example INIES",
		"category": "Gros œuvre",
		"country":  "FR",
		"price":    100.0,
		"unit":     "u",
	}, got[0])
}
