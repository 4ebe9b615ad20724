package emitter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	otelmetric "go.opentelemetry.io/otel/metric"
	oteltrace "go.opentelemetry.io/otel/trace"

	"github.com/Wolfnicos/DevizElite/internal/catalog"
	cfgpkg "github.com/Wolfnicos/DevizElite/internal/config"
	"github.com/Wolfnicos/DevizElite/internal/sink"
)

const instrumentationName = "github.com/Wolfnicos/DevizElite"

var (
	// ErrNoProviders is returned by WithProviders when called without providers.
	ErrNoProviders = errors.New("emitter: at least one provider is required")
	// ErrNoOutput is returned by New when no sink is given and the output path is empty.
	ErrNoOutput = errors.New("emitter: output path is empty")
)

// Emitter builds the product sequence from its providers and publishes it.
type Emitter struct {
	Cfg    cfgpkg.Config
	Logger *slog.Logger
	Tracer oteltrace.Tracer
	Meter  otelmetric.Meter

	// Metrics
	RecordsEmitted otelmetric.Int64Counter
	PublishFailed  otelmetric.Int64Counter

	providers []catalog.Provider
	outSink   sink.Sink
}

// Option configures an Emitter.
type Option func(*Emitter) error

// WithSink overrides the default file sink (useful for tests).
func WithSink(s sink.Sink) Option {
	return func(e *Emitter) error { e.outSink = s; return nil }
}

// WithProviders replaces the default static provider. Records are emitted in provider order.
func WithProviders(ps ...catalog.Provider) Option {
	return func(e *Emitter) error {
		if len(ps) == 0 {
			return ErrNoProviders
		}
		e.providers = ps
		return nil
	}
}

// New constructs an Emitter with instance-level instruments.
func New(cfg cfgpkg.Config, logger *slog.Logger, opts ...Option) (*Emitter, error) {
	e := &Emitter{
		Cfg:    cfg,
		Logger: logger,
		Tracer: otel.Tracer(instrumentationName),
		Meter:  otel.Meter(instrumentationName),
	}

	var err error
	if e.RecordsEmitted, err = e.Meter.Int64Counter(
		"devizelite.catalog.records.emitted",
		otelmetric.WithDescription("The number of product records written by fetch-products"),
		otelmetric.WithUnit("{record}"),
	); err != nil {
		return nil, err
	}

	if e.PublishFailed, err = e.Meter.Int64Counter(
		"devizelite.catalog.publish.failed",
		otelmetric.WithDescription("Number of failed catalog publishes"),
		otelmetric.WithUnit("{failure}"),
	); err != nil {
		return nil, err
	}

	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}

	if len(e.providers) == 0 {
		e.providers = []catalog.Provider{catalog.StaticProvider{}}
	}

	if e.outSink == nil {
		switch cfg.OutputPath {
		case "":
			return nil, ErrNoOutput
		case cfgpkg.StdoutPath:
			e.outSink = sink.NewStdoutJSON()
		default:
			e.outSink = sink.NewFileSink(cfg.OutputPath)
		}
	}

	return e, nil
}

// Build collects the records of every provider, in order.
func (e *Emitter) Build(ctx context.Context) ([]catalog.Product, error) {
	ctx, span := e.Tracer.Start(ctx, "emitter.Build")
	defer span.End()

	var out []catalog.Product
	for _, p := range e.providers {
		products, err := e.fetch(ctx, p)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "provider failed")
			return nil, fmt.Errorf("provider %s: %w", p.Name(), err)
		}
		out = append(out, products...)
	}

	span.SetAttributes(attribute.Int("records", len(out)))

	return out, nil
}

func (e *Emitter) fetch(ctx context.Context, p catalog.Provider) ([]catalog.Product, error) {
	ctx, span := e.Tracer.Start(ctx, "emitter.fetch", oteltrace.WithAttributes(attribute.String("provider", p.Name())))
	defer span.End()

	products, err := p.Products(ctx)
	if err != nil {
		return nil, err
	}

	e.Logger.DebugContext(ctx, "emitter.fetch: done", slog.String("provider", p.Name()), slog.Int("records", len(products)))

	return products, nil
}

// Run builds the record sequence and publishes it to the sink.
func (e *Emitter) Run(ctx context.Context) error {
	ctx, span := e.Tracer.Start(ctx, "emitter.Run")
	defer span.End()

	products, err := e.Build(ctx)
	if err != nil {
		return err
	}

	if err := e.outSink.Publish(ctx, products); err != nil {
		e.PublishFailed.Add(ctx, 1)
		span.RecordError(err)
		span.SetStatus(codes.Error, "publish failed")
		return err
	}

	e.RecordsEmitted.Add(ctx, int64(len(products)))
	e.Logger.InfoContext(ctx, "Catalog written", slog.String("path", e.Cfg.OutputPath), slog.Int("records", len(products)))

	return nil
}
