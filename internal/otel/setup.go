package otelsetup

import (
	"context"
	"errors"
	"io"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutlog"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/log/global"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// Option configures Setup.
type Option func(*settings)

type settings struct {
	w       io.Writer
	service string
	version string
}

// WithWriter sends every exporter's output to w instead of stderr.
func WithWriter(w io.Writer) Option { return func(s *settings) { s.w = w } }

// WithService overrides the service name and version on the resource.
func WithService(name, version string) Option {
	return func(s *settings) { s.service, s.version = name, version }
}

// Setup installs global tracer, meter and logger providers and returns their shutdown.
//
// The emitter runs once and exits, so spans and log records are exported as
// they end and metrics are collected a single time on shutdown. Globals are
// only replaced when every provider could be built.
func Setup(ctx context.Context, opts ...Option) (func(context.Context) error, error) {
	s := settings{w: os.Stderr, service: "fetch-products", version: "1.0.0"}
	for _, opt := range opts {
		opt(&s)
	}

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(s.service),
		semconv.ServiceNamespace("devizelite"),
		semconv.ServiceVersion(s.version),
	)

	var stack shutdownStack

	spanExporter, err := stdouttrace.New(stdouttrace.WithWriter(s.w), stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, err
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithSyncer(spanExporter),
	)
	stack.push(tp.Shutdown)

	metricExporter, err := stdoutmetric.New(stdoutmetric.WithWriter(s.w), stdoutmetric.WithPrettyPrint())
	if err != nil {
		return nil, errors.Join(err, stack.run(ctx))
	}
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter)),
	)
	stack.push(mp.Shutdown)

	logExporter, err := stdoutlog.New(stdoutlog.WithWriter(s.w), stdoutlog.WithPrettyPrint())
	if err != nil {
		return nil, errors.Join(err, stack.run(ctx))
	}
	lp := sdklog.NewLoggerProvider(
		sdklog.WithResource(res),
		sdklog.WithProcessor(sdklog.NewSimpleProcessor(logExporter)),
	)
	stack.push(lp.Shutdown)

	otel.SetTracerProvider(tp)
	otel.SetMeterProvider(mp)
	global.SetLoggerProvider(lp)

	return stack.run, nil
}

type shutdownStack []func(context.Context) error

func (s *shutdownStack) push(fn func(context.Context) error) { *s = append(*s, fn) }

// run shuts providers down in reverse registration order. Later calls are no-ops.
func (s *shutdownStack) run(ctx context.Context) error {
	var err error
	for i := len(*s) - 1; i >= 0; i-- {
		err = errors.Join(err, (*s)[i](ctx))
	}
	*s = nil
	return err
}
