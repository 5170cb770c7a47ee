// Copyright 2026 ARS Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package node

import (
	"context"
	"fmt"

	"github.com/arslabs/arsd/internal/config"
	"github.com/arslabs/arsd/internal/version"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	tracesdk "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// setupTracing configures the global tracer provider. Spans are
// submitted to a HTTP(s) endpoint using OTLP, configurable via the
// OTEL_EXPORTER_OTLP_* environment variables, or dumped to stdout
// when tracingStdout is set.
func setupTracing(cfg *config.Config) (func(context.Context) error, error) {
	if !cfg.TracingEnabled {
		return nil, nil
	}
	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName("arsd"),
			semconv.ServiceVersion(version.Version),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build trace resource: %w", err)
	}
	opts := []tracesdk.TracerProviderOption{
		tracesdk.WithResource(res),
	}
	if cfg.TracingStdout {
		exporter, err := stdouttrace.New(
			stdouttrace.WithPrettyPrint(),
		)
		if err != nil {
			return nil, fmt.Errorf(
				"failed to create stdout trace exporter: %w",
				err,
			)
		}
		opts = append(opts, tracesdk.WithBatcher(exporter))
	} else {
		exporterOpts := []otlptracehttp.Option{}
		if cfg.OtlpEndpoint != "" {
			exporterOpts = append(
				exporterOpts,
				otlptracehttp.WithEndpoint(cfg.OtlpEndpoint),
			)
		}
		exporter, err := otlptracehttp.New(
			context.Background(),
			exporterOpts...,
		)
		if err != nil {
			return nil, fmt.Errorf(
				"failed to create OTLP trace exporter: %w",
				err,
			)
		}
		opts = append(opts, tracesdk.WithBatcher(exporter))
	}
	tp := tracesdk.NewTracerProvider(opts...)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})
	return tp.Shutdown, nil
}
