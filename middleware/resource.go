package middleware

import (
	"context"
	"fmt"
	"os"
	"strings"

	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
)

// unknownService is the default service name when nothing is configured
const unknownService = "unknown-service"

// detectNamespace finds the deployment namespace:
// OTEL_RESOURCE_ATTRIBUTES service.namespace, then the Kubernetes service
// account file, then POD_NAMESPACE, then "default".
func detectNamespace() string {
	for _, attr := range strings.Split(os.Getenv("OTEL_RESOURCE_ATTRIBUTES"), ",") {
		if k, v, ok := strings.Cut(attr, "="); ok && k == "service.namespace" && v != "" {
			return v
		}
	}
	if data, err := os.ReadFile("/var/run/secrets/kubernetes.io/serviceaccount/namespace"); err == nil {
		if ns := strings.TrimSpace(string(data)); ns != "" {
			return ns
		}
	}
	if ns := os.Getenv("POD_NAMESPACE"); ns != "" {
		return ns
	}
	return "default"
}

// resolveServiceName prefers OTEL_SERVICE_NAME over the configured name.
func resolveServiceName(configured string) string {
	if name := os.Getenv("OTEL_SERVICE_NAME"); name != "" {
		return name
	}
	if configured != "" {
		return configured
	}
	return unknownService
}

// CreateResource creates an OpenTelemetry resource describing this process.
// On partial detection failure it returns a minimal resource and an error.
func CreateResource(ctx context.Context, name, version string) (*resource.Resource, error) {
	name = resolveServiceName(name)
	namespace := detectNamespace()

	res, err := resource.New(
		ctx,
		resource.WithFromEnv(),
		resource.WithProcess(),
		resource.WithHost(),
		resource.WithAttributes(
			semconv.ServiceNameKey.String(name),
			semconv.ServiceNamespaceKey.String(namespace),
			semconv.ServiceVersionKey.String(version),
		),
	)
	if err != nil {
		return resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String(name),
			semconv.ServiceNamespaceKey.String(namespace),
		), fmt.Errorf("resource detection partial failure (using fallback): %w", err)
	}

	return res, nil
}

// GetServiceName extracts service name from a resource
func GetServiceName(res *resource.Resource) string {
	if res != nil {
		if v, ok := res.Set().Value(semconv.ServiceNameKey); ok {
			return v.AsString()
		}
	}
	return unknownService
}
