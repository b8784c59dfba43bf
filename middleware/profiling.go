package middleware

import (
	"github.com/grafana/pyroscope-go"

	"github.com/duynhne/client-service/config"
)

var profiler *pyroscope.Profiler

// InitProfiling starts Pyroscope continuous profiling
func InitProfiling(cfg *config.Config) error {
	name := resolveServiceName(cfg.Profiling.ServiceName)

	var err error
	profiler, err = pyroscope.Start(pyroscope.Config{
		ApplicationName: name,
		ServerAddress:   cfg.Profiling.Endpoint,
		Tags: map[string]string{
			"service":   name,
			"namespace": detectNamespace(),
			"version":   cfg.Service.Version,
		},
		ProfileTypes: []pyroscope.ProfileType{
			pyroscope.ProfileCPU,
			pyroscope.ProfileAllocObjects,
			pyroscope.ProfileAllocSpace,
			pyroscope.ProfileInuseObjects,
			pyroscope.ProfileInuseSpace,
			pyroscope.ProfileGoroutines,
		},
	})
	return err
}

// StopProfiling stops Pyroscope profiling
func StopProfiling() {
	if profiler != nil {
		_ = profiler.Stop()
	}
}
