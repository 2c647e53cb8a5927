package utils

import (
	"github.com/disasterlabs/beacon/utils/flag"
	Logger "github.com/disasterlabs/beacon/utils/log"
	"gopkg.in/DataDog/dd-trace-go.v1/profiler"
)

// StartProfiler starts the Datadog continuous profiler. Call it once from
// main alongside StartTracer.
func StartProfiler() {
	env := "development"
	if !*flag.IsDevelopment {
		env = "production"
	}

	if err := profiler.Start(
		profiler.WithService(*flag.ServiceName),
		profiler.WithEnv(env),
		profiler.WithProfileTypes(
			profiler.CPUProfile,
			profiler.HeapProfile,
			// The profiles below are disabled by
			// default to keep overhead low, but
			// can be enabled as needed.
			// profiler.BlockProfile,
			// profiler.MutexProfile,
			// profiler.GoroutineProfile,
		),
	); err != nil {
		Logger.Log.Fatal(err)
	}
}

// Stop profiler, OK to be closed multiple times
func CloseProfiler() {
	profiler.Stop()
}
