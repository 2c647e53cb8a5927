package utils

import (
	"github.com/disasterlabs/beacon/utils/flag"
	Logger "github.com/disasterlabs/beacon/utils/log"
	"github.com/sirupsen/logrus"
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"
)

// StartTracer starts the Datadog tracer. Call it once from main; tests and
// tools that never trace simply skip it.
func StartTracer() {
	env := "development"
	if !*flag.IsDevelopment {
		env = "production"
	}

	tracer.Start(
		tracer.WithService(*flag.ServiceName),
		tracer.WithEnv(env),
	)

	Logger.Log.WithFields(
		logrus.Fields{"service": *flag.ServiceName, "is_development": *flag.IsDevelopment},
	).Info("tracer initialized")
}

// Stop tracer, OK to be closed multiple times
func CloseTracer() {
	tracer.Stop()
}
