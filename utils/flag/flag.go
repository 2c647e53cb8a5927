/*
flag Package set up cli flags shared across services

Usage:

	Flags listed in this package are shared across boundaries and service-agnostic
	For service dependent flags please define in their respective package
*/

package flag

import (
	"flag"
)

const (
	APIServer = "api_server"
)

var (
	IsDevelopment *bool
	ServiceName   *string
)

// init only registers; parsing belongs to the binary's main so flags
// registered later (including the test runner's) are still known when
// flag.Parse runs.
func init() {
	IsDevelopment = flag.Bool("dev", true, "set to true if the current run is for development. default value is true")
	ServiceName = flag.String("service", APIServer, "name of the service under which logs and traces are reported")
}
