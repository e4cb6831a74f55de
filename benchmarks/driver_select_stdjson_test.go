//go:build stdjson

package benchmarks_test

import (
	"github.com/reoring/codecgen"
	drv "github.com/reoring/codecgen/source/json"
)

func init() {
	codecgen.SetJSONDriver(drv.Driver())
}
