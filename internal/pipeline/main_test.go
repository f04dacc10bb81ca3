package pipeline

import (
	"testing"

	"go.uber.org/goleak"
)

// The Gemini SDK starts an opencensus view worker from init.
var leakOptions = []goleak.Option{
	goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"),
}

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m, leakOptions...)
}
