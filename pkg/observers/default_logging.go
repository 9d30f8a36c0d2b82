package observers

import (
	"github.com/anggasct/intersection"
	"github.com/anggasct/intersection/pkg/logging"
)

// NewDefaultLoggingObserver creates a logging observer configured from
// LOG_LEVEL and LOG_FORMAT, labeling roads with the default names
func NewDefaultLoggingObserver() *LoggingObserver {
	return NewLoggingObserver(logging.NewFromEnv(), intersection.DefaultRoadNames())
}
