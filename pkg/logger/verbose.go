package logger

import (
	"fmt"

	"k8s.io/klog/v2"
)

// Verbose logs through klog at a fixed verbosity, eg.
// logger.Verbose(logger.ProviderDebug).Infof("exchanging code")
type Verbose int32

// Enabled reports whether klog's -v is at least this level.
func (v Verbose) Enabled() bool {
	return klog.V(klog.Level(v)).Enabled()
}

func (v Verbose) Infof(msg string, args ...interface{}) {
	klog.V(klog.Level(v)).Infof(msg, args...)
}

func (v Verbose) Errorf(err error, msg string, args ...interface{}) {
	klog.V(klog.Level(v)).ErrorS(err, fmt.Sprintf(msg, args...))
}
