package logger

// The following constants define the verbosity levels passed to klog.
const (
	// Info levels for informational logs that should be logged all the time.
	Info0 = 0
	Info1 = Info0 + 1
	Info2 = Info1 + 1

	// Debug levels for logs that help diagnose a misbehaving login flow.
	Debug0 = 3
	Debug1 = Debug0 + 1
	Debug2 = Debug1 + 1

	// Trace levels make the logs very chatty.
	Trace0 = 6
	Trace1 = Trace0 + 1
	Trace2 = Trace1 + 1
)

// Packages log through these aliases so the levels are controlled here.
const (
	// Core levels are used in the main package and the gate.
	CoreInfo  = Info0
	CoreDebug = Debug0
	CoreTrace = Trace0

	// Provider levels are used when talking to Canvas.
	ProviderInfo  = Info1
	ProviderDebug = Debug1
	ProviderTrace = Trace1

	// Session levels are used by the session stores.
	SessionInfo  = Info2
	SessionDebug = Debug2
	SessionTrace = Trace2
)
