package errors

type ExitCode int

const (
	// Usage errors, e.g. unknown flags or missing arguments.
	UsageExitCode ExitCode = 64

	// Configuration could not be read or parsed.
	ConfigReadFailureExitCode  = 70
	ConfigParseFailureExitCode = 71

	// Bindings were parsed but could not be installed into a container.
	InstallFailureExitCode = 80

	// Container specific exit codes, one per injection failure kind.
	ResolveFailureExitCode          = 90
	UnresolvableTypeExitCode        = 91
	CircularDependencyExitCode      = 92
	ConstructionTimeoutExitCode     = 93
	AmbiguousConstructorExitCode    = 94
	InvalidResolutionTargetExitCode = 95
	ConstructionFailureExitCode     = 96

	DisposeFailureExitCode = 100
)
