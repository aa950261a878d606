package stats

/*
This file defines the metrics containers and icecheck collect. New metrics follow the same pattern.
*/

const (
	/****************************** Resolution ***********************************/
	/*
		the number of Resolve calls made against a container (including calls that
		failed)
	*/
	IceResolveCounter = "resolveCounter"

	/*
		the number of Resolve calls that returned an error
	*/
	IceResolveFailureCounter = "resolveFailureCounter"

	/*
		the number of times a cached PerContext instance answered a resolution
	*/
	IcePoolHitCounter = "poolHitCounter"

	/*
		the number of times a construction was abandoned because another goroutine
		held the binding's construction lock past the container's lock timeout
	*/
	IceLockTimeoutCounter = "lockTimeoutCounter"

	/*
		the number of times a key was found again on its own resolution path
	*/
	IceCircularDependencyCounter = "circularDependencyCounter"

	/****************************** Construction *********************************/
	/*
		the number of objects built by constructors, struct plans or factories
	*/
	IceBuildCounter = "buildCounter"

	/*
		the time spent inside constructor and factory calls, not counting the
		resolution of their parameters
	*/
	IceBuildLatency_ms = "buildLatency_ms"

	/****************************** Lifecycle ************************************/
	/*
		the number of instances currently cached in a container's object pool
	*/
	IcePooledGauge = "pooledGauge"

	/*
		the number of pooled instances released by Dispose
	*/
	IceReleasedCounter = "releasedCounter"

	/****************************** icecheck *************************************/
	/*
		the number of bindings installed from configuration files
	*/
	IcecheckInstalledBindingsCounter = "installedBindingsCounter"

	/*
		the time spent loading and installing a configuration file
	*/
	IcecheckLoadLatency_ms = "loadLatency_ms"
)
