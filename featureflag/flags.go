package featureflag

type Flag string

const (
	// Fans are sampled over the closed field of view interval, which makes
	// them symmetric around their view angle.
	FlagSymmetricFan Flag = "SYMMETRIC_FAN"

	// Fans are cast on the request goroutine instead of the worker pool.
	FlagSequentialCast Flag = "SEQUENTIAL_CAST"

	// Shapes that can't be evaluated are counted but not logged.
	FlagDisableFaultLogs Flag = "DISABLE_FAULT_LOGS"
)

// Known returns the flags understood by the server.
func Known() []Flag {
	return []Flag{
		FlagSymmetricFan,
		FlagSequentialCast,
		FlagDisableFaultLogs,
	}
}
