package cmd

// ExitError carries a specific process exit code out of a command. main
// unwraps it so a run that completed with package failures exits 1 while a
// critical abort exits 2.
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string {
	return e.Message
}
