package sim

import "errors"

// Sentinel errors returned by simulator construction and execution.
// Callers match them with errors.Is; messages carry the offending detail.
var (
	ErrInvalidTask          = errors.New("invalid task")
	ErrDuplicateTask        = errors.New("duplicate task id")
	ErrNoMachines           = errors.New("at least one machine is required")
	ErrInvalidMachineConfig = errors.New("invalid machine config")
	ErrUnschedulable        = errors.New("unschedulable task")
	ErrUnknownPolicy        = errors.New("unknown selection policy")
	ErrInvalidAlpha         = errors.New("invalid DPE alpha")
	ErrAlreadyRun           = errors.New("simulator has already run")
)
