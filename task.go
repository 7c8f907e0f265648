package computegraph

import "github.com/google/uuid"

// TaskOutcome is the terminal state of a task as reported by the executor.
type TaskOutcome int

const (
	TaskOutcomeUnknown TaskOutcome = iota
	TaskOutcomeSuccess
	TaskOutcomeFailure
)

// Task is a read-model of one function invocation within a graph invocation.
// Execution state is owned by the executor; this is what read APIs report.
type Task struct {
	ID                 uuid.UUID
	Namespace          string
	ComputeFnName      string
	ComputeGraphName   string
	InvocationID       string
	InputNodeOutputKey string
	Outcome            TaskOutcome
	ReducerOutputID    *string
	GraphVersion       GraphVersion
}

// NodeOutput is a read-model of one output produced by a compute function.
type NodeOutput struct {
	ID            uuid.UUID
	ComputeFnName string
}
