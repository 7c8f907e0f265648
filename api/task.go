package api

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/meikuraledutech/computegraph"
)

// TaskOutcome is encoded as one of "Unknown", "Success" or "Failure".
type TaskOutcome string

const (
	TaskOutcomeUnknown TaskOutcome = "Unknown"
	TaskOutcomeSuccess TaskOutcome = "Success"
	TaskOutcomeFailure TaskOutcome = "Failure"
)

func (o *TaskOutcome) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: outcome: %v", computegraph.ErrMalformedTask, err)
	}
	switch v := TaskOutcome(s); v {
	case TaskOutcomeUnknown, TaskOutcomeSuccess, TaskOutcomeFailure:
		*o = v
		return nil
	}
	return fmt.Errorf("%w: unknown outcome %q", computegraph.ErrMalformedTask, s)
}

// TaskOutcomeFromModel converts an internal outcome.
func TaskOutcomeFromModel(o computegraph.TaskOutcome) TaskOutcome {
	switch o {
	case computegraph.TaskOutcomeSuccess:
		return TaskOutcomeSuccess
	case computegraph.TaskOutcomeFailure:
		return TaskOutcomeFailure
	default:
		return TaskOutcomeUnknown
	}
}

func (o TaskOutcome) IntoModel() (computegraph.TaskOutcome, error) {
	switch o {
	case TaskOutcomeUnknown:
		return computegraph.TaskOutcomeUnknown, nil
	case TaskOutcomeSuccess:
		return computegraph.TaskOutcomeSuccess, nil
	case TaskOutcomeFailure:
		return computegraph.TaskOutcomeFailure, nil
	}
	return 0, fmt.Errorf("%w: unknown outcome %q", computegraph.ErrMalformedTask, string(o))
}

// Task is the wire form of a task read-model.
type Task struct {
	ID              string                    `json:"id"`
	Namespace       string                    `json:"namespace"`
	ComputeFn       string                    `json:"compute_fn"`
	ComputeGraph    string                    `json:"compute_graph"`
	InvocationID    string                    `json:"invocation_id"`
	InputKey        string                    `json:"input_key"`
	Outcome         TaskOutcome               `json:"outcome"`
	ReducerOutputID *string                   `json:"reducer_output_id"`
	GraphVersion    computegraph.GraphVersion `json:"graph_version"`
}

func TaskFromModel(t computegraph.Task) Task {
	return Task{
		ID:              t.ID.String(),
		Namespace:       t.Namespace,
		ComputeFn:       t.ComputeFnName,
		ComputeGraph:    t.ComputeGraphName,
		InvocationID:    t.InvocationID,
		InputKey:        t.InputNodeOutputKey,
		Outcome:         TaskOutcomeFromModel(t.Outcome),
		ReducerOutputID: t.ReducerOutputID,
		GraphVersion:    t.GraphVersion,
	}
}

func (t Task) IntoModel() (computegraph.Task, error) {
	id, err := uuid.Parse(t.ID)
	if err != nil {
		return computegraph.Task{}, fmt.Errorf("%w: id: %v", computegraph.ErrMalformedTask, err)
	}
	outcome, err := t.Outcome.IntoModel()
	if err != nil {
		return computegraph.Task{}, err
	}
	return computegraph.Task{
		ID:                 id,
		Namespace:          t.Namespace,
		ComputeFnName:      t.ComputeFn,
		ComputeGraphName:   t.ComputeGraph,
		InvocationID:       t.InvocationID,
		InputNodeOutputKey: t.InputKey,
		Outcome:            outcome,
		ReducerOutputID:    t.ReducerOutputID,
		GraphVersion:       t.GraphVersion,
	}, nil
}

// FnOutput is the wire form of one function output.
type FnOutput struct {
	ComputeFn string `json:"compute_fn"`
	ID        string `json:"id"`
}

func FnOutputFromModel(o computegraph.NodeOutput) FnOutput {
	return FnOutput{ComputeFn: o.ComputeFnName, ID: o.ID.String()}
}

func (o FnOutput) IntoModel() (computegraph.NodeOutput, error) {
	id, err := uuid.Parse(o.ID)
	if err != nil {
		return computegraph.NodeOutput{}, fmt.Errorf("%w: output id: %v", computegraph.ErrMalformedTask, err)
	}
	return computegraph.NodeOutput{ID: id, ComputeFnName: o.ComputeFn}, nil
}

// Tasks is the envelope for a list of tasks.
type Tasks struct {
	Tasks []Task `json:"tasks"`
}

// FnOutputs is the envelope for a list of function outputs.
type FnOutputs struct {
	Outputs []FnOutput `json:"outputs"`
}

func TasksFromModel(ts []computegraph.Task) Tasks {
	return Tasks{Tasks: fromModels(ts, TaskFromModel)}
}

func (t Tasks) IntoModel() ([]computegraph.Task, error) {
	return intoModels[computegraph.Task](t.Tasks)
}

func FnOutputsFromModel(outs []computegraph.NodeOutput) FnOutputs {
	return FnOutputs{Outputs: fromModels(outs, FnOutputFromModel)}
}

func (o FnOutputs) IntoModel() ([]computegraph.NodeOutput, error) {
	return intoModels[computegraph.NodeOutput](o.Outputs)
}
