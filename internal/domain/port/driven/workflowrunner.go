package driven

import "context"

// WorkflowRunner defines the driven port for triggering automation workflows.
type WorkflowRunner interface {
	// DispatchWorkflow fires a manual run of the named workflow file on the
	// given ref. Fire-and-forget: the run's outcome is not observed.
	DispatchWorkflow(ctx context.Context, repoFullName, workflowFile, ref string) error
}
