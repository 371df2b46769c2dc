package jobs

// JobState is the lifecycle state of a Job, persisted as its label.
type JobState string

const (
	// JobStateDraft is not yet open for applications.
	JobStateDraft JobState = "DRAFT"
	// JobStateOpen accepts applications.
	JobStateOpen JobState = "OPEN"
	// JobStateClosed no longer accepts applications.
	JobStateClosed JobState = "CLOSED"
	// JobStateCancelled finished without hiring anyone.
	JobStateCancelled JobState = "CANCELLED"
	// JobStateDone finished hiring someone.
	JobStateDone JobState = "DONE"
)

const (
	TriggerOpen   Trigger = "open"
	TriggerClose  Trigger = "close"
	TriggerCancel Trigger = "cancel"
	TriggerFinish Trigger = "finish"
	TriggerReopen Trigger = "reopen"
)

// JobLifecycle is the transition table for jobs. DONE and CANCELLED are
// terminal; DRAFT is only left through open.
var JobLifecycle = MustStateMachine("job", JobStateDraft,
	[]JobState{JobStateDraft, JobStateOpen, JobStateClosed, JobStateCancelled, JobStateDone},
	Transition[JobState]{Trigger: TriggerOpen, From: []JobState{JobStateDraft}, To: JobStateOpen},
	Transition[JobState]{Trigger: TriggerClose, From: []JobState{JobStateOpen}, To: JobStateClosed},
	Transition[JobState]{Trigger: TriggerCancel, From: []JobState{JobStateOpen, JobStateClosed}, To: JobStateCancelled},
	Transition[JobState]{Trigger: TriggerFinish, From: []JobState{JobStateOpen, JobStateClosed}, To: JobStateDone},
	Transition[JobState]{Trigger: TriggerReopen, From: []JobState{JobStateClosed}, To: JobStateOpen},
)

// ApplicationState is the lifecycle state of an Application.
type ApplicationState string

const (
	ApplicationStateDraft     ApplicationState = "DRAFT"
	ApplicationStateSubmitted ApplicationState = "SUBMITTED"
	ApplicationStateAccepted  ApplicationState = "ACCEPTED"
	ApplicationStateRejected  ApplicationState = "REJECTED"
)

// ApplicationLifecycle declares the application states with DRAFT as the
// creation state. It has no transitions; callers that own the business rules
// for submission and review add them with Extend and hand the result to
// WithApplicationLifecycle.
var ApplicationLifecycle = MustStateMachine("application", ApplicationStateDraft,
	[]ApplicationState{
		ApplicationStateDraft,
		ApplicationStateSubmitted,
		ApplicationStateAccepted,
		ApplicationStateRejected,
	},
)
