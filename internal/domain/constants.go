package domain

import "time"

const (
	DefaultAPIBase               = "https://qcloud.originqc.com.cn"
	DefaultPollInterval          = 1000 * time.Millisecond
	DefaultBatchPollInterval     = 500 * time.Millisecond
	DefaultRequestTimeoutSeconds = 30
	DefaultTaskName              = "qcloud task"
	DefaultTaskStoreFile         = "tasks.db"
)

// Path suffixes appended to the API base to derive each endpoint.
const (
	ComputePath      = "/api/taskApi/submitTask.json"
	InquirePath      = "/api/taskApi/getTaskDetail.json"
	BatchComputePath = "/api/taskApi/submitTaskBatch.json"
	BatchInquirePath = "/api/taskApi/getTaskListDetail.json"
)

// Real-chip limits enforced before submission.
const (
	RealChipMinShots  = 1000
	RealChipMaxShots  = 10000
	RealChipMaxQubits = 6
)

// ResultType is the discriminator embedded in cluster task results.
type ResultType int

const (
	ResultTypeProbabilityMap  ResultType = 1
	ResultTypeExpectation     ResultType = 2
	ResultTypeMultiAmplitude  ResultType = 3
	ResultTypeSingleAmplitude ResultType = 4
)
