package types

// SequenceInput is one sequence submitted for prediction.
type SequenceInput struct {
	// Record identifier; generated when empty.
	// example: sp|B9DFX7|HMA8_ARATH
	ID string `json:"id,omitempty" example:"sp|B9DFX7|HMA8_ARATH"`
	// Free-text description carried into the result.
	Description string `json:"description,omitempty"`
	// Amino-acid residues, one letter per residue.
	// example: MASNLLRFPLPPPSSLHIRPSK
	Seq string `json:"seq" example:"MASNLLRFPLPPPSSLHIRPSK"`
}

// PredictRequest represents a prediction request payload.
type PredictRequest struct {
	// Optional model identifier. If empty, the server default is used.
	// example: tmhmm2
	Model string `json:"model,omitempty" example:"tmhmm2"`
	// Sequences to annotate. At least one is required.
	Sequences []SequenceInput `json:"sequences"`
	// Include the per-residue posterior matrix in each result.
	// example: false
	Posterior bool `json:"posterior,omitempty" example:"false"`
}

// SequenceResult is the prediction for one input sequence.
type SequenceResult struct {
	// example: sp|B9DFX7|HMA8_ARATH
	ID          string `json:"id" example:"sp|B9DFX7|HMA8_ARATH"`
	Description string `json:"description,omitempty"`
	// Label path, one character per residue.
	// example: iiiiMMMMMMMMMMMMMMMMMMMMooo
	Path string `json:"path,omitempty" example:"iiiiMMMMMMMMMMMMMMMMMMMMooo"`
	// Log probability of the most probable state path.
	// example: -2741.3
	LogProb  float64   `json:"log_prob,omitempty" example:"-2741.3"`
	Segments []Segment `json:"segments,omitempty"`
	Stats    Stats     `json:"stats"`
	// Rows of inside, membrane, outside probabilities.
	Posterior [][3]float64 `json:"posterior,omitempty"`
	// Per-sequence failure; other sequences of the batch still succeed.
	// example: empty sequence
	Error string `json:"error,omitempty" example:"empty sequence"`
}

// PredictResponse is returned by POST /predict.
type PredictResponse struct {
	// Request identifier, also logged server-side.
	// example: 9b2f6f7e-3c1e-4c4a-9a55-0d8f7e0c2a11
	ID string `json:"id" example:"9b2f6f7e-3c1e-4c4a-9a55-0d8f7e0c2a11"`
	// Model that served the request.
	// example: tmhmm2
	Model   string           `json:"model" example:"tmhmm2"`
	Results []SequenceResult `json:"results"`
}

// ModelsResponse wraps the list of models returned by GET /models.
type ModelsResponse struct {
	// List of available models.
	Models []Model `json:"models"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: invalid JSON body
	Error string `json:"error" example:"invalid JSON body"`
	// HTTP status code.
	// example: 400
	Code int `json:"code" example:"400"`
}

// InstanceStatus summarizes a loaded model for /status.
type InstanceStatus struct {
	// ID of the model.
	// example: tmhmm2
	ModelID string `json:"model_id" example:"tmhmm2"`
	// Lifecycle state (loading, ready, failed).
	// example: ready
	State string `json:"state" example:"ready"`
	// Last time this model served a request (unix seconds).
	// example: 1700000000
	LastUsed int64 `json:"last_used_unix" example:"1700000000"`
	// Number of states in the compiled model.
	// example: 30
	States int `json:"states" example:"30"`
	// Predictions completed with this model.
	// example: 120
	Served uint64 `json:"served" example:"120"`
	// Load failure, if any.
	Error string `json:"error,omitempty"`
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	// Loaded model instances.
	Instances []InstanceStatus `json:"instances"`
	// Requests currently decoding.
	// example: 2
	Inflight int `json:"inflight" example:"2"`
	// Requests waiting for a decoding slot.
	// example: 0
	QueueLen int `json:"queue_len" example:"0"`
	// Maximum concurrent predictions.
	// example: 4
	MaxConcurrent int `json:"max_concurrent" example:"4"`
	// Maximum queued requests allowed before backpressure triggers.
	// example: 32
	MaxQueueDepth int `json:"max_queue_depth" example:"32"`
	// Last error observed by the manager (if any).
	LastError string `json:"last_error,omitempty"`
	// Uptime of the server in seconds.
	// example: 3600
	UptimeSeconds int64 `json:"uptime_seconds" example:"3600"`
	// Server time in unix seconds.
	// example: 1700000000
	ServerTimeUnix int64 `json:"server_time_unix" example:"1700000000"`
	// Total number of model loads.
	// example: 1
	LoadsTotal uint64 `json:"loads_total" example:"1"`
	// Total number of predicted sequences.
	// example: 5000
	SequencesTotal uint64 `json:"sequences_total" example:"5000"`
	// Overall manager state (idle, loading, ready, error).
	// example: ready
	State string `json:"state" example:"ready"`
}
