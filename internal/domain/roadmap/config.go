package roadmap

import "time"

// EngineConfig bounds how much of a profile is scheduled per call.
type EngineConfig struct {
	TopSubjects         int
	TemplatesPerSubject int
}

// Config holds runtime knobs for the roadmap service.
type Config struct {
	Engine           EngineConfig
	BatchConcurrency int
	CacheTTL         time.Duration
	Jobs             JobConfig
}

// JobConfig governs retries of asynchronous generation.
type JobConfig struct {
	MaxAttempts int
	BaseBackoff time.Duration
}
