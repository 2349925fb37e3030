package config

// Backend types
const (
	BackendOpenAI    = "openai"
	BackendGemini    = "gemini"
	BackendLangChain = "langchain"
)

// Planner defaults
const (
	DefaultMaxModelAttempts = 3
	DefaultPromptMaxFiles   = 40
	DefaultPromptMaxHunks   = 6
	DefaultBatchConcurrency = 5
	DefaultBatchMaxRequests = 20
)

// Prompt truncation markers
const (
	MarkerMoreFilesOmitted = "... and %d more files omitted"
	MarkerMoreHunksOmitted = " +%d more"
)
