package usecase

// User-facing messages shown on the page
const (
	MsgSelectTemplate = "Please select a template first"
	MsgNoResult       = "There is no generated image to download"
	MsgFetchPrefix    = "Failed to fetch dataset: "
	MsgSubmitPrefix   = "Failed to submit form: "
	MsgDownloadPrefix = "Failed to download file: "
	MsgStorePrefix    = "Failed to save template: "
	MsgLoadPrefix     = "Failed to load templates: "
)

// Context keys for error values
const (
	SessionIDKey  = "session_id"
	GenerationKey = "generation"
)
