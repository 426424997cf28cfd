package types

// SessionState is the stage a form session is in
type SessionState string

const (
	SessionStateIdle          SessionState = "IDLE"
	SessionStateSchemaLoading SessionState = "SCHEMA_LOADING"
	SessionStateSchemaReady   SessionState = "SCHEMA_READY"
	SessionStateSubmitting    SessionState = "SUBMITTING"
	SessionStateResultReady   SessionState = "RESULT_READY"
	SessionStateError         SessionState = "ERROR"
)

// Busy reports whether a network call is in flight for the session
func (s SessionState) Busy() bool {
	return s == SessionStateSchemaLoading || s == SessionStateSubmitting
}

// String returns the string representation of the session state
func (s SessionState) String() string {
	return string(s)
}
