package model

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/secmon-lab/iract/pkg/domain/types"
)

// SessionID identifies one browser session
type SessionID string

// NewSessionID generates a new UUID v4 SessionID
func NewSessionID() SessionID {
	return SessionID(uuid.New().String())
}

// Session is the form state of one browser session. All mutation goes through
// its methods, which hold the lock only for in-memory updates and never across
// a network call.
//
// Every network-backed transition captures the current generation when it
// starts. Selecting a template, submitting and resetting advance the
// generation, so a completion that arrives for an older generation is stale
// and gets discarded instead of overwriting newer state.
type Session struct {
	mu sync.Mutex

	id         SessionID
	state      types.SessionState
	generation uint64
	lastSeen   time.Time

	templates          []*Template
	selectedTemplateID int64
	brandURL           string
	schema             FieldSchema
	form               FormValue
	result             *SubmissionResult
	errMsg             string
}

// NewSession creates an idle session
func NewSession(id SessionID) *Session {
	return &Session{
		id:       id,
		state:    types.SessionStateIdle,
		lastSeen: time.Now().UTC(),
	}
}

// ID returns the session identifier
func (s *Session) ID() SessionID {
	return s.id
}

// SessionView is an immutable copy of a session, used for rendering
type SessionView struct {
	ID                 SessionID
	State              types.SessionState
	Templates          []*Template
	SelectedTemplateID int64
	BrandURL           string
	Schema             FieldSchema
	Form               FormValue
	Result             *SubmissionResult
	Error              string
}

// HasSchema reports whether a schema is loaded
func (v SessionView) HasSchema() bool {
	return v.Schema != nil
}

// View returns a snapshot of the session
func (s *Session) View() SessionView {
	s.mu.Lock()
	defer s.mu.Unlock()

	return SessionView{
		ID:                 s.id,
		State:              s.state,
		Templates:          append([]*Template(nil), s.templates...),
		SelectedTemplateID: s.selectedTemplateID,
		BrandURL:           s.brandURL,
		Schema:             s.schema,
		Form:               s.form.Clone(),
		Result:             s.result,
		Error:              s.errMsg,
	}
}

// Touch records activity on the session
func (s *Session) Touch(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen = now
}

// LastSeen returns the time of the last recorded activity
func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// SetTemplates replaces the cached template list used by the selector
func (s *Session) SetTemplates(templates []*Template) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.templates = append([]*Template(nil), templates...)
}

// SetError records a user-facing message without changing the state
func (s *Session) SetError(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errMsg = msg
}

// BeginSelect clears the previous schema, form, result and error, records the
// chosen template and moves to SchemaLoading. It returns the generation the
// schema fetch must present on completion.
func (s *Session) BeginSelect(t *Template) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.generation++
	s.selectedTemplateID = t.ID
	s.brandURL = t.URL
	s.schema = nil
	s.form = nil
	s.result = nil
	s.errMsg = ""
	s.state = types.SessionStateSchemaLoading
	return s.generation
}

// CompleteSchema installs a fetched schema and its initial form. It returns
// false and changes nothing when gen is stale.
func (s *Session) CompleteSchema(gen uint64, schema FieldSchema) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		return false
	}
	s.schema = schema
	s.form = NewFormValue(schema)
	s.state = types.SessionStateSchemaReady
	return true
}

// FailSchema clears the schema and moves to Error with msg. It returns false
// and changes nothing when gen is stale.
func (s *Session) FailSchema(gen uint64, msg string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		return false
	}
	s.schema = nil
	s.form = nil
	s.errMsg = msg
	s.state = types.SessionStateError
	return true
}

// SetField applies one field edit to the form. Unknown names and mismatched
// kinds are ignored.
func (s *Session) SetField(name string, value FieldValue) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.form == nil {
		return
	}
	s.form = s.form.SetField(name, value)
}

// SubmitRequest is what a submission needs, captured under the session lock
type SubmitRequest struct {
	Generation uint64
	BrandURL   string
	Schema     FieldSchema
	Form       FormValue
}

// BeginSubmit moves to Submitting and captures the payload inputs. ok is false
// when no schema is loaded; nothing changes in that case.
func (s *Session) BeginSubmit() (req SubmitRequest, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.schema == nil {
		return SubmitRequest{}, false
	}

	s.generation++
	s.state = types.SessionStateSubmitting
	s.errMsg = ""
	return SubmitRequest{
		Generation: s.generation,
		BrandURL:   s.brandURL,
		Schema:     s.schema,
		Form:       s.form.Clone(),
	}, true
}

// CompleteSubmit stores the result and moves to ResultReady. It returns false
// and changes nothing when gen is stale.
func (s *Session) CompleteSubmit(gen uint64, result *SubmissionResult) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		return false
	}
	s.result = result
	s.state = types.SessionStateResultReady
	return true
}

// FailSubmit moves to Error with msg. Schema, form and any earlier result are
// kept. It returns false and changes nothing when gen is stale.
func (s *Session) FailSubmit(gen uint64, msg string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		return false
	}
	s.errMsg = msg
	s.state = types.SessionStateError
	return true
}

// Reset discards edits, the result and the error message without touching the
// schema. The state becomes SchemaReady when a schema is loaded, else Idle.
// In-flight requests become stale.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.generation++
	s.result = nil
	s.errMsg = ""
	if s.schema != nil {
		s.form = ResetForm(s.schema)
		s.state = types.SessionStateSchemaReady
		return
	}
	s.form = nil
	s.state = types.SessionStateIdle
}

// ProductURL returns the URL of the current result, if any
func (s *Session) ProductURL() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.result == nil {
		return ""
	}
	return s.result.ProductURL
}
