package store

import (
	"strconv"

	"github.com/mcncl/jsonkit/internal/errors"
)

// SessionKey is the store key holding the saved session.
const SessionKey = "jsonFormatter_data"

// Session is the last input together with the indent width it was
// formatted with.
type Session struct {
	Input      string `json:"input"`
	IndentSize string `json:"indentSize,omitempty"`
}

// Indent returns the saved indent width, or 0 when none was saved.
func (s Session) Indent() int {
	n, err := strconv.Atoi(s.IndentSize)
	if err != nil || n < 1 {
		return 0
	}
	return n
}

// SaveSession stores input and indent under SessionKey.
func SaveSession(st Store, input string, indent int) error {
	sess := Session{Input: input}
	if indent > 0 {
		sess.IndentSize = strconv.Itoa(indent)
	}
	data, err := json.Marshal(sess)
	if err != nil {
		return errors.NewStateError("failed to encode session", err)
	}
	return st.Set(SessionKey, string(data))
}

// LoadSession returns the saved session. It fails with ErrNoSavedInput
// when nothing usable was saved.
func LoadSession(st Store) (Session, error) {
	raw, ok := st.Get(SessionKey)
	if !ok {
		return Session{}, errors.NewStateError("nothing saved yet", errors.ErrNoSavedInput)
	}
	var sess Session
	if err := json.Unmarshal([]byte(raw), &sess); err != nil {
		return Session{}, errors.NewStateError("saved session is corrupt", err)
	}
	if sess.Input == "" {
		return Session{}, errors.NewStateError("saved session has no input", errors.ErrNoSavedInput)
	}
	return sess, nil
}

// ClearSession forgets the saved session.
func ClearSession(st Store) error {
	return st.Delete(SessionKey)
}
