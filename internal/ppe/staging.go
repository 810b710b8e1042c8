package ppe

// Kind distinguishes the two batch types. A stage holds withdrawal lines
// or return lines, never a mix.
type Kind string

// Batch kinds.
const (
	KindWithdrawal Kind = "withdrawal"
	KindReturn     Kind = "return"
)

// PendingLine is one staged, not-yet-committed line. Transient: it lives
// only in a Stage and is discarded on cancel, on commit, or when the
// stage's person changes.
type PendingLine struct {
	ItemID       int64
	Name         string
	Code         string
	Size         string
	Quantity     int
	ValidityDays int // withdrawals only; expiration = confirmation time + days
}

// Stage is the staging area for a candidate multi-line batch, scoped to
// exactly one person at a time. It holds no persistent state; nothing
// touches the store until the batch is confirmed.
type Stage struct {
	kind     Kind
	personID int64
	lines    []PendingLine
}

// NewStage creates an empty stage of the given kind for a person.
func NewStage(kind Kind, personID int64) *Stage {
	return &Stage{kind: kind, personID: personID}
}

// Kind returns the batch kind.
func (s *Stage) Kind() Kind { return s.kind }

// PersonID returns the person the staged batch is issued to or from.
func (s *Stage) PersonID() int64 { return s.personID }

// Lines returns a copy of the staged lines.
func (s *Stage) Lines() []PendingLine {
	out := make([]PendingLine, len(s.lines))
	copy(out, s.lines)
	return out
}

// Len returns the number of staged lines.
func (s *Stage) Len() int { return len(s.lines) }

// SetPerson switches the stage to a different person. Staged lines are
// scoped to one person, so switching discards them.
func (s *Stage) SetPerson(personID int64) {
	if personID != s.personID {
		s.personID = personID
		s.lines = nil
	}
}

// RemoveLine removes a staged line by position.
func (s *Stage) RemoveLine(index int) error {
	if index < 0 || index >= len(s.lines) {
		return ErrIndexOutOfRange
	}
	s.lines = append(s.lines[:index], s.lines[index+1:]...)
	return nil
}

// Clear discards all staged lines.
func (s *Stage) Clear() {
	s.lines = nil
}

func (s *Stage) add(line PendingLine) {
	s.lines = append(s.lines, line)
}
