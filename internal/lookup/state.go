package lookup

import (
	"errors"

	"github.com/aanand-mishra/student-lookup/internal/types"
)

// Status is the phase of the lookup cycle. Exactly one holds at a time.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusSuccess
	StatusNotFound
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusSuccess:
		return "success"
	case StatusNotFound:
		return "not_found"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Kind classifies why a lookup did not produce a student.
type Kind int

const (
	KindNone Kind = iota
	// KindEmptyInput: the trimmed input was empty, the store was not contacted.
	KindEmptyInput
	// KindNotFound: the store answered with zero records.
	KindNotFound
	// KindStore: transport failure, timeout, malformed response or auth failure.
	KindStore
)

func (k Kind) String() string {
	switch k {
	case KindEmptyInput:
		return "empty_input"
	case KindNotFound:
		return "not_found"
	case KindStore:
		return "store_error"
	default:
		return ""
	}
}

var (
	ErrEmptyInput = errors.New("empty input")
	ErrNotFound   = errors.New("student not found")
	ErrStore      = errors.New("record store error")
)

// User-facing messages. Store failures never show the underlying error.
const (
	MessageEmptyInput = "Please enter a student ID."
	MessageNotFound   = "No student with this ID was found in the records."
	MessageStoreError = "Lookup failed. Check the network connection or the backend service and try again."
)

// State is an immutable snapshot of the controller.
//
// Student is set only when Status is StatusSuccess. Kind and Message are
// set only for StatusNotFound and StatusFailed.
type State struct {
	Status  Status
	Query   string
	Student *types.Student
	Kind    Kind
	Message string

	// Generation identifies the submit that produced this state.
	Generation uint64
	// RequestID correlates the state with the operator log.
	RequestID string
}

// Err returns the sentinel error matching s.Kind, or nil.
func (s State) Err() error {
	switch s.Kind {
	case KindEmptyInput:
		return ErrEmptyInput
	case KindNotFound:
		return ErrNotFound
	case KindStore:
		return ErrStore
	default:
		return nil
	}
}

// Supersedes reports whether s is newer than cur. Presenters that receive
// snapshots asynchronously use it to drop ones that arrive out of order:
// a later submit always wins, and within one submit a final state wins
// over Loading.
func (s State) Supersedes(cur State) bool {
	if s.Generation != cur.Generation {
		return s.Generation > cur.Generation
	}
	return cur.Status == StatusLoading && s.Status != StatusLoading
}

// Banner classes used by presenters. EmptyInput and NotFound are both
// mild, user-correctable notices.
const (
	BannerNone   = ""
	BannerNotice = "notice"
	BannerError  = "error"
)

// View is what a presenter draws: a busy flag, at most one banner, and at
// most one result card.
type View struct {
	Loading     bool
	Banner      string
	BannerClass string
	Student     *types.Student
}

// Render maps a state to its view. Submitting clears both the banner and
// the card, so nothing stale is drawn while a query is pending.
func Render(s State) View {
	switch s.Status {
	case StatusLoading:
		return View{Loading: true}
	case StatusSuccess:
		return View{Student: s.Student}
	case StatusNotFound:
		return View{Banner: s.Message, BannerClass: BannerNotice}
	case StatusFailed:
		class := BannerError
		if s.Kind == KindEmptyInput {
			class = BannerNotice
		}
		return View{Banner: s.Message, BannerClass: class}
	default:
		return View{}
	}
}
