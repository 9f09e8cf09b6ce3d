// Package ask implements the dialog protocol the engine uses to talk to
// whatever UI is hosting it. The engine never reads from stdin or any other
// input stream directly; instead it builds a typed request describing one
// prompt and hands it to the context's callback, which fills in the result
// before returning. Dispatch is synchronous: the engine blocks until the
// callback returns, there is no concurrency in this protocol.
package ask

import (
	"fmt"

	"github.com/ostafen/partedit/internal/perr"
	"golang.org/x/text/language"
)

// Kind identifies the shape of an ask request.
type Kind int

const (
	KindNumber Kind = iota
	KindString
	KindMenu
	KindYesNo
	KindInfo
	KindWarn
	KindWarnErrno
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindMenu:
		return "menu"
	case KindYesNo:
		return "yesno"
	case KindInfo:
		return "info"
	case KindWarn:
		return "warn"
	case KindWarnErrno:
		return "warn-errno"
	default:
		return "unknown"
	}
}

// MenuItem is one selectable entry in a KindMenu request.
type MenuItem struct {
	Key         string
	Name        string
	Description string
}

// Request is the common envelope for every ask kind. Each kind has its own
// typed result-setter (SetNumber, SetString, SetMenuKey, SetYesNo) so a
// callback written for one kind cannot accidentally populate the wrong
// field — a mistake the teacher's single untyped ask callback would not
// catch until runtime.
type Request struct {
	Kind   Kind
	Query  string
	// Locale is stamped by label.Context.Dispatch before the request
	// reaches the host callback, letting the host render its prompt text
	// in the session's language. A request built and dispatched directly
	// through ask.Dispatch (bypassing the Context) carries the zero Tag.
	Locale language.Tag

	// Number payload.
	Low, Default, High int64
	Base               int // 10 or 16, for display/parsing hints
	Unit               string
	AllowRelative      bool

	// String payload.
	Hint string

	// Menu payload.
	Items      []MenuItem
	DefaultKey string

	// Message payload (info/warn/warn-errno).
	Message string
	Err     error // set for warn-errno

	numberResult int64
	stringResult string
	menuResult   string
	yesNoResult  bool
	cancelled    bool
}

// NewNumber builds a number request.
func NewNumber(query string, low, def, high int64) *Request {
	return &Request{Kind: KindNumber, Query: query, Low: low, Default: def, High: high, Base: 10}
}

// NewString builds a string request.
func NewString(query, hint string) *Request {
	return &Request{Kind: KindString, Query: query, Hint: hint}
}

// NewMenu builds a menu request.
func NewMenu(query string, items []MenuItem, defaultKey string) *Request {
	return &Request{Kind: KindMenu, Query: query, Items: items, DefaultKey: defaultKey}
}

// NewYesNo builds a yes/no request.
func NewYesNo(query string) *Request {
	return &Request{Kind: KindYesNo, Query: query}
}

// NewInfo builds a fire-and-forget informational message.
func NewInfo(message string) *Request {
	return &Request{Kind: KindInfo, Message: message}
}

// NewWarn builds a fire-and-forget warning message.
func NewWarn(message string) *Request {
	return &Request{Kind: KindWarn, Message: message}
}

// NewWarnErrno builds a warning message carrying an underlying error.
func NewWarnErrno(message string, err error) *Request {
	return &Request{Kind: KindWarnErrno, Message: message, Err: err}
}

// SetNumber fills in the result of a KindNumber request. It panics if
// called on a request of a different kind — callback authors get an
// immediate, loud failure instead of a silently ignored value.
func (r *Request) SetNumber(v int64) {
	r.mustBe(KindNumber)
	r.numberResult = v
}

// Number returns the filled-in number result.
func (r *Request) Number() int64 { return r.numberResult }

// SetString fills in the result of a KindString request.
func (r *Request) SetString(v string) {
	r.mustBe(KindString)
	r.stringResult = v
}

// String returns the filled-in string result.
func (r *Request) String() string { return r.stringResult }

// SetMenuKey fills in the result of a KindMenu request.
func (r *Request) SetMenuKey(key string) {
	r.mustBe(KindMenu)
	r.menuResult = key
}

// MenuKey returns the filled-in menu choice.
func (r *Request) MenuKey() string { return r.menuResult }

// SetYesNo fills in the result of a KindYesNo request.
func (r *Request) SetYesNo(v bool) {
	r.mustBe(KindYesNo)
	r.yesNoResult = v
}

// YesNo returns the filled-in yes/no result.
func (r *Request) YesNo() bool { return r.yesNoResult }

// Cancel marks the request as escape-cancelled by the user. Callers must
// check Cancelled() (or rely on Callback's EscapeCancel error) before
// reading any result field.
func (r *Request) Cancel() { r.cancelled = true }

// Cancelled reports whether the user escaped out of the dialog.
func (r *Request) Cancelled() bool { return r.cancelled }

func (r *Request) mustBe(k Kind) {
	if r.Kind != k {
		panic(fmt.Sprintf("ask: SetXxx for kind %s called on a %s request", k, r.Kind))
	}
}

// Callback is the host-supplied dialog handler. The engine calls it
// synchronously for every ask request; the host is expected to either
// populate the request's result via its typed setter and return nil, or
// call Cancel and return a perr.EscapeCancel-kind error.
type Callback func(req *Request) error

// Dispatch sends req to cb. A non-nil error from the callback is returned
// as is; when the callback returns nil but cancelled req, Dispatch returns
// an EscapeCancel error.
func Dispatch(cb Callback, req *Request) error {
	if cb == nil {
		return perr.New(perr.Unsupported, "no ask callback registered")
	}
	if err := cb(req); err != nil {
		return err
	}
	if req.Cancelled() {
		return perr.New(perr.EscapeCancel, "dialog cancelled")
	}
	return nil
}
