package reputation

// Verdict is the tri-state outcome of a check.
type Verdict int

const (
	VerdictAllowed Verdict = iota
	VerdictRejected
	VerdictError
)

func (v Verdict) String() string {
	switch v {
	case VerdictAllowed:
		return "allowed"
	case VerdictRejected:
		return "rejected"
	case VerdictError:
		return "error"
	default:
		return "unknown"
	}
}

// Result is what Check returns. Exactly one of Message (Rejected) or Kind (Error) is
// meaningful, selected by Verdict.
type Result struct {
	Verdict Verdict
	Message string    // rejection text for VerdictRejected
	Kind    ErrorKind // classification for VerdictError

	// Detail is the remote "message" field when the API sent one. It is for logs,
	// never for end users.
	Detail string
}

func Allowed() Result {
	return Result{Verdict: VerdictAllowed}
}

func Rejected(message string) Result {
	return Result{Verdict: VerdictRejected, Message: message}
}

func Failed(kind ErrorKind) Result {
	return Result{Verdict: VerdictError, Kind: kind}
}

func (r Result) IsAllowed() bool  { return r.Verdict == VerdictAllowed }
func (r Result) IsRejected() bool { return r.Verdict == VerdictRejected }
func (r Result) IsError() bool    { return r.Verdict == VerdictError }

// UserMessage is the text to surface to the end user when the triggering action is
// aborted. It is empty for allowed results.
func (r Result) UserMessage() string {
	switch r.Verdict {
	case VerdictRejected:
		return r.Message
	case VerdictError:
		return r.Kind.Message()
	default:
		return ""
	}
}

// Outcome is a low-cardinality label for logs and metrics.
func (r Result) Outcome() string {
	if r.Verdict == VerdictError {
		return string(r.Kind)
	}
	return r.Verdict.String()
}
