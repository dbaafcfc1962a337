package mail

// Kind classifies an outbound message. It picks the sender identity and the
// template frame; the lifecycle engine decides which kind each milestone uses.
type Kind int

const (
	KindSuccess Kind = iota
	KindAwaiting
	KindFailure
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindSuccess:
		return "success"
	case KindAwaiting:
		return "awaiting"
	case KindFailure:
		return "failure"
	case KindInternal:
		return "internal"
	default:
		return "unknown"
	}
}

type Recipient struct {
	Name  string
	Email string
}

type Attachment struct {
	Name string
	Path string
}

type EmailSender struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}
