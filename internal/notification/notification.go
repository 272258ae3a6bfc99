package notification

import (
	"errors"
	"strings"
	"time"

	go_json "github.com/goccy/go-json"
)

type Kind string

const (
	KindInfo    Kind = "info"
	KindSuccess Kind = "success"
	KindWarning Kind = "warning"
	KindError   Kind = "error"
)

func ParseKind(s string) Kind {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindInfo, KindSuccess, KindWarning, KindError:
		return k
	default:
		return KindInfo
	}
}

type Notification struct {
	ID        string    `json:"id"`
	Kind      Kind      `json:"kind"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
	Read      bool      `json:"read"`
	Link      string    `json:"link,omitempty"`
}

var ErrMissingID = errors.New("notification has no id")

// payload is the loose shape pushed over the live channel. Older producers
// send type/message instead of kind/body.
type payload struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
	Read      bool      `json:"read"`
	Link      string    `json:"link"`
}

// Decode parses a pushed event payload and normalizes it. A zero created_at
// is stamped with now.
func Decode(data []byte, now time.Time) (Notification, error) {
	var p payload
	if err := go_json.Unmarshal(data, &p); err != nil {
		return Notification{}, err
	}

	kind := p.Kind
	if kind == "" {
		kind = p.Type
	}
	body := p.Body
	if body == "" {
		body = p.Message
	}

	return Normalize(Notification{
		ID:        p.ID,
		Kind:      Kind(kind),
		Title:     p.Title,
		Body:      body,
		CreatedAt: p.CreatedAt,
		Read:      p.Read,
		Link:      p.Link,
	}, now)
}

func Normalize(n Notification, now time.Time) (Notification, error) {
	n.ID = strings.TrimSpace(n.ID)
	if n.ID == "" {
		return Notification{}, ErrMissingID
	}
	n.Kind = ParseKind(string(n.Kind))
	if n.CreatedAt.IsZero() {
		n.CreatedAt = now
	}
	n.CreatedAt = n.CreatedAt.UTC()
	return n, nil
}
