package console

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"basiswatch/internal/application/port"
)

// alert text is formatted for Telegram HTML; strip the markup for terminals
var htmlTags = regexp.MustCompile(`</?(?:b|i|code|pre)>`)

// Sink prints alerts to stdout. Used when Telegram is disabled so the signal
// stream is still visible in a terminal session.
type Sink struct{}

func NewSink() *Sink { return &Sink{} }

func (s *Sink) Send(ctx context.Context, text string) bool {
	fmt.Printf("\n%s\n%s\n\n", time.Now().Format("2006-01-02 15:04:05"), htmlTags.ReplaceAllString(text, ""))
	return true
}

var _ port.Notifier = (*Sink)(nil)
