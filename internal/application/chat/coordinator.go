package chat

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/omariomari2/wvs-102/internal/domain/ai"
	"github.com/omariomari2/wvs-102/internal/domain/scans"
	"github.com/omariomari2/wvs-102/internal/domain/sessions"
)

const defaultCompletionTimeout = 30 * time.Second

// Coordinator obtains assistant replies for chat turns. It is a boundary
// adapter around the completion service: when the service is unavailable or
// times out, a deterministic rule-based fallback answers instead, so the
// session never stalls on the external dependency.
type Coordinator struct {
	Completer ai.Completer // nil when no completion service is configured
	Timeout   time.Duration
	Log       *logrus.Logger
}

func NewCoordinator(completer ai.Completer, log *logrus.Logger) *Coordinator {
	if log == nil {
		log = logrus.New()
	}
	return &Coordinator{
		Completer: completer,
		Timeout:   defaultCompletionTimeout,
		Log:       log,
	}
}

// Reply returns the assistant text for one chat turn. It always returns a
// non-empty reply.
func (c *Coordinator) Reply(ctx context.Context, userText string, result *scans.Result, history []sessions.Message) string {
	if c.Completer != nil {
		ctx, cancel := context.WithTimeout(ctx, c.Timeout)
		defer cancel()

		reply, err := c.Completer.Complete(ctx, systemPrompt, buildUserPrompt(userText, result, history))
		if err == nil && strings.TrimSpace(reply) != "" {
			return reply
		}
		c.Log.WithField("error", err).Warn("completion service failed, using fallback")
	}
	return Fallback(userText, result)
}
