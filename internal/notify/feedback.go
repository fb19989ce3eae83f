// Package notify delivers user feedback out of band: an email to the
// maintainers and a GitHub issue on the tracker. Both channels degrade
// gracefully when unconfigured so local and CI environments need no secrets.
package notify

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"
)

// Feedback types accepted from the API.
const (
	TypeBug           = "bug"
	TypeFeature       = "feature"
	TypeNewMedication = "new_medication"
	TypeNewIndication = "new_indication"
)

// ValidType reports whether t is a known feedback type.
func ValidType(t string) bool {
	switch t {
	case TypeBug, TypeFeature, TypeNewMedication, TypeNewIndication:
		return true
	}
	return false
}

// issueLabels maps feedback types onto tracker labels.
var issueLabels = map[string][]string{
	TypeBug:           {"bug", "feedback"},
	TypeFeature:       {"enhancement", "feedback"},
	TypeNewMedication: {"medication", "feedback"},
	TypeNewIndication: {"indication", "feedback"},
}

// Feedback is one user submission.
type Feedback struct {
	Type    string
	Message string
	Contact string
	Meta    map[string]string
}

// Notifier fans a feedback submission out to the configured channels.
type Notifier struct {
	mailer *Mailer
	github *GitHub
	log    zerolog.Logger
}

// NewNotifier creates a Notifier. Either channel may be nil.
func NewNotifier(mailer *Mailer, github *GitHub, log zerolog.Logger) *Notifier {
	return &Notifier{mailer: mailer, github: github, log: log}
}

// Dispatch sends the feedback to every channel, logging failures instead of
// returning them: delivery is best-effort and the API has already accepted
// the submission.
func (n *Notifier) Dispatch(ctx context.Context, fb Feedback) {
	subject := fmt.Sprintf("[RheumAI Feedback] %s", strings.ReplaceAll(fb.Type, "_", " "))
	body := feedbackBody(fb)

	if n.mailer != nil {
		if err := n.mailer.Send(subject, body, fb.Contact); err != nil {
			n.log.Error().Err(err).Str("type", fb.Type).Msg("feedback email failed")
		}
	}

	if n.github != nil {
		title := fmt.Sprintf("[Feedback] %s", strings.ReplaceAll(fb.Type, "_", " "))
		number, err := n.github.CreateIssue(ctx, title, body, issueLabels[fb.Type])
		if err != nil {
			n.log.Error().Err(err).Str("type", fb.Type).Msg("feedback issue failed")
		} else if number > 0 {
			n.log.Info().Int("issue", number).Str("type", fb.Type).Msg("feedback issue created")
		}
	}
}

func feedbackBody(fb Feedback) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Type: %s\n", fb.Type)
	if fb.Contact != "" {
		fmt.Fprintf(&b, "Contact: %s\n", fb.Contact)
	}
	b.WriteString("---\n")
	b.WriteString(fb.Message)
	b.WriteString("\n---\n")

	if len(fb.Meta) > 0 {
		keys := make([]string, 0, len(fb.Meta))
		for k := range fb.Meta {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, "%s: %s\n", k, fb.Meta[k])
		}
	}
	return b.String()
}
