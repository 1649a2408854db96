package notify

import (
	"context"

	"github.com/MrEthical07/campusride/internal/logging"
)

// LogNotifier writes rendered messages to the log instead of sending them.
// It includes the code and is meant for local development only.
type LogNotifier struct {
	logger logging.Logger
}

func NewLogNotifier(logger logging.Logger) *LogNotifier {
	if logger == nil {
		logger = logging.Nop()
	}
	return &LogNotifier{logger: logger.With("component", "notify.log")}
}

func (n *LogNotifier) Send(ctx context.Context, msg Message) error {
	r, err := Render(msg)
	if err != nil {
		return err
	}
	n.logger.Info(ctx, "verification message",
		"to", msg.To,
		"kind", msg.Kind.String(),
		"language", msg.Language.String(),
		"subject", r.Subject,
		"code", msg.Code,
	)
	return nil
}
