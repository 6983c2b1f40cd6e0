package slack

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/oursky/slurm-deploy-controller/pkg/deploy"

	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackutilsx"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Notifier posts finished deployments to a Slack incoming webhook. It is a
// deploy.Observer; posting happens on its own goroutine.
type Notifier struct {
	logger *zap.Logger
	config *Config
	now    func() time.Time

	lock *sync.Mutex
	// pending holds at most one snapshot per consecutive phase, so it only
	// grows with phase changes.
	pending []deploy.JobStatus
	wake    chan struct{}
}

func NewNotifier(logger *zap.Logger, config *Config) *Notifier {
	return &Notifier{
		logger: logger.Named("slack-notifier"),
		config: config,
		now:    time.Now,
		lock:   new(sync.Mutex),
		wake:   make(chan struct{}, 1),
	}
}

func (n *Notifier) OnStateChange(status deploy.JobStatus) {
	n.lock.Lock()
	if last := len(n.pending) - 1; last >= 0 && n.pending[last].Phase() == status.Phase() {
		n.pending[last] = status
	} else {
		n.pending = append(n.pending, status)
	}
	n.lock.Unlock()

	select {
	case n.wake <- struct{}{}:
	default:
	}
}

func (n *Notifier) Start(ctx context.Context, g *errgroup.Group) error {
	g.Go(func() error {
		n.run(ctx)
		return nil
	})
	return nil
}

func (n *Notifier) drain() []deploy.JobStatus {
	n.lock.Lock()
	defer n.lock.Unlock()

	pending := n.pending
	n.pending = nil
	return pending
}

func (n *Notifier) run(ctx context.Context) {
	var startedAt time.Time
	lastPhase := deploy.PhaseIdle

	for {
		select {
		case <-ctx.Done():
			return
		case <-n.wake:
		}

		for _, s := range n.drain() {
			phase := s.Phase()
			if phase == lastPhase {
				continue
			}
			n.logger.Debug("phase changed", zap.String("phase", string(phase)))

			switch phase {
			case deploy.PhaseRunning:
				startedAt = n.now()
			case deploy.PhaseTerminal:
				// a terminal status not preceded by a running one belongs
				// to an earlier job
				if lastPhase == deploy.PhaseRunning {
					n.notify(ctx, s, n.now().Sub(startedAt).Round(time.Second))
				}
				startedAt = time.Time{}
			}
			lastPhase = phase
		}
	}
}

func (n *Notifier) notify(ctx context.Context, status deploy.JobStatus, runtime time.Duration) {
	const colorGreen = "#16a34a" // green-600
	const colorRed = "#7f1d1d"   // red-900

	cluster := n.config.GetClusterName()

	title := fmt.Sprintf("Deployment of %s has succeeded in %s.", cluster, runtime)
	color := colorGreen
	if isFailure(status.Message) {
		title = fmt.Sprintf("Deployment of %s has failed in %s.", cluster, runtime)
		color = colorRed
	}

	msg := &slack.WebhookMessage{
		Channel:  n.config.GetChannel(),
		Username: n.config.GetUsername(),
		Attachments: []slack.Attachment{{
			Color:      color,
			Title:      title,
			MarkdownIn: []string{"fields"},
			Fields: []slack.AttachmentField{{
				Title: "Message",
				Value: fmt.Sprintf("```%s```", slackutilsx.EscapeMessage(status.Message)),
			}},
		}},
	}

	if err := slack.PostWebhookContext(ctx, n.config.WebhookURL, msg); err != nil {
		n.logger.Warn("failed to send message", zap.Error(err))
		return
	}
	n.logger.Info("sent deployment notification", zap.String("title", title))
}

// isFailure reads the outcome from the panel's message; the status has no
// separate success flag.
func isFailure(message string) bool {
	message = strings.ToLower(message)
	return strings.Contains(message, "fail") || strings.Contains(message, "unavailable")
}
