// Package notify provides goVerify.Notifier implementations: Slack, generic
// HTTP webhooks, structured log lines and fan-out over several of them.
package notify

import (
	"context"
	"fmt"

	goVerify "github.com/MrEthical07/goVerify"
	"github.com/slack-go/slack"
)

// SlackConfig identifies the bot and the channel failure messages go to.
type SlackConfig struct {
	Token    string
	Channel  string
	Username string
	// APIURL overrides the Slack Web API base URL. It must end with "/".
	APIURL string
}

// Slack posts failure messages to a channel through the Web API.
type Slack struct {
	client   *slack.Client
	channel  string
	username string
}

var _ goVerify.Notifier = (*Slack)(nil)

// NewSlack returns a Slack notifier.
func NewSlack(cfg SlackConfig) *Slack {
	var opts []slack.Option
	if cfg.APIURL != "" {
		opts = append(opts, slack.OptionAPIURL(cfg.APIURL))
	}
	return &Slack{
		client:   slack.New(cfg.Token, opts...),
		channel:  cfg.Channel,
		username: cfg.Username,
	}
}

// Notify posts message to the configured channel.
func (s *Slack) Notify(ctx context.Context, accountID, message string) error {
	opts := []slack.MsgOption{slack.MsgOptionText(message, false)}
	if s.username != "" {
		opts = append(opts, slack.MsgOptionUsername(s.username))
	}
	if _, _, err := s.client.PostMessageContext(ctx, s.channel, opts...); err != nil {
		return fmt.Errorf("slack notify %s: %w", accountID, err)
	}
	return nil
}
