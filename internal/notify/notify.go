// internal/notify/notify.go
package notify

import (
	"context"
	"fmt"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	sestypes "github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	awsclients "loan-assistant/internal/common/aws"
	"loan-assistant/internal/common/config"
	"loan-assistant/internal/common/logger"
	"loan-assistant/internal/models"
)

// Notifier tells the customer about a terminal decision outside the
// chat channel. Failures are logged, never surfaced to the turn.
type Notifier interface {
	NotifyDecision(ctx context.Context, state *models.ApplicationState, message string)
}

// AWSNotifier sends SMS through SNS and, when an address is known,
// email through SES. Both channels are individually config-gated and
// default to off.
type AWSNotifier struct {
	config config.NotificationConfig
	ses    *awsclients.SESClient
	sns    *awsclients.SNSClient
	logger logger.Logger
}

func NewAWSNotifier(cfg config.NotificationConfig, sesClient *awsclients.SESClient, snsClient *awsclients.SNSClient, log logger.Logger) *AWSNotifier {
	return &AWSNotifier{
		config: cfg,
		ses:    sesClient,
		sns:    snsClient,
		logger: log,
	}
}

func (n *AWSNotifier) NotifyDecision(ctx context.Context, state *models.ApplicationState, message string) {
	if n.config.SMS.Enabled && n.sns != nil && state.Phone != "" {
		n.sendSMS(ctx, state, message)
	}
	if n.config.Email.Enabled && n.ses != nil {
		n.sendEmail(ctx, state, message)
	}
}

func (n *AWSNotifier) sendSMS(ctx context.Context, state *models.ApplicationState, message string) {
	_, err := n.sns.Publish(ctx, &sns.PublishInput{
		PhoneNumber: awssdk.String("+91" + state.Phone),
		Message:     awssdk.String(message),
	})
	if err != nil {
		n.logger.Warn("decision sms failed", map[string]interface{}{
			"session_id": state.SessionID,
			"error":      err.Error(),
		})
	}
}

// Customer email addresses are not collected in the conversation, so
// email goes to the configured operations inbox as a decision copy.
func (n *AWSNotifier) sendEmail(ctx context.Context, state *models.ApplicationState, message string) {
	subject := fmt.Sprintf("Update on your loan application %s", state.SessionID)
	_, err := n.ses.SendEmail(ctx, &ses.SendEmailInput{
		Source: awssdk.String(n.config.Email.FromEmail),
		Destination: &sestypes.Destination{
			ToAddresses: []string{n.config.Email.FromEmail},
		},
		Message: &sestypes.Message{
			Subject: &sestypes.Content{Data: awssdk.String(subject)},
			Body: &sestypes.Body{
				Text: &sestypes.Content{Data: awssdk.String(message)},
			},
		},
	})
	if err != nil {
		n.logger.Warn("decision email failed", map[string]interface{}{
			"session_id": state.SessionID,
			"error":      err.Error(),
		})
	}
}

// NoopNotifier is used when both channels are disabled.
type NoopNotifier struct{}

func (NoopNotifier) NotifyDecision(context.Context, *models.ApplicationState, string) {}
