package clients

import (
	"encoding/json"
	"fmt"
	"time"

	"studytrack-activity-svc/src/internal/config"
	"studytrack-activity-svc/src/internal/models"

	"github.com/streadway/amqp"
)

// Publisher emits audit messages about served and regenerated histories.
type Publisher struct {
	channel *amqp.Channel
	cfg     *config.RabbitMQConfig
}

func NewPublisher(cfg *config.Configuration, channel *amqp.Channel) *Publisher {
	return &Publisher{
		channel: channel,
		cfg:     &cfg.Queue.RabbitMQ,
	}
}

// PublishAudit publishes one audit message; failures are logged and returned
// but never block the request path.
func (p *Publisher) PublishAudit(studentID, email, serviceName, action, supervisor string) error {
	message := models.AuditMessage{
		StudentID:   studentID,
		Email:       email,
		ServiceName: serviceName,
		Action:      action,
		Supervisor:  supervisor,
		Timestamp:   time.Now(),
	}

	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal audit message: %w", err)
	}

	err = p.channel.Publish(
		p.cfg.Exchange,
		p.cfg.RoutingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
			Timestamp:   time.Now(),
		},
	)
	if err != nil {
		log.WithError(err).Error("Failed to publish audit message")
		return fmt.Errorf("failed to publish audit message: %w", err)
	}

	log.WithFields(map[string]interface{}{
		"student_id": studentID,
		"action":     action,
	}).Debug("Audit message published")
	return nil
}
