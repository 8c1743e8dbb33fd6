package dispatch

import (
	"fmt"
	"log"

	"github.com/twmb/franz-go/pkg/kgo"

	"scanplant/internal/service/email"
)

// Build assembles the configured channels. Unknown names are an error;
// channels whose backend is unavailable are skipped with a warning.
func Build(channels []string, users userLookup, mailer email.Service, kafkaClient *kgo.Client, topic string) (Sender, error) {
	var senders []Sender
	for _, name := range channels {
		switch name {
		case "inapp":
			senders = append(senders, NewInApp())
		case "email":
			if mailer == nil {
				log.Printf("Warning: email notification channel requested but no mailer is configured")
				continue
			}
			senders = append(senders, NewEmail(users, mailer))
		case "kafka":
			if kafkaClient == nil {
				log.Printf("Warning: kafka notification channel requested but no Kafka client is available")
				continue
			}
			senders = append(senders, NewKafka(kafkaClient, topic))
		default:
			return nil, fmt.Errorf("unknown notification channel %q", name)
		}
	}

	if len(senders) == 0 {
		senders = append(senders, NewInApp())
	}
	if len(senders) == 1 {
		return senders[0], nil
	}
	return NewMulti(senders...), nil
}
