// This file contains the background consumer that listens to the
// email.confirmation queue and delivers confirmation mail over SMTP.
package queue

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/smtp"
	"os"
	"path/filepath"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// SMTPConfig carries the delivery settings for outbound mail. When Host
// is empty the consumer falls back to appending messages to
// logs/email.log, which keeps local development working without a relay.
type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	BaseURL  string // confirmation link prefix, e.g. https://api.example.com
}

// StartEmailConsumer connects to RabbitMQ, declares the email.confirmation
// queue (durable), and starts consuming messages. The function runs a
// reconnect loop and keeps running indefinitely, logging any processing
// errors while rejecting the offending message so the server continues
// operating.
func StartEmailConsumer(cfg SMTPConfig) error {
	url := brokerURL()

	backoff := time.Second
	for {
		conn, err := amqp.Dial(url)
		if err != nil {
			log.Printf("email-consumer: failed to dial broker: %v; retrying in %s", err, backoff)
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		if err := consumeLoop(conn, cfg); err != nil {
			log.Printf("email-consumer: consume loop ended: %v; reconnecting", err)
			time.Sleep(2 * time.Second)
			continue
		}
	}
}

func consumeLoop(conn *amqp.Connection, cfg SMTPConfig) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Printf("email-consumer: set QoS failed: %v", err)
	}

	_, err = ch.QueueDeclare(confirmationQueueName, true, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	msgs, err := ch.Consume(confirmationQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for d := range msgs {
		if err := handleMessage(d.Body, cfg); err != nil {
			log.Printf("email-consumer: handle message failed: %v", err)
			_ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
			continue
		}
		_ = d.Ack(false)
	}
	return errors.New("deliveries channel closed")
}

func handleMessage(body []byte, cfg SMTPConfig) error {
	var ev ConfirmationEmailEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}

	link := fmt.Sprintf("%s/api/auth/confirmed_email/%s", cfg.BaseURL, ev.Token)
	msg := buildMessage(cfg.From, ev, link)

	if cfg.Host == "" {
		return writeOutbox(ev, link)
	}

	addr := cfg.Host + ":" + cfg.Port
	var a smtp.Auth
	if cfg.Username != "" {
		a = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}
	if err := smtp.SendMail(addr, a, cfg.From, []string{ev.Email}, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

func buildMessage(from string, ev ConfirmationEmailEvent, link string) []byte {
	body := fmt.Sprintf("Hi %s,\r\n\r\nPlease confirm your email address by opening the link below:\r\n%s\r\n\r\nThe link is valid for 7 days.\r\n", ev.Username, link)
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: Confirm your email\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s",
		from, ev.Email, body)
	return []byte(msg)
}

// writeOutbox appends the mail to logs/email.log when no SMTP relay is
// configured.
func writeOutbox(ev ConfirmationEmailEvent, link string) error {
	if err := os.MkdirAll("logs", 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	fpath := filepath.Join("logs", "email.log")
	f, err := os.OpenFile(fpath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	line := fmt.Sprintf("[%s] Confirmation email | to=%s | username=%s | link=%s\n",
		ev.RequestedAt, ev.Email, ev.Username, link)

	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}
