package queue

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/seat-inventory/internal/ticket"
)

// StartTicketConsumer connects to RabbitMQ, declares the ticket.issued queue
// (durable), and writes one ticket CSV file under tickets/ per message.  It
// runs a reconnect loop with exponential backoff and keeps going through
// processing errors, rejecting the offending message so the server continues
// operating.
func StartTicketConsumer() error {
	url := BrokerURL()
	backoff := time.Second
	for {
		conn, err := amqp.Dial(url)
		if err != nil {
			log.Printf("ticket-consumer: failed to dial broker: %v; retrying in %s", err, backoff)
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		if err := consumeLoop(conn); err != nil {
			log.Printf("ticket-consumer: consume loop ended: %v; reconnecting", err)
			time.Sleep(2 * time.Second)
			continue
		}
	}
}

func consumeLoop(conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Printf("ticket-consumer: set QoS failed: %v", err)
	}

	_, err = ch.QueueDeclare(ticketQueueName, true, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	msgs, err := ch.Consume(ticketQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for d := range msgs {
		if err := handleMessage(d.Body); err != nil {
			log.Printf("ticket-consumer: handle message failed: %v", err)
			_ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
			continue
		}
		_ = d.Ack(false)
	}
	return errors.New("deliveries channel closed")
}

// handleMessage writes the snapshot as a two-row CSV ticket file.  The file
// mirrors what a printed ticket shows: no raw ID number is present anywhere
// in the snapshot.
func handleMessage(body []byte) error {
	var snap ticket.Snapshot
	if err := json.Unmarshal(body, &snap); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if err := os.MkdirAll("tickets", 0o755); err != nil {
		return fmt.Errorf("mkdir tickets: %w", err)
	}
	name := fmt.Sprintf("ticket_%s_%s_%s.csv",
		strings.ToLower(snap.ServiceName), snap.Seat, safeFilename(snap.Passenger))
	f, err := os.Create(filepath.Join("tickets", name))
	if err != nil {
		return fmt.Errorf("create ticket file: %w", err)
	}
	defer func() { _ = f.Close() }()

	w := csv.NewWriter(f)
	if err := w.Write([]string{
		"Ref", "Service", "Seat", "Passenger", "TicketType",
		"BasePrice", "FinalPrice", "BookedAt", "Contact", "Address",
		"IDType", "VerifiedAt", "VerificationHash",
	}); err != nil {
		return err
	}
	if err := w.Write([]string{
		snap.Ref, snap.ServiceName, snap.Seat, snap.Passenger, snap.TicketType,
		snap.BasePrice, snap.FinalPrice, snap.BookedAt, snap.Contact, snap.Address,
		snap.IDType, snap.VerifiedAt, snap.Hash,
	}); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

// safeFilename keeps letters, digits, dashes and dots, replacing spaces with
// underscores.
func safeFilename(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r == ' ':
			b.WriteRune('_')
		case r == '-' || r == '.' ||
			(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
		}
	}
	return b.String()
}
