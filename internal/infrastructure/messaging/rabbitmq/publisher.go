package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/baechuer/homi/internal/application/auth"
)

const (
	DefaultExchange = "homi.mail"
	DefaultQueue    = "homi.mail.outbox"

	KeyVerifyEmail   = "mail.verify_email.requested"
	KeyPasswordReset = "mail.password_reset.requested"

	defaultConfirmWait = 2 * time.Second
)

// MailEvent is the wire payload a mail worker consumes.
type MailEvent struct {
	Kind   string `json:"kind"`
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	URL    string `json:"url"`
}

// Publisher hands account emails to a broker in confirm mode. It implements auth.Mailer;
// a nil error means the broker acked and routed the message.
type Publisher struct {
	url      string
	exchange string
	queue    string

	mu sync.Mutex

	conn *amqp.Connection
	ch   *amqp.Channel

	confirmCh <-chan amqp.Confirmation
	returnCh  <-chan amqp.Return
}

func NewPublisher(url string) (*Publisher, error) {
	p := &Publisher{
		url:      url,
		exchange: DefaultExchange,
		queue:    DefaultQueue,
	}
	if err := p.connect(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.resetConn()
	return nil
}

// ---- auth.Mailer ----

func (p *Publisher) SendVerifyEmail(ctx context.Context, m auth.VerifyEmailMail) error {
	return p.publishJSON(ctx, KeyVerifyEmail, verifyEvent(m))
}

func (p *Publisher) SendPasswordReset(ctx context.Context, m auth.PasswordResetMail) error {
	return p.publishJSON(ctx, KeyPasswordReset, resetEvent(m))
}

func verifyEvent(m auth.VerifyEmailMail) MailEvent {
	return MailEvent{Kind: string(auth.PurposeVerifyEmail), UserID: m.UserID, Name: m.Name, Email: m.Email, URL: m.URL}
}

func resetEvent(m auth.PasswordResetMail) MailEvent {
	return MailEvent{Kind: string(auth.PurposePasswordReset), UserID: m.UserID, Name: m.Name, Email: m.Email, URL: m.URL}
}

// ---- internal ----

func (p *Publisher) connect() error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return fmt.Errorf("rabbitmq dial: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("rabbitmq channel: %w", err)
	}

	fail := func(step string, err error) error {
		_ = ch.Close()
		_ = conn.Close()
		return fmt.Errorf("%s: %w", step, err)
	}

	// Declare topic exchange + durable outbox queue (idempotent).
	if err := ch.ExchangeDeclare(p.exchange, "topic", true, false, false, false, nil); err != nil {
		return fail("exchange declare", err)
	}
	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		return fail("queue declare", err)
	}
	if err := ch.QueueBind(p.queue, "mail.#", p.exchange, false, nil); err != nil {
		return fail("queue bind", err)
	}

	if err := ch.Confirm(false); err != nil {
		return fail("confirm mode", err)
	}

	p.confirmCh = ch.NotifyPublish(make(chan amqp.Confirmation, 1))
	p.returnCh = ch.NotifyReturn(make(chan amqp.Return, 1))

	p.conn = conn
	p.ch = ch
	return nil
}

func (p *Publisher) ensureConnected() error {
	if p.conn != nil && !p.conn.IsClosed() && p.ch != nil {
		return nil
	}
	return p.connect()
}

func (p *Publisher) publishJSON(ctx context.Context, routingKey string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	// Ensure there is a deadline to avoid blocking forever.
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, defaultConfirmWait)
		defer cancel()
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ensureConnected(); err != nil {
		return err
	}

	// Drain any stale confirm / return messages to avoid mixing results.
drain:
	for {
		select {
		case <-p.confirmCh:
		case <-p.returnCh:
		default:
			break drain
		}
	}

	if err := p.ch.PublishWithContext(
		ctx,
		p.exchange,
		routingKey,
		true,  // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	); err != nil {
		p.resetConn()
		return fmt.Errorf("publish failed: %w", err)
	}

	// The broker sends basic.return before the ack of an unroutable mandatory message.
	select {
	case ret := <-p.returnCh:
		return fmt.Errorf("rabbitmq unroutable: key=%s code=%d text=%s", routingKey, ret.ReplyCode, ret.ReplyText)

	case conf := <-p.confirmCh:
		select {
		case ret := <-p.returnCh:
			return fmt.Errorf("rabbitmq unroutable: key=%s code=%d text=%s", routingKey, ret.ReplyCode, ret.ReplyText)
		default:
		}
		if !conf.Ack {
			return fmt.Errorf("rabbitmq nack: key=%s deliveryTag=%d", routingKey, conf.DeliveryTag)
		}
		return nil

	case <-ctx.Done():
		return fmt.Errorf("rabbitmq publish timeout: key=%s: %w", routingKey, ctx.Err())
	}
}

func (p *Publisher) resetConn() {
	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
}
