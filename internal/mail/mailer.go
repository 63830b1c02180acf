package mail

import (
	"context"
	"fmt"
	"log"
	"net/smtp"
	"time"

	"github.com/shopspring/decimal"
)

type ItemSnapshot struct {
	Title      string
	Author     string
	Publisher  string
	ISBN       string
	Quantity   int
	UnitPrice  decimal.Decimal
	TotalPrice decimal.Decimal
}

// OrderSnapshot is everything the confirmation email needs, detached from the
// order model so a later price change cannot alter a sent email's contents.
type OrderSnapshot struct {
	OrderNumber   string
	CreatedAt     time.Time
	PaymentMethod string
	TotalAmount   decimal.Decimal
	Items         []ItemSnapshot
}

// Dispatcher sends transactional mail. Delivery is best effort: the return
// value reports the attempt's outcome and must never fail the calling request.
type Dispatcher interface {
	SendOrderConfirmation(ctx context.Context, email, name string, snap OrderSnapshot) bool
}

type SMTPMailer struct {
	Host     string
	Port     int
	Username string
	Password string
	Sender   string
}

func (m *SMTPMailer) configured() bool {
	return m.Host != "" && m.Username != "" && m.Password != ""
}

func (m *SMTPMailer) SendOrderConfirmation(ctx context.Context, email, name string, snap OrderSnapshot) bool {
	if !m.configured() {
		log.Printf("[mail] smtp not configured, skip confirmation for order=%s", snap.OrderNumber)
		return false
	}

	body, err := renderConfirmation(name, snap)
	if err != nil {
		log.Printf("[mail] render failed order=%s err=%v", snap.OrderNumber, err)
		return false
	}

	msg := []byte("From: " + m.Sender + "\r\n" +
		"To: " + email + "\r\n" +
		"Subject: Order Confirmation " + snap.OrderNumber + "\r\n" +
		"MIME-Version: 1.0\r\n" +
		"Content-Type: text/html; charset=UTF-8\r\n" +
		"\r\n" + body)

	addr := fmt.Sprintf("%s:%d", m.Host, m.Port)
	auth := smtp.PlainAuth("", m.Username, m.Password, m.Host)
	if err := smtp.SendMail(addr, auth, m.Sender, []string{email}, msg); err != nil {
		log.Printf("[mail] send failed order=%s err=%v", snap.OrderNumber, err)
		return false
	}
	log.Printf("[mail] confirmation sent order=%s to=%s", snap.OrderNumber, email)
	return true
}
