package consumers

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeMailer struct {
	sendErr error
	admin   string
	sent    []string
}

func (f *fakeMailer) Send(to, subject, htmlBody string) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, to)
	return nil
}

func (f *fakeMailer) AdminEmail() string { return f.admin }

type fakeMsg struct {
	acked bool
}

func (f *fakeMsg) Ack() error {
	f.acked = true
	return nil
}

func TestDeliverAcksOnSuccess(t *testing.T) {
	mailer := &fakeMailer{}
	h := &Handlers{mailer: mailer}
	m := &fakeMsg{}

	h.deliver(m, "order_paid", "ana@example.com", "Pedido #42 confirmado", "<p>ok</p>")

	assert.True(t, m.acked)
	assert.Equal(t, []string{"ana@example.com"}, mailer.sent)
}

func TestDeliverLeavesFailedSendUnacked(t *testing.T) {
	mailer := &fakeMailer{sendErr: errors.New("smtp: connection refused")}
	h := &Handlers{mailer: mailer}
	m := &fakeMsg{}

	h.deliver(m, "order_paid", "ana@example.com", "Pedido #42 confirmado", "<p>ok</p>")

	// unacked message comes back after AckWait
	assert.False(t, m.acked)
	assert.Empty(t, mailer.sent)
}
