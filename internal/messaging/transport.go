// Package messaging sends outbound messages to users over WhatsApp or
// SMS. The two channels differ only in how the recipient identifier is
// formatted on the wire.
package messaging

import "context"

// Channel selects the outbound transport variant.
type Channel string

const (
	ChannelWhatsApp Channel = "whatsapp"
	ChannelSMS      Channel = "sms"
)

// Transport delivers one message to one recipient and returns the
// provider's message id.
type Transport interface {
	Send(ctx context.Context, to, body string, channel Channel) (messageID string, err error)
}
