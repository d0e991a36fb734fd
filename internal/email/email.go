package email

import (
	"context"
	"fmt"

	"github.com/zvrva/tourbooking/internal/kafka"
)

type Sender struct {
	from string
}

func NewSender(from string) *Sender {
	return &Sender{from: from}
}

// Send delivers a booking notification to the customer. The SMTP
// integration lives outside this service; this sender only formats the
// message and hands it off.
func (s *Sender) Send(ctx context.Context, event kafka.BookingEvent) error {
	subject := fmt.Sprintf("Your booking %s is %s", event.Reference, event.Status)
	body := fmt.Sprintf("%s, your booking for %s on %s (%d guests, %.2f %s total) is now %s.",
		event.CustomerName, event.ActivityName, event.BookingDate,
		event.GroupSize, float64(event.TotalCents)/100, event.Currency, event.Status)
	fmt.Printf("send email from %s to %s: %s | %s\n", s.from, event.CustomerEmail, subject, body)
	return nil
}
