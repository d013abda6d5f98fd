package notifications

import (
	"fmt"
	"time"

	"github.com/algobros/terminal-backend/pkg/enums"
	"github.com/algobros/terminal-backend/pkg/mailer"
)

// welcomeEmail is the strategy onboarding message sent once per profile,
// tracked by the welcome_email_sent flag.
func welcomeEmail(to, firstName string, plan enums.Plan, expiresAt time.Time) mailer.Message {
	name := firstName
	if name == "" {
		name = "Trader"
	}
	body := fmt.Sprintf(`Hi %s,

Your AlgoBros Terminal subscription is active.

Plan: %s
Access until: %s

Head to the knowledge base and upload the strategy material you want the
terminal to learn from. Every chart analysis uses your own notes, so the
more it knows, the sharper it gets.

Good trading,
The AlgoBros team
`, name, plan, expiresAt.UTC().Format("2 January 2006"))

	return mailer.Message{
		To:      to,
		Subject: "Welcome to AlgoBros Terminal",
		Body:    body,
	}
}

// saleAlertEmail notifies the operator of a new activation. Best effort,
// and suppressed entirely when the purchaser is the operator account.
func saleAlertEmail(operatorEmail, buyerEmail string, plan enums.Plan, amount, transactionID string) mailer.Message {
	body := fmt.Sprintf(`New activation on AlgoBros Terminal.

Buyer: %s
Plan: %s
`, buyerEmail, plan)
	if amount != "" {
		body += fmt.Sprintf("Amount: %s USDT\n", amount)
	}
	if transactionID != "" {
		body += fmt.Sprintf("Transaction: %s\n", transactionID)
	}

	return mailer.Message{
		To:      operatorEmail,
		Subject: fmt.Sprintf("New sale: %s", plan),
		Body:    body,
	}
}
