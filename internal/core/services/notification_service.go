package services

import (
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"

	"shamba-credit/internal/adapters/persistence/models"
	"shamba-credit/internal/pkg/currency"
)

// NotificationService sends SMS notifications to farmers through an
// HTTP SMS gateway. Disabled (all sends become no-ops) when no gateway
// token is configured.
type NotificationService struct {
	gatewayURL   string
	gatewayToken string
	enabled      bool
}

// NewNotificationService creates a new notification service
func NewNotificationService() *NotificationService {
	token := os.Getenv("SMS_GATEWAY_TOKEN")
	gatewayURL := os.Getenv("SMS_GATEWAY_URL")
	return &NotificationService{
		gatewayURL:   gatewayURL,
		gatewayToken: token,
		enabled:      token != "" && gatewayURL != "",
	}
}

// IsEnabled checks if notification is enabled
func (s *NotificationService) IsEnabled() bool {
	return s.enabled
}

// sendSMS sends a message to a phone number via the gateway
func (s *NotificationService) sendSMS(phone, message string) error {
	if !s.enabled || phone == "" {
		return nil
	}

	data := url.Values{}
	data.Set("to", phone)
	data.Set("message", message)

	req, err := http.NewRequest("POST", s.gatewayURL, strings.NewReader(data.Encode()))
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+s.gatewayToken)

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return nil
}

// farmerPhone pulls the farmer phone off an order if loaded
func farmerPhone(order *models.Order) string {
	if order.Farmer != nil {
		return order.Farmer.Phone
	}
	return ""
}

// NotifyOrderApproved notifies the farmer that an order was approved and a
// repayment is scheduled
func (s *NotificationService) NotifyOrderApproved(order *models.Order, payment *models.Payment) {
	message := fmt.Sprintf(
		"Your order #%d (%s) has been approved. Balance of %s is due on %s.",
		order.ID,
		order.ProductName,
		currency.Format(payment.Amount),
		payment.DueDate.Format("02 Jan 2006"),
	)

	s.sendSMS(farmerPhone(order), message)
}

// NotifyOrderRejected notifies the farmer that an order was rejected
func (s *NotificationService) NotifyOrderRejected(order *models.Order) {
	message := fmt.Sprintf(
		"Your order #%d (%s) was not approved. Contact your agent for details.",
		order.ID,
		order.ProductName,
	)

	s.sendSMS(farmerPhone(order), message)
}

// NotifyPaymentDue reminds the farmer about an unpaid repayment past its
// due date
func (s *NotificationService) NotifyPaymentDue(payment *models.Payment) {
	if payment.Order == nil {
		return
	}

	message := fmt.Sprintf(
		"Reminder: payment of %s for order #%d was due on %s. Please settle your balance.",
		currency.Format(payment.Amount),
		payment.OrderID,
		payment.DueDate.Format("02 Jan 2006"),
	)

	s.sendSMS(farmerPhone(payment.Order), message)
}
