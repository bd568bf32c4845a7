package services

import (
	"fmt"
	"strings"

	"github.com/ghuser/ordermgmt/pkg/notify"
	"github.com/ghuser/ordermgmt/services/order/domain/models"
)

func orderNotification(kind notify.Kind, order *models.Order, email string) notify.Notification {
	var subject, intro string
	switch kind {
	case notify.KindOrderUpdated:
		subject = fmt.Sprintf("Order %s updated", order.ID)
		intro = "Your order has been updated."
	default:
		subject = fmt.Sprintf("Order %s confirmed", order.ID)
		intro = "Thank you, your order has been placed."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\nOrder: %s\nDate: %s\n\n", intro, order.ID, order.OrderDate.Format("2006-01-02 15:04 MST"))
	for _, it := range order.Items {
		fmt.Fprintf(&b, "  %d x %s @ %s = %s\n",
			it.Quantity, it.ProductID, it.PurchasePrice.StringFixed(2), it.Subtotal().StringFixed(2))
	}
	fmt.Fprintf(&b, "\nTotal: %s\n", order.Total().StringFixed(2))

	return notify.Notification{
		Kind:       kind,
		Subject:    subject,
		Body:       b.String(),
		Recipients: []string{email},
	}
}
