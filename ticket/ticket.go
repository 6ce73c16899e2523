// Copyright 2026 The Dutydesk Authors
// SPDX-License-Identifier: Apache-2.0

// Package ticket renders customer-facing settlement notices for
// reviewed shipments.
package ticket

import (
	"fmt"
	"strings"

	"github.com/dutydesk/dutydesk/workflow"
)

// Render produces the notice text for one shipment. The approved
// flag selects between the "paid" and "payment pending" wording.
// Output is deterministic: the same shipment and flag always yield
// byte-identical text.
func Render(shipment workflow.Shipment, approved bool) string {
	order := shipment.OrderNumber
	if order == "" {
		order = "______"
	}

	var text strings.Builder
	fmt.Fprintf(&text,
		"Здравствуйте!\n\n"+
			"По вашему заказу № %s "+
			"(посылка от отправителя %s, %s) "+
			"была начислена таможенная пошлина.",
		order, field(shipment.Shipper), field(shipment.ShipperCountry))

	charged := "к оплате"
	if approved {
		charged = "оплачено"
	}
	fmt.Fprintf(&text,
		"\n\nДетали:\n"+
			"- Описание товара: %s\n"+
			"- Объявленная стоимость: $%s\n"+
			"- Пошлина (Duty): $%s\n"+
			"- Сбор за оформление (Entry Prep Fee): $%s\n"+
			"- Итого %s: $%s USD",
		field(shipment.GoodsDescription),
		field(shipment.DeclaredValue),
		field(shipment.DutyAmount),
		field(shipment.EntryPrepFee),
		charged,
		field(shipment.TotalCharges))

	if approved {
		text.WriteString("\n\nСумма была списана с вашего баланса.\n\nЕсли у вас есть вопросы — напишите нам.")
	} else {
		text.WriteString(
			"\n\nСписание средств не производилось, так как оплата пошлины не была согласована." +
				"\nПожалуйста, подтвердите оплату или свяжитесь с нами для уточнения." +
				"\n\nЕсли у вас есть вопросы — напишите нам.")
	}
	return text.String()
}

func field(value string) string {
	if value == "" {
		return "N/A"
	}
	return value
}
