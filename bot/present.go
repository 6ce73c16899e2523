// Copyright 2026 The Dutydesk Authors
// SPDX-License-Identifier: Apache-2.0

package bot

import (
	"fmt"
	"strings"

	"github.com/dutydesk/dutydesk/telegram"
	"github.com/dutydesk/dutydesk/workflow"
)

const (
	deniedText = "⛔ У вас нет доступа к этому боту."

	welcomeText = "📦 *Invoice Processor Bot*\n\n" +
		"Отправьте мне фото инвойсов \\(можно несколько\\)\\.\n" +
		"Когда все фото загружены — нажмите /done\n\n" +
		"Команды:\n" +
		"/done — распознать загруженные фото\n" +
		"/clear — очистить и начать заново\n" +
		"/help — справка"

	helpText = "📖 *Как пользоваться:*\n\n" +
		"1\\. Отправьте фото инвойсов \\(все страницы всех посылок\\)\n" +
		"2\\. Нажмите /done\n" +
		"3\\. Бот сгруппирует по посылкам и покажет:\n" +
		"   💳 Данные для оплаты\n" +
		"   📝 Готовый тикет\n\n" +
		"Для каждой посылки можно указать номер заказа " +
		"и выбрать согласована ли оплата\\."

	clearedText = "🗑 Очищено. Отправляйте новые фото инвойсов."

	noImagesText = "❌ Нет загруженных фото. Отправьте фото инвойсов."

	extractionFailedText = "❌ Ошибка при распознавании. Проверьте качество фото и попробуйте снова."

	orderUsageText = "Формат: `/order 1 ABC123`\n" +
		"где 1 — номер посылки, ABC123 — номер заказа"

	orderInvalidText = "❌ Неверный формат. Используйте: `/order 1 ABC123`"

	noShipmentsText = "❌ Нет распознанных посылок. Отправьте фото и нажмите /done"
)

func photoAckText(count int) string {
	return fmt.Sprintf("✅ Фото %d загружено.\nОтправьте ещё фото или нажмите /done для распознавания.", count)
}

func analyzingText(count int) string {
	return fmt.Sprintf("⏳ Анализирую %d фото... Подождите.", count)
}

// batchSummaryText tells the operator how to proceed after a batch
// was recognized. Wording differs for a single shipment.
func batchSummaryText(count int) string {
	if count == 1 {
		return "✅ Найдена 1 посылка\n\n" +
			"Укажите номер заказа: `/order 1 ABC123`\n" +
			"Сгенерировать тикет: /tickets"
	}
	return fmt.Sprintf("✅ Найдено посылок: %d\n\n", count) +
		"Для каждой посылки укажите номер заказа командой:\n" +
		"`/order 1 ABC123`\n" +
		"где 1 — номер посылки, ABC123 — номер заказа\n\n" +
		"Для генерации тикетов: /tickets"
}

func approvalSetText(number int, approved bool) string {
	if approved {
		return fmt.Sprintf("✅ Посылка %d: оплата отмечена как согласованная", number)
	}
	return fmt.Sprintf("❌ Посылка %d: оплата отмечена как НЕ согласованная", number)
}

func orderSetText(number int, order string) string {
	return fmt.Sprintf("✅ Посылка %d: номер заказа установлен → `%s`", number, order)
}

func shipmentNotFoundText(number int) string {
	return fmt.Sprintf("❌ Посылка с номером %d не найдена.", number)
}

func ticketMessageText(number int, ticket string) string {
	return fmt.Sprintf("📝 *Тикет — Посылка %d:*\n\n`%s`", number, ticket)
}

func ticketBulkMessageText(number int, shipper, ticket string) string {
	return fmt.Sprintf("📝 *Тикет — Посылка %d \\(%s\\):*\n\n`%s`", number, shipper, ticket)
}

// shipmentCard renders the payment card for one shipment together
// with its inline keyboard. index is the 0-based shipment index; the
// visible numbering starts at 1.
func shipmentCard(index int, shipment workflow.Shipment) (string, *telegram.InlineKeyboardMarkup) {
	var text strings.Builder
	fmt.Fprintf(&text,
		"📦 *Посылка %d* — %s\n"+
			"━━━━━━━━━━━━━━━\n\n"+
			"💳 *ДАННЫЕ ДЛЯ ОПЛАТЫ:*\n"+
			"├ Инвойс: `%s`\n"+
			"├ Сумма: *$%s USD*\n"+
			"├ Трек: `%s`\n",
		index+1, shipment.Shipper,
		shipment.InvoiceNumber, shipment.TotalCharges, shipment.TrackingNumber)

	if present(shipment.ShipmentID) {
		fmt.Fprintf(&text, "├ Shipment ID: `%s`\n", shipment.ShipmentID)
	}

	fmt.Fprintf(&text,
		"└ Перевозчик: %s\n\n"+
			"📋 *ДЕТАЛИ:*\n"+
			"├ Отправитель: %s, %s\n"+
			"├ Товар: %s\n"+
			"├ Стоимость: $%s\n"+
			"├ Пошлина: $%s\n"+
			"├ Сбор: $%s\n"+
			"└ *Итого: $%s USD*\n",
		shipment.Carrier,
		shipment.Shipper, shipment.ShipperCountry,
		shipment.GoodsDescription,
		shipment.DeclaredValue,
		shipment.DutyAmount,
		shipment.EntryPrepFee,
		shipment.TotalCharges)

	if present(shipment.Notes) {
		fmt.Fprintf(&text, "\n⚠️ %s\n", shipment.Notes)
	}

	var rows [][]telegram.InlineKeyboardButton
	if present(shipment.PaymentURL) {
		url := shipment.PaymentURL
		if !strings.HasPrefix(url, "http") {
			url = "https://" + url
		}
		rows = append(rows, []telegram.InlineKeyboardButton{
			{Text: "🌐 Перейти к оплате", URL: url},
		})
	}
	rows = append(rows,
		[]telegram.InlineKeyboardButton{
			{Text: "✅ Оплата согласована", CallbackData: fmt.Sprintf("approve_%d", index)},
			{Text: "❌ Не согласована", CallbackData: fmt.Sprintf("reject_%d", index)},
		},
		[]telegram.InlineKeyboardButton{
			{Text: "📝 Сгенерировать тикет", CallbackData: fmt.Sprintf("ticket_%d", index)},
		},
	)

	return text.String(), &telegram.InlineKeyboardMarkup{InlineKeyboard: rows}
}

// present reports whether an extracted field carries a real value
// rather than the "N/A" placeholder.
func present(value string) bool {
	return value != "" && value != "N/A"
}
