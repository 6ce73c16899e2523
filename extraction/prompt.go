// Copyright 2026 The Dutydesk Authors
// SPDX-License-Identifier: Apache-2.0

package extraction

import "fmt"

// buildPrompt renders the extraction instructions for a batch of
// imageCount photos. The model is told to group pages into unique
// shipments and answer with a bare JSON array.
func buildPrompt(imageCount int) string {
	return fmt.Sprintf(`Ты — система извлечения данных из инвойсов на таможенную пошлину (UPS, FedEx, DHL и др.).

Тебе предоставлены %d фото. Это могут быть страницы РАЗНЫХ инвойсов по РАЗНЫМ посылкам, или несколько страниц одного инвойса.

ЗАДАЧА:
1. Определи сколько УНИКАЛЬНЫХ посылок/отправлений здесь есть (по трек-номерам, Shipment ID, или номерам инвойсов)
2. Сгруппируй страницы по посылкам
3. Для каждой посылки извлеки полные данные

Верни ТОЛЬКО JSON-массив (без markdown, без backticks, без пояснений):

[
  {
    "shipmentIndex": 1,
    "pages": "какие фото относятся к этой посылке",
    "trackingNumber": "трек-номер",
    "shipmentId": "ID отправления если есть",
    "shipper": "название отправителя",
    "shipperCountry": "страна отправителя",
    "recipient": "ФИО получателя",
    "recipientAddress": "адрес получателя",
    "goodsDescription": "описание товара",
    "declaredValue": "объявленная стоимость (только число)",
    "dutyAmount": "сумма пошлины (только число)",
    "entryPrepFee": "сбор за оформление (только число)",
    "totalCharges": "итого к оплате ФИНАЛЬНАЯ сумма (только число)",
    "invoiceNumber": "номер инвойса",
    "invoiceDate": "дата инвойса",
    "carrier": "перевозчик (UPS/FedEx/DHL/другой)",
    "paymentUrl": "URL для оплаты если указан, иначе N/A",
    "notes": "замечания если есть"
  }
]

Правила:
- Если несколько страниц имеют одинаковый трек-номер или shipment ID — это ОДНА посылка
- Итоговую сумму бери оттуда, где указан финальный Total Charges
- ОБЯЗАТЕЛЬНО найди ссылку/URL для оплаты
- Числовые поля — только цифры с точкой, без знака доллара
- Если поле не найдено — "N/A"
`, imageCount)
}
