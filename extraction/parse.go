// Copyright 2026 The Dutydesk Authors
// SPDX-License-Identifier: Apache-2.0

package extraction

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/jsonc"

	"github.com/dutydesk/dutydesk/workflow"
)

// textValue is a string that also accepts JSON numbers and null when
// decoding. The prompt asks for money amounts as bare digits and
// models sometimes take that literally, emitting 25.5 instead of
// "25.5"; the value is kept as its verbatim text either way.
type textValue string

func (value *textValue) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		*value = textValue(text)
		return nil
	}
	if string(data) == "null" {
		*value = ""
		return nil
	}
	var number json.Number
	if err := json.Unmarshal(data, &number); err != nil {
		return fmt.Errorf("expected string or number, got %s", data)
	}
	*value = textValue(number.String())
	return nil
}

// draftRecord mirrors the JSON object the extraction prompt asks for.
// The shipmentIndex and pages bookkeeping fields the model emits are
// ignored.
type draftRecord struct {
	TrackingNumber   textValue `json:"trackingNumber"`
	ShipmentID       textValue `json:"shipmentId"`
	Shipper          textValue `json:"shipper"`
	ShipperCountry   textValue `json:"shipperCountry"`
	Recipient        textValue `json:"recipient"`
	RecipientAddress textValue `json:"recipientAddress"`
	GoodsDescription textValue `json:"goodsDescription"`
	DeclaredValue    textValue `json:"declaredValue"`
	DutyAmount       textValue `json:"dutyAmount"`
	EntryPrepFee     textValue `json:"entryPrepFee"`
	TotalCharges     textValue `json:"totalCharges"`
	InvoiceNumber    textValue `json:"invoiceNumber"`
	InvoiceDate      textValue `json:"invoiceDate"`
	Carrier          textValue `json:"carrier"`
	PaymentURL       textValue `json:"paymentUrl"`
	Notes            textValue `json:"notes"`
}

// parseDrafts interprets the model's reply. Markup fences are
// stripped, comments and trailing commas tolerated, and a bare object
// is accepted as a one-element array.
func parseDrafts(text string) ([]workflow.Draft, error) {
	text = stripFences(text)
	if text == "" {
		return nil, fmt.Errorf("empty model output")
	}
	normalized := jsonc.ToJSON([]byte(text))

	var records []draftRecord
	if err := json.Unmarshal(normalized, &records); err != nil {
		var single draftRecord
		if objErr := json.Unmarshal(normalized, &single); objErr != nil {
			return nil, fmt.Errorf("decoding model output: %w", err)
		}
		records = []draftRecord{single}
	}

	drafts := make([]workflow.Draft, 0, len(records))
	for _, record := range records {
		drafts = append(drafts, record.draft())
	}
	return drafts, nil
}

// stripFences removes a leading ```json or ``` marker and a trailing
// ``` marker, if present.
func stripFences(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}

func (record draftRecord) draft() workflow.Draft {
	return workflow.Draft{
		TrackingNumber:   orPlaceholder(record.TrackingNumber),
		ShipmentID:       orPlaceholder(record.ShipmentID),
		Shipper:          orPlaceholder(record.Shipper),
		ShipperCountry:   orPlaceholder(record.ShipperCountry),
		Recipient:        orPlaceholder(record.Recipient),
		RecipientAddress: orPlaceholder(record.RecipientAddress),
		GoodsDescription: orPlaceholder(record.GoodsDescription),
		DeclaredValue:    orPlaceholder(record.DeclaredValue),
		DutyAmount:       orPlaceholder(record.DutyAmount),
		EntryPrepFee:     orPlaceholder(record.EntryPrepFee),
		TotalCharges:     orPlaceholder(record.TotalCharges),
		InvoiceNumber:    orPlaceholder(record.InvoiceNumber),
		InvoiceDate:      orPlaceholder(record.InvoiceDate),
		Carrier:          orPlaceholder(record.Carrier),
		PaymentURL:       orPlaceholder(record.PaymentURL),
		Notes:            orPlaceholder(record.Notes),
	}
}

// orPlaceholder substitutes the conventional "N/A" marker for fields
// the model left blank.
func orPlaceholder(value textValue) string {
	if strings.TrimSpace(string(value)) == "" {
		return "N/A"
	}
	return string(value)
}
