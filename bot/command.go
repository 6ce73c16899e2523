// Copyright 2026 The Dutydesk Authors
// SPDX-License-Identifier: Apache-2.0

package bot

import (
	"strconv"
	"strings"
)

// commandKind enumerates the slash commands the bot understands.
type commandKind int

const (
	commandUnknown commandKind = iota
	commandStart
	commandHelp
	commandClear
	commandDone
	commandOrder
	commandTickets
)

// command is a decoded slash command. For commandOrder, Index is the
// 0-based shipment index and OrderNumber the remaining argument text.
// Malformed marks an order command with too few arguments; BadIndex
// one whose first argument is not a number.
type command struct {
	Kind        commandKind
	Index       int
	OrderNumber string
	Malformed   bool
	BadIndex    bool
}

// parseCommand decodes a message text as a slash command. The second
// return is false when the text is not a command at all. A trailing
// @botname suffix on the command word is tolerated.
func parseCommand(text string) (command, bool) {
	fields := strings.Fields(text)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return command{}, false
	}
	name := strings.TrimPrefix(fields[0], "/")
	if at := strings.IndexByte(name, '@'); at >= 0 {
		name = name[:at]
	}
	args := fields[1:]

	switch name {
	case "start":
		return command{Kind: commandStart}, true
	case "help":
		return command{Kind: commandHelp}, true
	case "clear":
		return command{Kind: commandClear}, true
	case "done":
		return command{Kind: commandDone}, true
	case "tickets":
		return command{Kind: commandTickets}, true
	case "order":
		return parseOrderArgs(args), true
	}
	return command{Kind: commandUnknown}, true
}

func parseOrderArgs(args []string) command {
	if len(args) < 2 {
		return command{Kind: commandOrder, Malformed: true}
	}
	number, err := strconv.Atoi(args[0])
	if err != nil {
		return command{Kind: commandOrder, BadIndex: true}
	}
	return command{
		Kind:        commandOrder,
		Index:       number - 1, // operators count from 1
		OrderNumber: strings.Join(args[1:], " "),
	}
}

// callbackAction enumerates the inline-button callbacks.
type callbackAction int

const (
	callbackUnknown callbackAction = iota
	callbackApprove
	callbackReject
	callbackTicket
)

// parseCallback decodes inline-button callback data of the form
// "approve_N", "reject_N", or "ticket_N" where N is the 0-based
// shipment index.
func parseCallback(data string) (callbackAction, int, bool) {
	kind, suffix, found := strings.Cut(data, "_")
	if !found {
		return callbackUnknown, 0, false
	}

	var action callbackAction
	switch kind {
	case "approve":
		action = callbackApprove
	case "reject":
		action = callbackReject
	case "ticket":
		action = callbackTicket
	default:
		return callbackUnknown, 0, false
	}

	index, err := strconv.Atoi(suffix)
	if err != nil {
		return callbackUnknown, 0, false
	}
	return action, index, true
}
