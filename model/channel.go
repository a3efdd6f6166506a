/*
Copyright 2025 Leadrail Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package model

import (
	"fmt"
	"strings"
)

// Channel identifies an outreach channel. Each channel carries its own cadence,
// attempt ceiling and dedup rules; behavior differences live in the per-channel
// configuration table, not in scattered branching.
type Channel string

const (
	ChannelSMS        Channel = "sms"
	ChannelEmail      Channel = "email"
	ChannelDirectMail Channel = "direct_mail"
)

// Channels lists every supported outreach channel.
var Channels = []Channel{ChannelSMS, ChannelEmail, ChannelDirectMail}

// ParseChannel normalizes and validates a channel name.
func ParseChannel(s string) (Channel, error) {
	c := Channel(strings.ToLower(strings.TrimSpace(s)))
	switch c {
	case ChannelSMS, ChannelEmail, ChannelDirectMail:
		return c, nil
	}
	return "", fmt.Errorf("unknown channel: %s", s)
}

// Recurring reports whether a successful send re-arms the entry at the next
// cadence. Direct mail is one-shot: a letter goes out once per contact.
func (c Channel) Recurring() bool {
	return c != ChannelDirectMail
}

// String returns the wire representation of the channel.
func (c Channel) String() string {
	return string(c)
}

// Outcome is the result a channel sender reports for a single send attempt.
type Outcome string

const (
	// OutcomeSent marks a successful delivery handoff.
	OutcomeSent Outcome = "SENT"
	// OutcomeFailed marks a transient transport failure, retried until the
	// channel's attempt ceiling is reached.
	OutcomeFailed Outcome = "FAILED"
	// OutcomeSkipped marks a dedup deny. It is not an error and does not count
	// against the attempt ceiling.
	OutcomeSkipped Outcome = "SKIPPED"
)
