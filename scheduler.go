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

package leadrail

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"

	"github.com/leadrail/leadrail/config"
	"github.com/leadrail/leadrail/internal/notification"
	"github.com/leadrail/leadrail/model"
)

// channelConfig resolves the scheduling table row for a channel.
func channelConfig(cfg *config.Configuration, channel model.Channel) config.ChannelConfig {
	switch channel {
	case model.ChannelEmail:
		return cfg.Channels.Email
	case model.ChannelDirectMail:
		return cfg.Channels.DirectMail
	default:
		return cfg.Channels.SMS
	}
}

// RunCycle drains one batch of due entries for a channel, strictly
// sequentially with a fixed pause between outbound calls. A failure on one
// entry is logged and counted; it never aborts the rest of the batch.
func (l *Leadrail) RunCycle(ctx context.Context, channel model.Channel) (*model.CycleSummary, error) {
	ctx, span := otel.Tracer("Scheduler").Start(ctx, "Running outreach cycle")
	defer span.End()

	cfg, err := config.Fetch()
	if err != nil {
		return nil, err
	}
	chCfg := channelConfig(cfg, channel)

	now := time.Now()
	entries, err := l.datasource.DueEntries(ctx, channel, now, chCfg.BatchSize)
	if err != nil {
		notification.NotifyError(err)
		return nil, err
	}

	sender, err := l.senderFor(channel)
	if err != nil {
		return nil, err
	}

	summary := &model.CycleSummary{Channel: channel}
	for i, entry := range entries {
		if i > 0 {
			select {
			case <-ctx.Done():
				return summary, ctx.Err()
			case <-time.After(chCfg.InterRequestDelay()):
			}
		}

		summary.Attempted++
		outcome, sendErr := sender.Send(ctx, entry)
		if sendErr != nil {
			logrus.Errorf("send failed for entry %s on %s: %v", entry.EntryID, channel, sendErr)
		}

		entry.ApplyOutcome(outcome, chCfg.Cadence(), chCfg.AttemptCeiling, time.Now())
		if err := l.datasource.UpdateEntryResult(ctx, entry); err != nil {
			logrus.Errorf("could not persist result for entry %s: %v", entry.EntryID, err)
			summary.Failed++
			continue
		}

		switch outcome {
		case model.OutcomeSent:
			summary.Succeeded++
		case model.OutcomeSkipped:
			summary.Skipped++
		default:
			summary.Failed++
		}
	}

	logrus.Infof("cycle complete on %s: attempted=%d succeeded=%d failed=%d skipped=%d",
		channel, summary.Attempted, summary.Succeeded, summary.Failed, summary.Skipped)
	return summary, nil
}
