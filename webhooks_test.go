/*
Copyright 2025 NovaTrek Authors.

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

package novatrek

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"

	"github.com/FredvanRijswijk/novatrek-engine/config"
	"github.com/FredvanRijswijk/novatrek-engine/model"
)

func TestSendWebhook(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("an error '%s' occurred when starting miniredis", err)
	}
	defer mr.Close()

	mockConfig := &config.Configuration{
		Redis: config.RedisConfig{
			Dns: mr.Addr(),
		},
		Notification: config.Notification{Webhook: struct {
			Url     string            `json:"url"`
			Headers map[string]string `json:"headers"`
		}(struct {
			Url     string
			Headers map[string]string
		}{Url: "https://localhost:5001/webhook", Headers: nil})},
	}
	config.MockConfig(mockConfig)

	testData := NewWebhook{
		Event: "waitlist.invited",
		Payload: &model.WaitlistEntry{
			WaitlistID: "wl_123",
			Email:      "ada@example.com",
			Position:   1,
			Status:     model.WaitlistStatusInvited,
			CreatedAt:  time.Now(),
		},
	}

	err = SendWebhook(testData)
	assert.NoError(t, err)

	// Verify that the task was enqueued
	tasks := mr.Keys()
	t.Log(tasks)
	assert.NotEmpty(t, tasks)
}

func TestSendWebhookWithoutURLIsNoop(t *testing.T) {
	config.MockConfig(&config.Configuration{})

	err := SendWebhook(NewWebhook{Event: "waitlist.approved"})
	assert.NoError(t, err)
}

func TestGetWaitlistEvent(t *testing.T) {
	assert.Equal(t, "waitlist.approved", getWaitlistEvent(model.WaitlistStatusApproved))
	assert.Equal(t, "waitlist.invited", getWaitlistEvent(model.WaitlistStatusInvited))
	assert.Equal(t, "waitlist.joined", getWaitlistEvent(model.WaitlistStatusJoined))
	assert.Equal(t, "waitlist.unknown", getWaitlistEvent("whatever"))
}

func TestGetApplicationEvent(t *testing.T) {
	assert.Equal(t, "application.approved", getApplicationEvent(model.ApplicationStatusApproved))
	assert.Equal(t, "application.rejected", getApplicationEvent(model.ApplicationStatusRejected))
	assert.Equal(t, "application.needs_info", getApplicationEvent(model.ApplicationStatusNeedsInfo))
	assert.Equal(t, "application.unknown", getApplicationEvent(model.ApplicationStatusSubmitted))
}
