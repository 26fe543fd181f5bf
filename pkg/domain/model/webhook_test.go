package model_test

import (
	"testing"

	"github.com/m-mizutani/updraft/pkg/domain/model"
)

func TestWebhookEvent_IsActionable(t *testing.T) {
	tests := []struct {
		name     string
		event    *model.WebhookEvent
		expected bool
	}{
		{
			name: "Published with release - actionable",
			event: &model.WebhookEvent{
				Action:     "published",
				HasRelease: true,
			},
			expected: true,
		},
		{
			name: "Published without release - not actionable",
			event: &model.WebhookEvent{
				Action:     "published",
				HasRelease: false,
			},
			expected: false,
		},
		{
			name: "Released - not actionable",
			event: &model.WebhookEvent{
				Action:     "released",
				HasRelease: true,
			},
			expected: false,
		},
		{
			name: "Created - not actionable",
			event: &model.WebhookEvent{
				Action:     "created",
				HasRelease: true,
			},
			expected: false,
		},
		{
			name: "Empty action",
			event: &model.WebhookEvent{
				Action:     "",
				HasRelease: true,
			},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.event.IsActionable()
			if got != tt.expected {
				t.Errorf("IsActionable() = %v, want %v", got, tt.expected)
			}
		})
	}
}
