package domain

import "time"

// ChannelRecord tracks a calendar watch channel registered with Google.
// Secret is the per-channel verification token echoed back by the
// provider on every push notification.
type ChannelRecord struct {
	ChannelID  string    `json:"channel_id"`
	ResourceID string    `json:"resource_id"`
	Secret     string    `json:"-"`
	Owner      string    `json:"owner,omitempty"`
	Expiration time.Time `json:"expiration"`
	CreatedAt  time.Time `json:"created_at"`
}

// WatchResult is returned to the caller after a watch channel is
// registered. Expiration is milliseconds since epoch, as reported by
// the provider.
type WatchResult struct {
	ChannelID  string `json:"channelId"`
	ResourceID string `json:"resourceId"`
	Expiration int64  `json:"expiration"`
}
