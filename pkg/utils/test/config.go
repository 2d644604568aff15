package testutils

import "github.com/papercomputeco/replybot/pkg/config"

// NewTestConfig returns the default configuration pointed at instanceURL
// with a single "hi" response.
func NewTestConfig(instanceURL string) *config.Config {
	cfg := config.NewDefaultConfig()
	cfg.Instance.URL = instanceURL
	cfg.Reply.Responses = []string{"hi"}
	return cfg
}
