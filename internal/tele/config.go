package tele

type Config struct {
	Enable         bool   `hcl:"enable"`
	Broker         string `hcl:"broker"`
	ClientID       string `hcl:"client_id"`
	Password       string `hcl:"password"`
	TopicPrefix    string `hcl:"topic_prefix"`
	KeepaliveSec   int    `hcl:"keepalive_sec"`
	PingTimeoutSec int    `hcl:"ping_timeout_sec"`
	LogDebug       bool   `hcl:"log_debug"`
}
