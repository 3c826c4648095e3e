package config

// DefaultSniffBufferSize fits the largest TLS plaintext record plus its header.
const DefaultSniffBufferSize = 16*1024 + 5

const (
	// TargetNull accepts the connection and discards everything it sends.
	TargetNull = "null://"
	// TargetBroken accepts the connection and fails it on the first exchange.
	TargetBroken = "broken://"
)

type YARPConfig struct {
	TCP []IPRule `mapstructure:"tcp"`

	HTTP  *Sniff `mapstructure:"http"`
	HTTPS *Sniff `mapstructure:"https"`

	Dashboard *Dashboard `mapstructure:"dashboard"`
}

type IPRule struct {
	BindAddr string `mapstructure:"bindAddr"`
	Target   string `mapstructure:"target"`
}

// Sniff routes connections by the host name found in the first bytes of the stream.
type Sniff struct {
	BindAddr   string     `mapstructure:"bindAddr"`
	BufferSize int        `mapstructure:"bufferSize"`
	Rules      []HostRule `mapstructure:"rules"`
}

// HostRule matches Host exactly, or as a suffix when it starts with '*'.
type HostRule struct {
	Host   string `mapstructure:"host"`
	Target string `mapstructure:"target"`
}

type Dashboard struct {
	BindAddr     string `mapstructure:"bindAddr"`
	HttpUser     string `mapstructure:"httpUser"`
	HttpPassword string `mapstructure:"httpPassword"`
}
