// internal/agents/extract-slots/config.go
package extractslots

type Config struct {
	// Amount sanity bounds; candidates outside are ignored.
	MinLoanAmount int64
	MaxLoanAmount int64
}

func LoadConfig() *Config {
	return &Config{
		MinLoanAmount: 100000,    // 1 lakh
		MaxLoanAmount: 100000000, // 10 crore
	}
}
