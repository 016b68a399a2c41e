// internal/agents/evaluate-eligibility/config.go
package evaluateeligibility

type Config struct {
	AnnualRatePercent   float64
	RegistrationURL     string
	DefaultTenureMonths int
}

func LoadConfig() *Config {
	return &Config{
		AnnualRatePercent:   8.5,
		RegistrationURL:     "https://apply.example-lender.in/register",
		DefaultTenureMonths: 60,
	}
}
