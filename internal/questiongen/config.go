package questiongen

// Config controls the behavior of the LLMGenerator.
type Config struct {
	// Validators run in order on every question; the first failure stops
	// the pipeline.
	Validators []Validator

	// Language is the language questions are written in.
	Language string

	// MaxTokens is the token budget for exam-sized responses. Single
	// question operations use a quarter of it.
	MaxTokens int

	// Temperatures per operation. Reading and solving use low values.
	GenerateTemperature float64
	EditTemperature     float64
	DiagramTemperature  float64
	ExtractTemperature  float64
	AnswerTemperature   float64
	DescribeTemperature float64
}

// DefaultConfig returns a Config with the standard validator chain.
func DefaultConfig() Config {
	return Config{
		Validators: []Validator{
			&StructuralValidator{},
			&LatexValidator{},
			&DiagramValidator{},
		},
		Language:            "Modern Standard Arabic",
		MaxTokens:           16384,
		GenerateTemperature: 0.7,
		EditTemperature:     0.7,
		DiagramTemperature:  0.5,
		ExtractTemperature:  0.2,
		AnswerTemperature:   0.3,
		DescribeTemperature: 0.3,
	}
}

func (c Config) singleTokens() int {
	if c.MaxTokens <= 0 {
		return 4096
	}
	return max(c.MaxTokens/4, 1024)
}
