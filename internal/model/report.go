package model

// Report is the persisted result of testing one mutant.
type Report struct {
	MutantID     string          `yaml:"id"`
	Type         MutationType    `yaml:"type"`
	SourceFile   Path            `yaml:"source"`
	Location     MutatedLocation `yaml:"location"`
	OriginalLine string          `yaml:"original_line"`
	MutatedLine  string          `yaml:"mutated_line"`
	Status       MutantStatus    `yaml:"status"`
	TestsRan     []string        `yaml:"tests_ran,omitempty"`
	Diff         string          `yaml:"diff,omitempty"`
	Error        string          `yaml:"error,omitempty"`
}

// FileReport groups the mutant reports of one source file.
type FileReport struct {
	Source   Path     `yaml:"source"`
	Hash     string   `yaml:"hash"`
	TestHash string   `yaml:"test_hash,omitempty"`
	Reports  []Report `yaml:"mutants"`
}
