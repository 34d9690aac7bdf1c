package models

// Persona describes the voice the generator imitates when replying
type Persona struct {
	Name         string `json:"name" yaml:"name"`
	Title        string `json:"title" yaml:"title"`
	Avatar       string `json:"avatar,omitempty" yaml:"avatar"`
	Bio          string `json:"bio" yaml:"bio"`
	WritingStyle string `json:"writing_style" yaml:"writing_style"`
}
