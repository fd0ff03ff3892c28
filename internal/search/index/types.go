package index

// Manifest describes a semantic index and how to interpret it.
type Manifest struct {
	IndexVersion  int    `json:"index_version"`
	CreatedAt     string `json:"created_at"`
	CatalogDigest string `json:"catalog_digest"`
	ModelID       string `json:"model_id"`
	Dim           int    `json:"dim"`
	Normalize     bool   `json:"normalize"`
	VectorFile    string `json:"vector_file"`
	EntriesFile   string `json:"entries_file"`
}

// Entry represents one catalog component row in entries.jsonl.
type Entry struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Category    string   `json:"category,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	TextHash    string   `json:"text_hash"`
	UpdatedAt   string   `json:"updated_at"`
}

// Index is a loaded semantic index. Vectors holds len(Entries) rows of
// Manifest.Dim floats.
type Index struct {
	Manifest Manifest
	Entries  []Entry
	Vectors  []float32
}

// Suggestion is one semantically ranked component.
type Suggestion struct {
	Name        string   `json:"name"`
	Score       float64  `json:"score"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Tags        []string `json:"tags"`
}
