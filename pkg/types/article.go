// Package types defines shared data structures for the pubmedtools retrieval
// paths: the normalized article row both adapters produce, the caller-supplied
// NCBI credentials, and per-stage configuration.
package types

// Article is one normalized bibliographic row. Both retrieval paths (the
// E-utilities web API and the local EDirect tools) produce rows with the same
// column semantics; only whitespace handling of the abstract differs between
// them (see internal/medline).
type Article struct {
	// PMID is the PubMed identifier. It is the only mandatory field.
	PMID int `json:"pmid" yaml:"pmid"`

	// TI is the article title with runs of whitespace collapsed to a
	// single space.
	TI string `json:"ti" yaml:"ti"`

	// AB is the abstract. The web API path collapses whitespace here as
	// well; the EDirect path keeps the tool's output verbatim.
	AB string `json:"ab" yaml:"ab"`

	// FAU lists the full author names in source order.
	FAU []string `json:"fau" yaml:"fau"`

	// DP is the publication date exactly as given by the source
	// (e.g. "2023 Jul 13").
	DP string `json:"dp" yaml:"dp"`

	// MH lists the MeSH headings.
	MH []string `json:"mh" yaml:"mh"`

	// OT lists other terms (author-supplied keywords).
	OT []string `json:"ot" yaml:"ot"`
}

// Credentials identifies the caller to NCBI. Both fields are optional and are
// passed explicitly per call; no global client state is mutated.
type Credentials struct {
	// Email is the contact address NCBI asks polite clients to send.
	Email string `json:"email" yaml:"email"`

	// APIKey is an NCBI API key for higher rate limits.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
}
