package export

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/diogomachado-bioinfo/pubmedtools/pkg/types"
)

// QueryFile is the on-disk representation of a search and its results. A
// retrieved table can be saved and reloaded later without re-querying PubMed.
type QueryFile struct {
	Query   QueryParams     `yaml:"query"`
	Summary QuerySummary    `yaml:"summary"`
	Results []types.Article `yaml:"results"`
}

// QueryParams stores the query in a serializable form.
type QueryParams struct {
	Term string `yaml:"term"`
	// Source names the retrieval path that produced the results:
	// "entrez" or "edirect".
	Source string `yaml:"source"`
}

// QuerySummary stores result statistics and a timestamp.
type QuerySummary struct {
	Total     int       `yaml:"total"`
	Timestamp time.Time `yaml:"timestamp"`
}

// WriteQueryFile saves the query and its results to a YAML file.
func WriteQueryFile(path, term, source string, articles []types.Article) error {
	qf := QueryFile{
		Query: QueryParams{Term: term, Source: source},
		Summary: QuerySummary{
			Total:     len(articles),
			Timestamp: time.Now().UTC(),
		},
		Results: articles,
	}

	data, err := yaml.Marshal(qf)
	if err != nil {
		return fmt.Errorf("marshaling query file: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing query file %s: %w", path, err)
	}
	return nil
}

// ReadQueryFile loads a previously saved query file.
func ReadQueryFile(path string) (QueryFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return QueryFile{}, fmt.Errorf("reading query file %s: %w", path, err)
	}
	var qf QueryFile
	if err := yaml.Unmarshal(data, &qf); err != nil {
		return QueryFile{}, fmt.Errorf("parsing query file %s: %w", path, err)
	}
	return qf, nil
}
