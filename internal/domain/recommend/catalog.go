package recommend

import (
	"fmt"
	"os"

	"github.com/goccy/go-json"
)

// City is one catalog entry with its precomputed embedding vector.
type City struct {
	ID      string    `json:"city_id"`
	Name    string    `json:"city_name"`
	Country string    `json:"country"`
	Vector  []float64 `json:"vector"`
}

// Catalog holds the city embedding vectors, fixed at startup.
type Catalog struct {
	cities []City
	index  map[string]int
	dim    int
}

// NewCatalog builds a catalog from cities, validating that every vector has
// the same dimension.
func NewCatalog(cities []City) (*Catalog, error) {
	if len(cities) == 0 {
		return nil, ErrEmptyCatalog
	}

	dim := len(cities[0].Vector)
	index := make(map[string]int, len(cities))
	for i, c := range cities {
		if c.ID == "" {
			return nil, fmt.Errorf("%w: entry %d has no city_id", ErrInvalidCatalog, i)
		}
		if len(c.Vector) != dim {
			return nil, fmt.Errorf("%w: city %s has dimension %d, want %d",
				ErrInvalidCatalog, c.ID, len(c.Vector), dim)
		}
		if _, dup := index[c.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate city_id %s", ErrInvalidCatalog, c.ID)
		}
		index[c.ID] = i
	}

	return &Catalog{cities: cities, index: index, dim: dim}, nil
}

// LoadCatalog reads a JSON array of cities from path.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	var cities []City
	if err := json.Unmarshal(data, &cities); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	return NewCatalog(cities)
}

// Len returns the number of cities in the catalog.
func (c *Catalog) Len() int {
	return len(c.cities)
}

// Dimension returns the embedding dimension shared by all vectors.
func (c *Catalog) Dimension() int {
	return c.dim
}

// Info returns display metadata for a city id.
func (c *Catalog) Info(id string) (City, bool) {
	i, ok := c.index[id]
	if !ok {
		return City{}, false
	}
	return c.cities[i], true
}

// Indices maps city ids to catalog positions, skipping unknown ids.
func (c *Catalog) Indices(ids []string) []int {
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if i, ok := c.index[id]; ok {
			out = append(out, i)
		}
	}
	return out
}

// MeanVector averages every catalog vector. It serves as the neutral
// starting embedding for users with no feedback history.
func (c *Catalog) MeanVector() []float64 {
	idx := make([]int, len(c.cities))
	for i := range idx {
		idx[i] = i
	}
	return c.meanVector(idx)
}

// meanVector averages the vectors at the given catalog positions.
func (c *Catalog) meanVector(idx []int) []float64 {
	mean := make([]float64, c.dim)
	for _, i := range idx {
		for j, v := range c.cities[i].Vector {
			mean[j] += v
		}
	}
	for j := range mean {
		mean[j] /= float64(len(idx))
	}
	return mean
}
