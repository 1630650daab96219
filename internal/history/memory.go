package history

import "agronorte-pos/internal/models"

// MemoryStore keeps the snapshot in process memory. It backs tests and the
// degraded mode the server falls into when the database cannot be opened:
// the terminal keeps selling, history just does not survive a restart.
type MemoryStore struct {
	sales []models.Sale
}

// NewMemoryStore instantiates an empty in-memory snapshot store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load() ([]models.Sale, error) {
	out := make([]models.Sale, len(s.sales))
	for i := range s.sales {
		out[i] = s.sales[i].Clone()
	}
	return out, nil
}

func (s *MemoryStore) Save(sales []models.Sale) error {
	kept := make([]models.Sale, len(sales))
	for i := range sales {
		kept[i] = sales[i].Clone()
	}
	s.sales = kept
	return nil
}
