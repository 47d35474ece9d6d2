package cartstore

import (
	"encoding/json"
	"io"
	"log"
	"sync"

	"cartify/internal/client/storage"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StorageKey is where the cart lines are persisted.
const StorageKey = "cartify-cart"

// Product is the catalog snapshot a line carries.
type Product struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	ImageURL string          `json:"image_url,omitempty"`
}

// Line is one cart entry. Lines are unique per product, color and size.
type Line struct {
	ID       string  `json:"cart_item_id"`
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
	Color    string  `json:"selected_color,omitempty"`
	Size     string  `json:"selected_size,omitempty"`
}

// Store holds the cart in memory and writes every change through to storage.
type Store struct {
	mu      sync.Mutex
	lines   []Line
	storage storage.Storage
	newID   func() string
	logger  *log.Logger
}

// Open loads the persisted cart. Unreadable or malformed data yields an empty cart.
func Open(s storage.Storage, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	st := &Store{
		storage: s,
		newID:   uuid.NewString,
		logger:  logger,
	}
	st.lines = st.load()
	return st
}

func (s *Store) load() []Line {
	data, err := s.storage.Load(StorageKey)
	if err != nil {
		s.logger.Printf("cart store: load error=%v", err)
		return nil
	}
	if len(data) == 0 {
		return nil
	}
	var lines []Line
	if err := json.Unmarshal(data, &lines); err != nil {
		s.logger.Printf("cart store: discarding malformed cart error=%v", err)
		return nil
	}
	valid := lines[:0]
	for _, l := range lines {
		if l.ID != "" && l.Product.ID != "" && l.Quantity >= 1 {
			valid = append(valid, l)
		}
	}
	return valid
}

// Add merges into the line with the same product, color and size, or appends a new line.
// A quantity below 1 counts as 1.
func (s *Store) Add(p Product, quantity int, color, size string) (Line, error) {
	if quantity < 1 {
		quantity = 1
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.lines {
		l := &s.lines[i]
		if l.Product.ID == p.ID && l.Color == color && l.Size == size {
			l.Quantity += quantity
			return *l, s.persist()
		}
	}
	line := Line{ID: s.newID(), Product: p, Quantity: quantity, Color: color, Size: size}
	s.lines = append(s.lines, line)
	return line, s.persist()
}

// Remove deletes a line and reports whether it existed.
func (s *Store) Remove(lineID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remove(lineID)
}

func (s *Store) remove(lineID string) (bool, error) {
	for i, l := range s.lines {
		if l.ID == lineID {
			s.lines = append(s.lines[:i], s.lines[i+1:]...)
			return true, s.persist()
		}
	}
	return false, nil
}

// SetQuantity replaces a line's quantity; zero or less removes the line.
func (s *Store) SetQuantity(lineID string, quantity int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if quantity <= 0 {
		return s.remove(lineID)
	}
	for i := range s.lines {
		if s.lines[i].ID == lineID {
			s.lines[i].Quantity = quantity
			return true, s.persist()
		}
	}
	return false, nil
}

func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = nil
	return s.persist()
}

// Lines returns a copy of the current lines in insertion order.
func (s *Store) Lines() []Line {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Line(nil), s.lines...)
}

func (s *Store) Total() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := decimal.Zero
	for _, l := range s.lines {
		total = total.Add(l.Product.Price.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return total
}

func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, l := range s.lines {
		n += l.Quantity
	}
	return n
}

// persist must be called with mu held. The in-memory change stands even when the write fails.
func (s *Store) persist() error {
	lines := s.lines
	if lines == nil {
		lines = []Line{}
	}
	data, err := json.Marshal(lines)
	if err != nil {
		return err
	}
	if err := s.storage.Save(StorageKey, data); err != nil {
		s.logger.Printf("cart store: save error=%v", err)
		return err
	}
	return nil
}
