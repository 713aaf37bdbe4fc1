// Package memory implementa los repositorios sobre estructuras en memoria.
// Las transacciones trabajan sobre una copia del estado que solo se publica si fn no falla.
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/tienda-api/internal/application/inventory"
	"github.com/jhoicas/tienda-api/internal/domain/entity"
)

var _ inventory.TxRunner = (*Store)(nil)

type state struct {
	products   map[string]*entity.Product
	categories map[string]*entity.Category
	movements  []*entity.StockMovement // en orden de inserción
	sales      map[string]*entity.Sale
}

func newState() *state {
	return &state{
		products:   make(map[string]*entity.Product),
		categories: make(map[string]*entity.Category),
		sales:      make(map[string]*entity.Sale),
	}
}

func (s *state) clone() *state {
	c := &state{
		products:   make(map[string]*entity.Product, len(s.products)),
		categories: make(map[string]*entity.Category, len(s.categories)),
		movements:  make([]*entity.StockMovement, 0, len(s.movements)),
		sales:      make(map[string]*entity.Sale, len(s.sales)),
	}
	for id, p := range s.products {
		c.products[id] = cloneProduct(p)
	}
	for id, cat := range s.categories {
		cp := *cat
		c.categories[id] = &cp
	}
	for _, m := range s.movements {
		c.movements = append(c.movements, cloneMovement(m))
	}
	for id, sale := range s.sales {
		c.sales[id] = cloneSale(sale)
	}
	return c
}

// Store guarda todo el estado y serializa las transacciones.
type Store struct {
	mu    sync.RWMutex
	state *state
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{state: newState()}
}

// Run ejecuta fn sobre una copia del estado con repositorios atados a ella.
// Si fn retorna error (o el contexto se cancela) la copia se descarta.
func (s *Store) Run(ctx context.Context, fn func(ctx context.Context, repos inventory.Repos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &txView{st: s.state.clone()}
	repos := inventory.Repos{
		Products:  &ProductRepo{v: tx},
		Movements: &StockMovementRepo{v: tx},
		Sales:     &SaleRepo{v: tx},
	}
	if err := fn(ctx, repos); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.state = tx.st
	return nil
}

// Products repositorio de productos fuera de transacción.
func (s *Store) Products() *ProductRepo { return &ProductRepo{v: committedView{s}} }

// Movements repositorio del libro fuera de transacción.
func (s *Store) Movements() *StockMovementRepo { return &StockMovementRepo{v: committedView{s}} }

// Sales repositorio de ventas fuera de transacción.
func (s *Store) Sales() *SaleRepo { return &SaleRepo{v: committedView{s}} }

// Categories repositorio de categorías.
func (s *Store) Categories() *CategoryRepo { return &CategoryRepo{v: committedView{s}} }

// view da acceso de lectura o escritura a un estado.
type view interface {
	read(fn func(st *state) error) error
	write(fn func(st *state) error) error
}

type committedView struct{ s *Store }

func (v committedView) read(fn func(st *state) error) error {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	return fn(v.s.state)
}

func (v committedView) write(fn func(st *state) error) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	return fn(v.s.state)
}

// txView opera sobre la copia privada de una transacción; el Store ya está bloqueado.
type txView struct{ st *state }

func (v *txView) read(fn func(st *state) error) error  { return fn(v.st) }
func (v *txView) write(fn func(st *state) error) error { return fn(v.st) }

func cloneProduct(p *entity.Product) *entity.Product {
	c := *p
	if p.CostPrice != nil {
		cost := *p.CostPrice
		c.CostPrice = &cost
	}
	return &c
}

func cloneMovement(m *entity.StockMovement) *entity.StockMovement {
	c := *m
	return &c
}

func cloneSale(s *entity.Sale) *entity.Sale {
	c := *s
	c.Items = make([]*entity.SaleItem, 0, len(s.Items))
	for _, it := range s.Items {
		item := *it
		c.Items = append(c.Items, &item)
	}
	return &c
}
