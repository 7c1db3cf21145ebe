package consultas

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
)

var ErrSinPagina = errors.New("no hay más páginas")

// Pagina es un bloque ordenado de consultas normalizadas.
type Pagina struct {
	Numero int
	Orden  Orden
	Items  []Consulta
	// Siguiente es nil cuando la página vino incompleta (no hay más).
	Siguiente *Cursor
}

// FetchPage trae la página que sigue a cursor (nil = primera página).
// Si el store no soporta el orden por numeroConsulta, reintenta por createdAt
// sin propagar el error al llamador.
func (s *Service) FetchPage(ctx context.Context, cursor *Cursor) (Pagina, error) {
	ctx, span := s.tracer.Start(ctx, "consultas.FetchPage")
	defer span.End()
	start := time.Now()
	defer s.met.ObserveOperacion("fetch_page", start)

	orden := OrdenNumero
	if cursor != nil && cursor.Orden.Valido() {
		orden = cursor.Orden
	}

	docs, err := s.repo.List(ctx, PageQuery{Orden: orden, Despues: cursor, Limite: s.pageSize})
	if errors.Is(err, ErrOrderingUnsupported) && orden == OrdenNumero {
		s.met.IncFallbackOrden()
		s.log.Warn("orden por numeroConsulta no disponible, uso createdAt", map[string]any{"error": err})

		orden = OrdenCreacion
		var despues *Cursor
		if cursor != nil {
			c := *cursor
			c.Orden = OrdenCreacion
			despues = &c
		}
		docs, err = s.repo.List(ctx, PageQuery{Orden: orden, Despues: despues, Limite: s.pageSize})
	}
	if err != nil {
		return Pagina{}, storeErr("list consultas", err)
	}
	span.SetAttributes(attribute.String("consultas.orden", string(orden)), attribute.Int("consultas.items", len(docs)))

	p := Pagina{Orden: orden, Items: make([]Consulta, 0, len(docs))}
	for _, d := range docs {
		p.Items = append(p.Items, Normalizar(d))
	}
	if len(p.Items) >= s.pageSize {
		p.Siguiente = CursorDe(p.Items[len(p.Items)-1], orden)
	}
	return p, nil
}

// FetchPageN rehace la navegación desde la página 1 hasta la n y devuelve esa página
// junto con la pila de cursores usados (pila[i] es el cursor de la página i+1).
// Si los datos se acortaron, devuelve la última página alcanzable.
func (s *Service) FetchPageN(ctx context.Context, n int) (Pagina, []*Cursor, error) {
	if n < 1 {
		return Pagina{}, nil, ErrInvalidInput
	}

	var (
		pila   []*Cursor
		cursor *Cursor
		p      Pagina
	)
	for i := 1; i <= n; i++ {
		got, err := s.FetchPage(ctx, cursor)
		if err != nil {
			return Pagina{}, nil, err
		}
		pila = append(pila, cursor)
		p = got
		p.Numero = i
		if i < n && p.Siguiente == nil {
			break
		}
		cursor = p.Siguiente
	}
	return p, pila, nil
}

// Navegador mantiene la posición de una sesión de navegación.
// Retroceder rehace la cadena desde el principio (no hay caché de páginas).
// Es para clientes con estado que usan el paquete directo; HTTP es sin estado y usa FetchPageN.
type Navegador struct {
	svc *Service

	mu     sync.Mutex
	pila   []*Cursor
	actual Pagina
}

func (s *Service) NuevoNavegador() *Navegador {
	return &Navegador{svc: s}
}

// Primera reinicia y trae la página 1.
func (n *Navegador) Primera(ctx context.Context) (Pagina, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.reiniciar()
	p, err := n.svc.FetchPage(ctx, nil)
	if err != nil {
		return Pagina{}, err
	}
	p.Numero = 1
	n.pila = []*Cursor{nil}
	n.actual = p
	return p, nil
}

func (n *Navegador) Siguiente(ctx context.Context) (Pagina, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.actual.Numero == 0 || n.actual.Siguiente == nil {
		return Pagina{}, ErrSinPagina
	}
	cur := n.actual.Siguiente
	p, err := n.svc.FetchPage(ctx, cur)
	if err != nil {
		return Pagina{}, err
	}
	p.Numero = n.actual.Numero + 1
	n.pila = append(n.pila, cur)
	n.actual = p
	return p, nil
}

// Anterior descarta la cadena y rehace desde la página 1 hasta la N-1.
func (n *Navegador) Anterior(ctx context.Context) (Pagina, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.actual.Numero <= 1 {
		return Pagina{}, ErrSinPagina
	}
	objetivo := n.actual.Numero - 1
	n.reiniciar()

	p, pila, err := n.svc.FetchPageN(ctx, objetivo)
	if err != nil {
		return Pagina{}, err
	}
	n.pila = pila
	n.actual = p
	return p, nil
}

func (n *Navegador) Reiniciar() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.reiniciar()
}

func (n *Navegador) reiniciar() {
	n.pila = nil
	n.actual = Pagina{}
}

// Pagina devuelve la página actual (Numero 0 si no se navegó).
func (n *Navegador) Pagina() Pagina {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.actual
}

// EncodeCursor serializa el cursor para viajar en una URL.
func EncodeCursor(c *Cursor) string {
	if c == nil {
		return ""
	}
	b, _ := json.Marshal(c)
	return base64.RawURLEncoding.EncodeToString(b)
}

func DecodeCursor(s string) (*Cursor, error) {
	if s == "" {
		return nil, nil
	}
	b, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: cursor: %v", ErrInvalidInput, err)
	}
	var c Cursor
	if err := json.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("%w: cursor: %v", ErrInvalidInput, err)
	}
	if !c.Orden.Valido() || c.ID == "" {
		return nil, fmt.Errorf("%w: cursor incompleto", ErrInvalidInput)
	}
	return &c, nil
}
