package models

// Page is one server page of T. Number is zero-based.
type Page[T any] struct {
	Content          []T  `json:"content"`
	Number           int  `json:"number"`
	Size             int  `json:"size"`
	TotalElements    int  `json:"totalElements"`
	TotalPages       int  `json:"totalPages"`
	First            bool `json:"first"`
	Last             bool `json:"last"`
	Empty            bool `json:"empty"`
	NumberOfElements int  `json:"numberOfElements"`
}

// TotalPagesFor returns ceil(total/size), 0 when there is nothing to page.
func TotalPagesFor(total, size int) int {
	if total <= 0 || size <= 0 {
		return 0
	}
	return (total + size - 1) / size
}

// NewPage builds a page and derives the counters and flags from its inputs.
func NewPage[T any](content []T, number, size, totalElements int) Page[T] {
	if content == nil {
		content = []T{}
	}
	totalPages := TotalPagesFor(totalElements, size)
	return Page[T]{
		Content:          content,
		Number:           number,
		Size:             size,
		TotalElements:    totalElements,
		TotalPages:       totalPages,
		First:            number == 0,
		Last:             totalPages == 0 || number >= totalPages-1,
		Empty:            len(content) == 0,
		NumberOfElements: len(content),
	}
}

// EmptyPage is the explicit "nothing registered" page.
func EmptyPage[T any](number, size int) Page[T] {
	return NewPage[T](nil, number, size, 0)
}

// Normalize repairs pages from servers that omit derived fields.
func (p Page[T]) Normalize() Page[T] {
	if p.Content == nil {
		p.Content = []T{}
	}
	if p.TotalElements == 0 {
		p.TotalPages = 0
	} else if p.TotalPages == 0 {
		p.TotalPages = TotalPagesFor(p.TotalElements, p.Size)
	}
	p.NumberOfElements = len(p.Content)
	p.Empty = len(p.Content) == 0
	p.First = p.Number == 0
	p.Last = p.TotalPages == 0 || p.Number >= p.TotalPages-1
	return p
}
