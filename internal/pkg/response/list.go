package response

// ListResponse is the standard wrapper for unpaginated list endpoints.
type ListResponse[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
}

// NewListResponse wraps items, rendering a nil slice as an empty JSON array.
func NewListResponse[T any](items []T) ListResponse[T] {
	if items == nil {
		items = make([]T, 0)
	}

	return ListResponse[T]{
		Items: items,
		Total: len(items),
	}
}
