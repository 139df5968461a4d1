package queries

// ListDocumentsQuery represents a listing of all indexed source documents
type ListDocumentsQuery struct{}

// Validate validates the query
func (q ListDocumentsQuery) Validate() error { return nil }
