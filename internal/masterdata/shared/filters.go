package shared

// ListFilters represents standard list page filters
type ListFilters struct {
	Page    int
	Limit   int
	Search  string
	SortBy  string
	SortDir string

	// Entity specific filters
	CompanyID  *int64
	CategoryID *int64
	SupplierID *int64
}

// Normalize clamps pagination to sane defaults.
func (f *ListFilters) Normalize() {
	if f.Page < 1 {
		f.Page = DefaultPage
	}
	if f.Limit < 1 {
		f.Limit = DefaultLimit
	}
}
