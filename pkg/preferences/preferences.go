package preferences

// Preferences is the UI state restored between sessions: which year the grid
// shows and the current filter, sort and search inputs.
type Preferences struct {
	CurrentYear int
	Filter      Filter
	Sort        Sort
	Search      string
}

type Filter string

const (
	FilterAll    Filter = "all"
	FilterPaid   Filter = "paid"
	FilterUnpaid Filter = "unpaid"
)

type Sort string

const (
	SortByName   Sort = "name"
	SortByAmount Sort = "amount"
	SortByStatus Sort = "status"
)

func (f Filter) Valid() bool {
	switch f {
	case FilterAll, FilterPaid, FilterUnpaid:
		return true
	}
	return false
}

func (s Sort) Valid() bool {
	switch s {
	case SortByName, SortByAmount, SortByStatus:
		return true
	}
	return false
}
