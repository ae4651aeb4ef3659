package session

import (
	"fmt"
	"math"
	"reflect"
	"sort"
	"strings"
)

// tableViewKey identifies the inputs a computed row order depends on
type tableViewKey struct {
	filter    string
	sortCol   int
	ascending bool
	version   uint64
	columns   []int
}

// DataTableView is the filtered and sorted row order shown in the data
// panel, plus the rows the user has selected there. Rows are view rows of the
// session table.
type DataTableView struct {
	session *Session

	filter    string
	sortCol   int
	ascending bool

	rows     []int
	key      tableViewKey
	valid    bool
	selected map[int]struct{}
}

func newDataTableView(s *Session) *DataTableView {
	v := &DataTableView{session: s}
	v.reset()
	return v
}

// DataTable returns the data panel state
func (s *Session) DataTable() *DataTableView { return s.dataTable }

func (v *DataTableView) reset() {
	v.filter = ""
	v.sortCol = -1
	v.ascending = true
	v.rows = nil
	v.valid = false
	v.selected = make(map[int]struct{})
}

// DisplayColumns returns the X column and the Y columns, sorted and unique
func (v *DataTableView) DisplayColumns() []int {
	s := v.session
	if s.table == nil {
		return nil
	}
	cols := []int{s.xCol}
	cols = append(cols, s.yCols...)
	sort.Ints(cols)
	out := cols[:0]
	for i, c := range cols {
		if i == 0 || c != cols[i-1] {
			out = append(out, c)
		}
	}
	return out
}

// SetFilter sets the case-insensitive substring row filter
func (v *DataTableView) SetFilter(text string) { v.filter = text }

// Filter returns the row filter text
func (v *DataTableView) Filter() string { return v.filter }

// SortColumn returns the sort column and direction; ok is false when unsorted
func (v *DataTableView) SortColumn() (col int, ascending bool, ok bool) {
	return v.sortCol, v.ascending, v.sortCol >= 0
}

// ToggleSort sorts by col ascending, or flips the direction if col is
// already the sort column
func (v *DataTableView) ToggleSort(col int) {
	if v.sortCol == col {
		v.ascending = !v.ascending
		return
	}
	v.sortCol = col
	v.ascending = true
}

// ClearSort restores view order
func (v *DataTableView) ClearSort() {
	v.sortCol = -1
	v.ascending = true
}

// Rows returns the filtered and sorted rows, recomputing only when the
// filter, the sort, the displayed columns or the data version changed.
func (v *DataTableView) Rows() ([]int, error) {
	s := v.session
	if s.table == nil {
		return nil, nil
	}
	key := tableViewKey{
		filter:    v.filter,
		sortCol:   v.sortCol,
		ascending: v.ascending,
		version:   s.version,
		columns:   v.DisplayColumns(),
	}
	if v.valid && reflect.DeepEqual(key, v.key) {
		return v.rows, nil
	}

	rows, err := v.compute(key)
	if err != nil {
		return nil, err
	}
	v.rows, v.key, v.valid = rows, key, true
	return rows, nil
}

func (v *DataTableView) compute(key tableViewKey) ([]int, error) {
	tbl := v.session.table
	total := tbl.RowCount()

	rows := make([]int, 0, total)
	if key.filter == "" {
		for r := 0; r < total; r++ {
			rows = append(rows, r)
		}
	} else {
		needle := strings.ToLower(key.filter)
		columns := make([][]string, 0, len(key.columns))
		for _, col := range key.columns {
			values, err := tbl.ColumnAsString(col)
			if err != nil {
				return nil, err
			}
			columns = append(columns, values)
		}
		for r := 0; r < total; r++ {
			for _, values := range columns {
				if strings.Contains(strings.ToLower(values[r]), needle) {
					rows = append(rows, r)
					break
				}
			}
		}
	}

	if key.sortCol >= 0 {
		values, err := tbl.ColumnAsNumeric(key.sortCol)
		if err != nil {
			return nil, err
		}
		sort.SliceStable(rows, func(i, j int) bool {
			a, b := values[rows[i]], values[rows[j]]
			// NaN sorts last in both directions
			switch {
			case math.IsNaN(a):
				return false
			case math.IsNaN(b):
				return true
			case key.ascending:
				return a < b
			default:
				return a > b
			}
		})
	}
	return rows, nil
}

// ToggleSelected adds or removes row from the selection
func (v *DataTableView) ToggleSelected(row int) {
	if _, ok := v.selected[row]; ok {
		delete(v.selected, row)
		return
	}
	v.selected[row] = struct{}{}
}

// IsSelected reports whether row is selected
func (v *DataTableView) IsSelected(row int) bool {
	_, ok := v.selected[row]
	return ok
}

// SelectedRows returns the selection in ascending order
func (v *DataTableView) SelectedRows() []int {
	rows := make([]int, 0, len(v.selected))
	for r := range v.selected {
		rows = append(rows, r)
	}
	sort.Ints(rows)
	return rows
}

// ClearSelection empties the selection
func (v *DataTableView) ClearSelection() {
	v.selected = make(map[int]struct{})
}

// CopySelectedTSV renders the selected rows of the displayed columns as
// tab-separated text for the clipboard
func (v *DataTableView) CopySelectedTSV() (string, error) {
	if v.session.table == nil {
		return "", fmt.Errorf("no data loaded")
	}
	if len(v.selected) == 0 {
		return "", nil
	}
	return v.session.table.FormatRowsTSV(v.SelectedRows(), v.DisplayColumns())
}

// GotoRow converts a 1-based row number typed by the user into a view row,
// clamped to the table
func (v *DataTableView) GotoRow(n int) int {
	if v.session.table == nil {
		return 0
	}
	return min(max(n-1, 0), max(v.session.table.RowCount()-1, 0))
}
