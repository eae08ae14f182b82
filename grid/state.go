package grid

// State is where the grid is in its selection/editing lifecycle. Exactly one
// state holds at a time; there are no independent modal flags.
type State int

const (
	NoSelection State = iota
	RowSelected
	EditingCell
	FormEditingExisting
	FormCreatingNew
)

func (s State) String() string {
	switch s {
	case NoSelection:
		return "no-selection"
	case RowSelected:
		return "row-selected"
	case EditingCell:
		return "editing-cell"
	case FormEditingExisting:
		return "form-editing"
	case FormCreatingNew:
		return "form-creating"
	default:
		return "unknown"
	}
}

// FormOpen reports whether a draft is being edited.
func (s State) FormOpen() bool {
	return s == FormEditingExisting || s == FormCreatingNew
}
