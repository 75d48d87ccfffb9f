package domain

type View string

const (
	ViewDashboard   View = "dashboard"
	ViewAllAssets   View = "all-assets"
	ViewAccessories View = "accessories"
	ViewEmployees   View = "employees"
	ViewSettings    View = "settings"
)

var views = []View{ViewDashboard, ViewAllAssets, ViewAccessories, ViewEmployees, ViewSettings}

func Views() []View { return append([]View(nil), views...) }

func ParseView(raw string) (View, error) {
	for _, v := range views {
		if string(v) == raw {
			return v, nil
		}
	}
	return "", Validationf("unknown view %q", raw)
}

// Navigator owns the current view. The only way to change it is Dispatch.
type Navigator struct {
	current View
}

func NewNavigator() Navigator { return Navigator{current: ViewDashboard} }

func (n Navigator) Current() View {
	if n.current == "" {
		return ViewDashboard
	}
	return n.current
}

func (n *Navigator) Dispatch(v View) error {
	if _, err := ParseView(string(v)); err != nil {
		return err
	}
	n.current = v
	return nil
}

// DefaultDraftType is the type preselected for a new asset in the given view.
func DefaultDraftType(v View) string {
	if v == ViewAccessories {
		return "Keyboard"
	}
	return "Laptop"
}

// NewAssetDraft returns the unsaved id-0 asset used to open the create form.
func NewAssetDraft(v View) Asset {
	return Asset{Type: DefaultDraftType(v), Status: StatusAvailable}
}
