package entry

// Visit calls f on e and its descendants, before (isPost false) and after
// (isPost true) visiting the children. Returning false from the pre-order
// call skips the children. References are not followed.
func (e *Entry) Visit(f func(e *Entry, isPost bool) (bool, error)) error {
	dive, err := f(e, false)
	if err != nil {
		return err
	}
	if dive {
		for c := range e.children() {
			if err := c.Visit(f); err != nil {
				return err
			}
		}
	}
	if _, err := f(e, true); err != nil {
		return err
	}
	return nil
}

func (e *Entry) children() func(func(*Entry) bool) {
	switch v := e.Value().(type) {
	case ObjectValue:
		return v.Object.Children()
	case ArrayValue:
		return v.Array.Children()
	}
	return func(func(*Entry) bool) {}
}
